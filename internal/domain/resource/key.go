package resource

import (
	"fmt"
	"strings"
)

// TypeFamily groups resource kinds that share a storage channel
type TypeFamily string

const (
	// FamilyItem covers discrete, countable items
	FamilyItem TypeFamily = "item"

	// FamilyFluid covers fluids measured in volume units
	FamilyFluid TypeFamily = "fluid"

	// FamilyGeneric covers any other typed resource
	FamilyGeneric TypeFamily = "generic"
)

// Families returns all known type families in a fixed order
func Families() []TypeFamily {
	return []TypeFamily{FamilyItem, FamilyFluid, FamilyGeneric}
}

// IsValid returns true for a known type family
func (f TypeFamily) IsValid() bool {
	switch f {
	case FamilyItem, FamilyFluid, FamilyGeneric:
		return true
	default:
		return false
	}
}

// Key identifies a kind of resource.
//
// Key is a comparable value type and is used directly as a map key.
// Equality covers the full identity, including the secondary attributes
// (tag data). DropSecondary yields the coarse identity used for fuzzy matching.
type Key struct {
	Type      TypeFamily
	ID        string
	Secondary string
}

// NewKey creates a validated resource key
func NewKey(family TypeFamily, id, secondary string) (Key, error) {
	if !family.IsValid() {
		return Key{}, fmt.Errorf("unknown resource type family: %q", family)
	}
	if id == "" {
		return Key{}, fmt.Errorf("resource id cannot be empty")
	}
	if strings.ContainsAny(id, "#") {
		return Key{}, fmt.Errorf("resource id %q cannot contain '#'", id)
	}
	return Key{Type: family, ID: id, Secondary: secondary}, nil
}

// Item is a shorthand for an item key without secondary data
func Item(id string) Key {
	return Key{Type: FamilyItem, ID: id}
}

// Fluid is a shorthand for a fluid key without secondary data
func Fluid(id string) Key {
	return Key{Type: FamilyFluid, ID: id}
}

// ParseKey parses the "type:id" or "type:id#secondary" form produced by String.
// The id itself may contain ':' (namespaced ids such as "minecraft:stick").
func ParseKey(s string) (Key, error) {
	family, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("invalid resource key %q: expected type:id", s)
	}
	id, secondary, _ := strings.Cut(rest, "#")
	return NewKey(TypeFamily(family), id, secondary)
}

// MustParseKey parses a key and panics on error (fixtures and tests)
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// DropSecondary returns the key without its secondary attributes
func (k Key) DropSecondary() Key {
	return Key{Type: k.Type, ID: k.ID}
}

// HasSecondary returns true if the key carries secondary attributes
func (k Key) HasSecondary() bool {
	return k.Secondary != ""
}

// IsZero returns true for the zero key
func (k Key) IsZero() bool {
	return k == Key{}
}

func (k Key) String() string {
	if k.Secondary == "" {
		return fmt.Sprintf("%s:%s", k.Type, k.ID)
	}
	return fmt.Sprintf("%s:%s#%s", k.Type, k.ID, k.Secondary)
}
