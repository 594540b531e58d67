package catalogfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PatternDef is one pattern as written in a catalog file
type PatternDef struct {
	ID             string     `yaml:"id"`
	Priority       int        `yaml:"priority,omitempty"`
	ProcessingTime int64      `yaml:"processing_time,omitempty"`
	Inputs         []SlotDef  `yaml:"inputs,omitempty"`
	Outputs        []StackDef `yaml:"outputs"`
}

// SlotDef is an input slot as written in a catalog file
type SlotDef struct {
	Candidates []string `yaml:"candidates"`
	Amount     int64    `yaml:"amount"`
}

// StackDef is a key and amount as written in catalog and stock files
type StackDef struct {
	Key    string `yaml:"key"`
	Amount int64  `yaml:"amount"`
}

type catalogDocument struct {
	Patterns []PatternDef `yaml:"patterns"`
}

// LoadCatalog reads, validates and indexes a YAML catalog file
func LoadCatalog(path string) (*pattern.MemoryCatalog, error) {
	patterns, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	return pattern.NewMemoryCatalogWith(patterns...)
}

// ReadCatalog reads and validates a YAML catalog file
func ReadCatalog(path string) ([]*pattern.Details, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(path, data)
}

// ParseCatalog validates catalog YAML against the schema, then builds the
// pattern definitions. Every problem found is reported together.
func ParseCatalog(path string, data []byte) ([]*pattern.Details, error) {
	if err := validateDocument(catalogSchema, path, data); err != nil {
		return nil, err
	}

	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var problems []string
	seen := make(map[pattern.ID]bool, len(doc.Patterns))
	patterns := make([]*pattern.Details, 0, len(doc.Patterns))
	for i, def := range doc.Patterns {
		p, err := def.toDetails()
		if err != nil {
			problems = append(problems, fmt.Sprintf("/patterns/%d: %v", i, err))
			continue
		}
		if seen[p.ID()] {
			problems = append(problems, fmt.Sprintf("/patterns/%d: duplicate pattern id %q", i, p.ID()))
			continue
		}
		seen[p.ID()] = true
		patterns = append(patterns, p)
	}
	if len(problems) > 0 {
		return nil, &ErrInvalidDocument{Path: path, Problems: problems}
	}
	return patterns, nil
}

// MarshalCatalog renders patterns back into catalog YAML
func MarshalCatalog(patterns []*pattern.Details) ([]byte, error) {
	doc := catalogDocument{Patterns: make([]PatternDef, len(patterns))}
	for i, p := range patterns {
		doc.Patterns[i] = patternToDef(p)
	}
	return yaml.Marshal(&doc)
}

func (d PatternDef) toDetails() (*pattern.Details, error) {
	slots := make([]pattern.InputSlot, len(d.Inputs))
	for i, in := range d.Inputs {
		candidates := make([]resource.Key, len(in.Candidates))
		for j, raw := range in.Candidates {
			key, err := resource.ParseKey(raw)
			if err != nil {
				return nil, err
			}
			candidates[j] = key
		}
		slots[i] = pattern.InputSlot{Candidates: candidates, Amount: in.Amount}
	}

	outputs := make([]resource.GenericStack, len(d.Outputs))
	for i, out := range d.Outputs {
		stack, err := out.toStack()
		if err != nil {
			return nil, err
		}
		outputs[i] = stack
	}

	return pattern.NewDetails(pattern.ID(d.ID), d.Priority, slots, outputs, d.ProcessingTime)
}

func (s StackDef) toStack() (resource.GenericStack, error) {
	key, err := resource.ParseKey(s.Key)
	if err != nil {
		return resource.GenericStack{}, err
	}
	return resource.NewGenericStack(key, s.Amount)
}

func patternToDef(p *pattern.Details) PatternDef {
	def := PatternDef{
		ID:             string(p.ID()),
		Priority:       p.Priority(),
		ProcessingTime: p.ProcessingTime(),
	}
	for _, slot := range p.Inputs() {
		candidates := make([]string, len(slot.Candidates))
		for i, c := range slot.Candidates {
			candidates[i] = c.String()
		}
		def.Inputs = append(def.Inputs, SlotDef{Candidates: candidates, Amount: slot.Amount})
	}
	for _, out := range p.Outputs() {
		def.Outputs = append(def.Outputs, StackDef{Key: out.Key.String(), Amount: out.Amount})
	}
	return def
}
