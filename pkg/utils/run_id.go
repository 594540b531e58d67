package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a short, human-readable planning run ID.
// Format: {operation}-{resourceID}-{8charHexUUID}
//
// Example:
//   - Input: operation="plan", key="item:minecraft:oak_planks#nbt"
//   - Output: "plan-oak_planks-a3f8e2b1"
func GenerateRunID(operation, key string) string {
	return operation + "-" + shortResourceID(key) + "-" + generateShortUUID()
}

// shortResourceID drops the type family, namespaces and secondary data:
//   - "item:minecraft:oak_planks" -> "oak_planks"
//   - "fluid:water#hot" -> "water"
//   - "" -> "unknown"
func shortResourceID(key string) string {
	if i := strings.Index(key, "#"); i >= 0 {
		key = key[:i]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[i+1:]
	}
	if key == "" {
		return "unknown"
	}
	return key
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
