package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID("plan", "item:minecraft:oak_planks#nbt")

	assert.True(t, strings.HasPrefix(id, "plan-oak_planks-"), id)
	assert.Len(t, id, len("plan-oak_planks-")+8)
	assert.NotEqual(t, id, GenerateRunID("plan", "item:minecraft:oak_planks#nbt"))
}

func TestShortResourceID(t *testing.T) {
	tests := map[string]string{
		"item:minecraft:oak_planks": "oak_planks",
		"fluid:water#hot":           "water",
		"generic:energy":            "energy",
		"":                          "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, shortResourceID(in), in)
	}
}
