package catalogfile

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// Suggest returns up to limit known keys close to target, nearest first.
// Exact matches are never suggested.
func Suggest(target resource.Key, known []resource.Key, limit int) []resource.Key {
	type candidate struct {
		key  resource.Key
		dist int
	}

	want := target.String()
	maxDist := distanceLimit(len(target.ID))
	var cands []candidate
	for _, key := range known {
		if key == target {
			continue
		}
		dist := levenshtein.ComputeDistance(want, key.String())
		if dist > maxDist {
			continue
		}
		cands = append(cands, candidate{key: key, dist: dist})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].key.String() < cands[j].key.String()
	})

	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	result := make([]resource.Key, len(cands))
	for i, c := range cands {
		result[i] = c.key
	}
	return result
}

// Lint flags input candidates that nothing produces but that sit within typo
// distance of a key some pattern does produce.
func Lint(patterns []*pattern.Details) []string {
	produced := make(map[resource.Key]bool)
	for _, p := range patterns {
		for _, out := range p.Outputs() {
			produced[out.Key] = true
		}
	}
	outputs := make([]resource.Key, 0, len(produced))
	for key := range produced {
		outputs = append(outputs, key)
	}
	resource.SortKeys(outputs)

	var warnings []string
	reported := make(map[string]bool)
	for _, p := range patterns {
		for _, key := range p.InputKeys() {
			if produced[key] {
				continue
			}
			near := Suggest(key, outputs, 1)
			if len(near) == 0 {
				continue
			}
			msg := fmt.Sprintf("pattern %s: input %s is never produced; did you mean %s?", p.ID(), key, near[0])
			if !reported[msg] {
				reported[msg] = true
				warnings = append(warnings, msg)
			}
		}
	}
	return warnings
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
