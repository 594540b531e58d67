package crafting

import (
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// ExportDebug renders the plan as a nested tree of plain values.
// Only map[string]any, []any, string, bool, int64 and float64 appear in the
// result so it can be fed straight into structpb or encoding/json.
func (p *CraftingPlan) ExportDebug() map[string]any {
	patterns := make(map[string]any, len(p.patternTimes))
	for _, id := range p.PatternIDs() {
		entry := map[string]any{
			"times": p.patternTimes[id],
		}
		if d, ok := p.patterns[id]; ok {
			entry["priority"] = int64(d.Priority())
			entry["processing_time"] = d.ProcessingTime()
			entry["inputs"] = exportInputs(d.Inputs())
			entry["outputs"] = exportStacks(d.Outputs())
		}
		patterns[string(id)] = entry
	}

	return map[string]any{
		"final_output": map[string]any{
			"key":    p.finalOutput.Key.String(),
			"amount": p.finalOutput.Amount,
		},
		"mode":                  string(p.mode),
		"outcome":               string(p.outcome),
		"bytes":                 p.bytes,
		"simulation":            p.simulation,
		"multiple_paths":        p.multiplePaths,
		"used":                  exportCounter(p.used),
		"emitted":               exportCounter(p.emitted),
		"missing":               exportCounter(p.missing),
		"patterns":              patterns,
		"total_processing_time": p.TotalProcessingTime(),
	}
}

func exportCounter(c *resource.KeyCounter) map[string]any {
	result := make(map[string]any, c.Len())
	for _, k := range c.Keys() {
		result[k.String()] = c.Get(k)
	}
	return result
}

func exportStacks(stacks []resource.GenericStack) []any {
	result := make([]any, 0, len(stacks))
	for _, s := range stacks {
		result = append(result, map[string]any{
			"key":    s.Key.String(),
			"amount": s.Amount,
		})
	}
	return result
}

func exportInputs(slots []pattern.InputSlot) []any {
	result := make([]any, 0, len(slots))
	for _, slot := range slots {
		candidates := make([]any, 0, len(slot.Candidates))
		for _, c := range slot.Candidates {
			candidates = append(candidates, c.String())
		}
		result = append(result, map[string]any{
			"candidates": candidates,
			"amount":     slot.Amount,
		})
	}
	return result
}
