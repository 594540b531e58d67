package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// planView is a plan read back from its debug export tree. Local plans and
// plans fetched from the daemon render through the same view.
type planView struct {
	FinalKey      string
	FinalAmount   int64
	Mode          string
	Outcome       string
	Bytes         int64
	MultiplePaths bool
	Used          map[string]int64
	Emitted       map[string]int64
	Missing       map[string]int64
	Patterns      map[string]patternView
}

type patternView struct {
	ID             string
	Times          int64
	Priority       int64
	ProcessingTime int64
	Inputs         []slotView
	Outputs        map[string]int64
}

type slotView struct {
	Candidates []string
	Amount     int64
}

func newPlanView(debug map[string]interface{}) planView {
	view := planView{
		Mode:          stringOf(debug["mode"]),
		Outcome:       stringOf(debug["outcome"]),
		Bytes:         toInt64(debug["bytes"]),
		MultiplePaths: debug["multiple_paths"] == true,
		Used:          counterOf(debug["used"]),
		Emitted:       counterOf(debug["emitted"]),
		Missing:       counterOf(debug["missing"]),
		Patterns:      make(map[string]patternView),
	}
	if final, ok := debug["final_output"].(map[string]interface{}); ok {
		view.FinalKey = stringOf(final["key"])
		view.FinalAmount = toInt64(final["amount"])
	}

	patterns, _ := debug["patterns"].(map[string]interface{})
	for id, raw := range patterns {
		entry, _ := raw.(map[string]interface{})
		p := patternView{
			ID:             id,
			Times:          toInt64(entry["times"]),
			Priority:       toInt64(entry["priority"]),
			ProcessingTime: toInt64(entry["processing_time"]),
			Outputs:        make(map[string]int64),
		}
		inputs, _ := entry["inputs"].([]interface{})
		for _, rawSlot := range inputs {
			slot, _ := rawSlot.(map[string]interface{})
			s := slotView{Amount: toInt64(slot["amount"])}
			candidates, _ := slot["candidates"].([]interface{})
			for _, c := range candidates {
				s.Candidates = append(s.Candidates, stringOf(c))
			}
			p.Inputs = append(p.Inputs, s)
		}
		outputs, _ := entry["outputs"].([]interface{})
		for _, rawOut := range outputs {
			out, _ := rawOut.(map[string]interface{})
			p.Outputs[stringOf(out["key"])] += toInt64(out["amount"])
		}
		view.Patterns[id] = p
	}
	return view
}

// producers returns the plan's patterns that output key, sorted by priority then ID
func (v planView) producers(key string) []patternView {
	var result []patternView
	for _, p := range v.Patterns {
		if _, ok := p.Outputs[key]; ok {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// chosenCandidate guesses which candidate of a slot the run resolved: the
// first one the plan touched, else the first declared
func (v planView) chosenCandidate(slot slotView) string {
	for _, c := range slot.Candidates {
		if v.Used[c] > 0 || v.Missing[c] > 0 || len(v.producers(c)) > 0 {
			return c
		}
	}
	if len(slot.Candidates) > 0 {
		return slot.Candidates[0]
	}
	return ""
}

// TreeFormatter renders crafting plans as a dependency tree
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatPlan renders the summary followed by the resolution tree
func (f *TreeFormatter) FormatPlan(planID string, debug map[string]interface{}) string {
	view := newPlanView(debug)

	var builder strings.Builder
	if planID != "" {
		builder.WriteString(fmt.Sprintf("Plan:      %s\n", planID))
	}
	builder.WriteString(f.FormatSummary(view))
	builder.WriteString("\n")
	if view.FinalKey == "" {
		builder.WriteString("(empty plan)\n")
		return builder.String()
	}
	f.formatKey(&builder, view, view.FinalKey, view.FinalAmount, "", true, true, map[string]bool{})

	f.formatCounter(&builder, "Used from storage", view.Used)
	f.formatCounter(&builder, "Missing", view.Missing)
	f.formatCounter(&builder, "Emitted", view.Emitted)
	return builder.String()
}

// FormatSummary renders the one-block plan header
func (f *TreeFormatter) FormatSummary(view planView) string {
	var invocations, processing int64
	for _, p := range view.Patterns {
		invocations += p.Times
		processing += p.Times * p.ProcessingTime
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Request:   %d × %s (%s)\n", view.FinalAmount, view.FinalKey, view.Mode))
	builder.WriteString(fmt.Sprintf("Outcome:   %s%s%s\n", f.outcomeColor(view.Outcome), view.Outcome, f.colorReset()))
	builder.WriteString(fmt.Sprintf("Bytes:     %d (%d invocations, %d ticks)\n", view.Bytes, invocations, processing))
	if view.MultiplePaths {
		builder.WriteString("Note:      alternate patterns existed for at least one key\n")
	}
	return builder.String()
}

func (f *TreeFormatter) formatKey(builder *strings.Builder, view planView, key string, amount int64, prefix string, isLast, isRoot bool, path map[string]bool) {
	linePrefix, childPrefix := branch(prefix, isLast, isRoot)

	var sources []string
	producers := view.producers(key)
	if len(producers) > 0 {
		sources = append(sources, f.method("CRAFT"))
	}
	if view.Used[key] > 0 {
		sources = append(sources, f.method("STOCK"))
	}
	if view.Missing[key] > 0 {
		sources = append(sources, f.method("MISSING"))
	}
	builder.WriteString(fmt.Sprintf("%s%s ×%d [%s]\n", linePrefix, key, amount, strings.Join(sources, "+")))

	// Each key expands once per branch; cycles show as a leaf
	if path[key] {
		return
	}
	path[key] = true
	defer delete(path, key)

	for i, p := range producers {
		patternLast := i == len(producers)-1
		patternLine, patternChild := branch(childPrefix, patternLast, false)
		builder.WriteString(fmt.Sprintf("%s⚙ %s ×%d\n", patternLine, p.ID, p.Times))
		for j, slot := range p.Inputs {
			input := view.chosenCandidate(slot)
			f.formatKey(builder, view, input, slot.Amount*p.Times, patternChild, j == len(p.Inputs)-1, false, path)
		}
	}
}

func (f *TreeFormatter) formatCounter(builder *strings.Builder, title string, counter map[string]int64) {
	if len(counter) == 0 {
		return
	}
	keys := make([]string, 0, len(counter))
	for k := range counter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	builder.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, k := range keys {
		builder.WriteString(fmt.Sprintf("  %-32s %d\n", k, counter[k]))
	}
}

func branch(prefix string, isLast, isRoot bool) (line, child string) {
	switch {
	case isRoot:
		return "", ""
	case isLast:
		return prefix + "└── ", prefix + "    "
	default:
		return prefix + "├── ", prefix + "│   "
	}
}

func (f *TreeFormatter) method(name string) string {
	if !f.useColors {
		return name
	}
	switch name {
	case "STOCK":
		return "\033[32m" + name + "\033[0m" // Green
	case "CRAFT":
		return "\033[33m" + name + "\033[0m" // Yellow
	case "MISSING":
		return "\033[31m" + name + "\033[0m" // Red
	default:
		return name
	}
}

func (f *TreeFormatter) outcomeColor(outcome string) string {
	if !f.useColors {
		return ""
	}
	if outcome == "SATISFIED" {
		return "\033[32m"
	}
	return "\033[31m"
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

func counterOf(raw interface{}) map[string]int64 {
	m, _ := raw.(map[string]interface{})
	result := make(map[string]int64, len(m))
	for k, v := range m {
		result[k] = toInt64(v)
	}
	return result
}

func stringOf(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

// toInt64 accepts the number types a debug tree holds locally (int64) and
// after a JSON or protobuf round trip (float64, json.Number)
func toInt64(raw interface{}) int64 {
	switch n := raw.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
