package steps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// cellValue returns the value in row under columnName, using the first table
// row as the header
func cellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}

	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return strings.TrimSpace(row.Cells[i].Value)
			}
			return ""
		}
	}
	return ""
}

// dataRows skips the header row
func dataRows(table *godog.Table) []*messages.PickleTableRow {
	if len(table.Rows) < 2 {
		return nil
	}
	return table.Rows[1:]
}

// counterFromTable reads a key/amount table into a KeyCounter
func counterFromTable(table *godog.Table) (*resource.KeyCounter, error) {
	counter := resource.NewKeyCounter()
	for _, row := range dataRows(table) {
		key, err := resource.ParseKey(cellValue(table, row, "key"))
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseInt(cellValue(table, row, "amount"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount for %s: %w", key, err)
		}
		counter.Add(key, amount)
	}
	return counter, nil
}

// parseStacks reads "4 item:oak_planks; 1 item:sawdust"
func parseStacks(s string) ([]resource.GenericStack, error) {
	var stacks []resource.GenericStack
	for _, part := range splitList(s) {
		amount, rest, err := splitAmount(part)
		if err != nil {
			return nil, err
		}
		key, err := resource.ParseKey(rest)
		if err != nil {
			return nil, err
		}
		stacks = append(stacks, resource.GenericStack{Key: key, Amount: amount})
	}
	return stacks, nil
}

// parseSlots reads "2 item:oak_planks/item:birch_planks; 1 item:stick",
// where "/" separates the candidates of one slot
func parseSlots(s string) ([]pattern.InputSlot, error) {
	var slots []pattern.InputSlot
	for _, part := range splitList(s) {
		amount, rest, err := splitAmount(part)
		if err != nil {
			return nil, err
		}
		var candidates []resource.Key
		for _, raw := range strings.Split(rest, "/") {
			key, err := resource.ParseKey(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, key)
		}
		slots = append(slots, pattern.InputSlot{Candidates: candidates, Amount: amount})
	}
	return slots, nil
}

func splitList(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func splitAmount(part string) (int64, string, error) {
	fields := strings.Fields(part)
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("expected \"<amount> <key>\", got %q", part)
	}
	amount, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad amount in %q: %w", part, err)
	}
	return amount, fields[1], nil
}

func describeCounter(c *resource.KeyCounter) string {
	if c.IsEmpty() {
		return "nothing"
	}
	parts := make([]string, 0, c.Len())
	for _, stack := range c.Stacks() {
		parts = append(parts, stack.String())
	}
	return strings.Join(parts, ", ")
}
