package grpc

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
)

// Plan request fields: key (string, required), amount (number, required),
// mode ("simulate" | "modulate", default simulate), ceiling (number, optional,
// defaultCeiling when absent).
func planCommandFromStruct(req *structpb.Struct, defaultCeiling int64) (*commands.PlanCraftingCommand, error) {
	fields := req.GetFields()

	rawKey := fields["key"].GetStringValue()
	if rawKey == "" {
		return nil, shared.NewValidationError("key", "is required")
	}
	key, err := resource.ParseKey(rawKey)
	if err != nil {
		return nil, shared.NewValidationError("key", err.Error())
	}

	amount, err := integerField(req, "amount")
	if err != nil {
		return nil, err
	}

	mode := resource.Simulate
	if raw := fields["mode"].GetStringValue(); raw != "" {
		if mode, err = resource.ParseMode(raw); err != nil {
			return nil, shared.NewValidationError("mode", err.Error())
		}
	}

	ceiling := defaultCeiling
	if _, ok := fields["ceiling"]; ok {
		if ceiling, err = integerField(req, "ceiling"); err != nil {
			return nil, err
		}
	}

	return &commands.PlanCraftingCommand{Key: key, Amount: amount, Mode: mode, Ceiling: ceiling}, nil
}

// A zero ceiling is left out so the daemon applies its configured one
func planRequestToStruct(key string, amount int64, mode resource.Mode, ceiling int64) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"key":    key,
		"amount": amount,
		"mode":   string(mode),
	}
	if ceiling != 0 {
		fields["ceiling"] = ceiling
	}
	return structpb.NewStruct(fields)
}

func planResponseToStruct(resp *commands.PlanCraftingResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"plan_id": resp.PlanID,
		"plan":    resp.Plan.ExportDebug(),
	})
}

func recordToMap(record *crafting.PlanRecord) map[string]interface{} {
	m := map[string]interface{}{
		"id": record.ID,
		"final_output": map[string]interface{}{
			"key":    record.FinalOutput.Key.String(),
			"amount": record.FinalOutput.Amount,
		},
		"mode":           string(record.Mode),
		"outcome":        string(record.Outcome),
		"bytes":          record.Bytes,
		"simulation":     record.Simulation,
		"multiple_paths": record.MultiplePaths,
		"missing_total":  record.MissingTotal,
		"planned_at":     record.PlannedAt.UTC().Format(time.RFC3339Nano),
	}
	if record.Debug != nil {
		m["debug"] = record.Debug
	}
	return m
}

func recordsToStruct(records []*crafting.PlanRecord) (*structpb.Struct, error) {
	list := make([]interface{}, len(records))
	for i, r := range records {
		list[i] = recordToMap(r)
	}
	return structpb.NewStruct(map[string]interface{}{"plans": list})
}

// integerField reads a whole-number field; JSON numbers arrive as float64
func integerField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, shared.NewValidationError(name, "is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, shared.NewValidationError(name, "must be a number")
	}
	f := n.NumberValue
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, shared.NewValidationError(name, fmt.Sprintf("must be a whole number, got %v", f))
	}
	return int64(f), nil
}
