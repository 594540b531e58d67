package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/adapters/metrics"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/application/provider/services"
	"github.com/andrescamacho/craftplan-go/internal/domain/pattern"
	"github.com/andrescamacho/craftplan-go/internal/domain/provider"
	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PushPatternCommand pushes the inputs of one pattern invocation out of a
// pattern provider
type PushPatternCommand struct {
	ProviderName string
	Position     provider.Position
	Sides        []provider.Direction // Optional: defaults to all six
	Blocking     bool
	PatternID    pattern.ID
	Inputs       []resource.GenericStack // Optional: defaults to each slot's first candidate
}

// PushPatternResponse reports the side the inputs went out on
type PushPatternResponse struct {
	Side provider.Direction
}

// PushPatternHandler handles PushPatternCommand
type PushPatternHandler struct {
	patterns pattern.Lookup
	pusher   *services.PatternPusher
}

// NewPushPatternHandler creates a new push pattern handler
func NewPushPatternHandler(patterns pattern.Lookup, pusher *services.PatternPusher) *PushPatternHandler {
	return &PushPatternHandler{patterns: patterns, pusher: pusher}
}

// Handle executes the push pattern command
func (h *PushPatternHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*PushPatternCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PushPatternCommand, got %T", request)
	}

	details, err := h.patterns.Get(ctx, cmd.PatternID)
	if err != nil {
		return nil, err
	}

	p, err := provider.NewPatternProvider(cmd.ProviderName, cmd.Position, cmd.Blocking, cmd.Sides...)
	if err != nil {
		return nil, err
	}

	side, err := h.pusher.Push(ctx, p, details, cmd.Inputs)
	metrics.RecordPatternPush(string(cmd.PatternID), err == nil)
	if err != nil {
		return nil, err
	}
	return &PushPatternResponse{Side: side}, nil
}
