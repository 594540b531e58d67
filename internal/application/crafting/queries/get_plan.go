package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
)

// GetPlanQuery fetches a stored plan by ID
type GetPlanQuery struct {
	PlanID string
}

// GetPlanResponse carries the stored record
type GetPlanResponse struct {
	Record *crafting.PlanRecord
}

// ListPlansQuery fetches the most recent stored plans
type ListPlansQuery struct {
	Limit int
}

// ListPlansResponse carries stored records, newest first
type ListPlansResponse struct {
	Records []*crafting.PlanRecord
}

// GetPlanHandler handles GetPlanQuery
type GetPlanHandler struct {
	planRepo crafting.PlanRepository
}

// NewGetPlanHandler creates a new get plan handler
func NewGetPlanHandler(planRepo crafting.PlanRepository) *GetPlanHandler {
	return &GetPlanHandler{planRepo: planRepo}
}

// Handle executes the get plan query
func (h *GetPlanHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetPlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlanQuery, got %T", request)
	}
	if query.PlanID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	record, err := h.planRepo.FindByID(ctx, query.PlanID)
	if err != nil {
		return nil, err
	}
	return &GetPlanResponse{Record: record}, nil
}

// ListPlansHandler handles ListPlansQuery
type ListPlansHandler struct {
	planRepo crafting.PlanRepository
}

// NewListPlansHandler creates a new list plans handler
func NewListPlansHandler(planRepo crafting.PlanRepository) *ListPlansHandler {
	return &ListPlansHandler{planRepo: planRepo}
}

// Handle executes the list plans query
func (h *ListPlansHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListPlansQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPlansQuery, got %T", request)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	records, err := h.planRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &ListPlansResponse{Records: records}, nil
}
