package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/craftplan-go/internal/domain/resource"
)

// PlanResult is a plan computed by the daemon
type PlanResult struct {
	PlanID string
	// Plan is the debug export tree of the frozen plan
	Plan map[string]interface{}
}

// PlannerClient talks to a planner daemon
type PlannerClient struct {
	conn *grpc.ClientConn
}

// NewPlannerClient connects to the daemon's Unix socket
func NewPlannerClient(socketPath string) (*PlannerClient, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &PlannerClient{conn: conn}, nil
}

// NewPlannerClientFromConn wraps an established connection
func NewPlannerClientFromConn(conn *grpc.ClientConn) *PlannerClient {
	return &PlannerClient{conn: conn}
}

// Close closes the gRPC connection
func (c *PlannerClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Plan asks the daemon for a plan of amount units of key
func (c *PlannerClient) Plan(ctx context.Context, key resource.Key, amount int64, mode resource.Mode, ceiling int64) (*PlanResult, error) {
	req, err := planRequestToStruct(key.String(), amount, mode, ceiling)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, planMethod, req, out); err != nil {
		return nil, err
	}

	plan, _ := out.AsMap()["plan"].(map[string]interface{})
	return &PlanResult{
		PlanID: out.GetFields()["plan_id"].GetStringValue(),
		Plan:   plan,
	}, nil
}

// GetPlan fetches a stored plan record
func (c *PlannerClient) GetPlan(ctx context.Context, planID string) (map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"plan_id": planID})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, getPlanMethod, req, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// ListPlans fetches the most recent stored plan records
func (c *PlannerClient) ListPlans(ctx context.Context, limit int) ([]map[string]interface{}, error) {
	req, err := structpb.NewStruct(map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, listPlansMethod, req, out); err != nil {
		return nil, err
	}

	raw, _ := out.AsMap()["plans"].([]interface{})
	plans := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			plans = append(plans, m)
		}
	}
	return plans, nil
}
