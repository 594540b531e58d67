package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/craftplan-go/internal/application/crafting/commands"
	"github.com/andrescamacho/craftplan-go/internal/application/crafting/queries"
	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
	"github.com/andrescamacho/craftplan-go/internal/domain/shared"
	"github.com/andrescamacho/craftplan-go/internal/domain/storage"
)

// plannerServiceImpl forwards gRPC calls to the mediator
type plannerServiceImpl struct {
	mediator       mediator.Mediator
	defaultCeiling int64
}

var _ PlannerServiceServer = (*plannerServiceImpl)(nil)

func newPlannerServiceImpl(med mediator.Mediator, defaultCeiling int64) *plannerServiceImpl {
	return &plannerServiceImpl{mediator: med, defaultCeiling: defaultCeiling}
}

func (s *plannerServiceImpl) Plan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := planCommandFromStruct(req, s.defaultCeiling)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	response, err := s.mediator.Send(ctx, cmd)
	if err != nil {
		return nil, toStatusError(err)
	}

	out, err := planResponseToStruct(response.(*commands.PlanCraftingResponse))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode plan: %v", err)
	}
	return out, nil
}

func (s *plannerServiceImpl) GetPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["plan_id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "plan_id is required")
	}

	response, err := s.mediator.Send(ctx, &queries.GetPlanQuery{PlanID: id})
	if err != nil {
		return nil, toStatusError(err)
	}

	out, err := structpb.NewStruct(recordToMap(response.(*queries.GetPlanResponse).Record))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode plan record: %v", err)
	}
	return out, nil
}

func (s *plannerServiceImpl) ListPlans(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var limit int64
	if _, ok := req.GetFields()["limit"]; ok {
		var err error
		if limit, err = integerField(req, "limit"); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	response, err := s.mediator.Send(ctx, &queries.ListPlansQuery{Limit: int(limit)})
	if err != nil {
		return nil, toStatusError(err)
	}

	out, err := recordsToStruct(response.(*queries.ListPlansResponse).Records)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode plan records: %v", err)
	}
	return out, nil
}

// toStatusError maps planner errors onto gRPC status codes
func toStatusError(err error) error {
	var (
		invalid    *crafting.ErrInvalidRequest
		malformed  *shared.ValidationError
		tooComplex *crafting.PlanTooComplexError
		notFound   *crafting.ErrPlanNotFound
		mismatch   *storage.StorageMutationMismatchError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &malformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &tooComplex):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &mismatch):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
