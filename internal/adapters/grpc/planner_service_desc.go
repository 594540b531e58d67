package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// PlannerServiceName is the fully qualified gRPC service name
const PlannerServiceName = "craftplan.v1.Planner"

const (
	planMethod      = "/" + PlannerServiceName + "/Plan"
	getPlanMethod   = "/" + PlannerServiceName + "/GetPlan"
	listPlansMethod = "/" + PlannerServiceName + "/ListPlans"
)

// PlannerServiceServer is the server API of the planner service.
// Messages are google.protobuf.Struct documents; see type_converters.go for
// the field layout.
type PlannerServiceServer interface {
	Plan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListPlans(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterPlannerServiceServer registers srv on s
func RegisterPlannerServiceServer(s grpc.ServiceRegistrar, srv PlannerServiceServer) {
	s.RegisterService(&plannerServiceDesc, srv)
}

var plannerServiceDesc = grpc.ServiceDesc{
	ServiceName: PlannerServiceName,
	HandlerType: (*PlannerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Plan", Handler: unaryHandler(planMethod, PlannerServiceServer.Plan)},
		{MethodName: "GetPlan", Handler: unaryHandler(getPlanMethod, PlannerServiceServer.GetPlan)},
		{MethodName: "ListPlans", Handler: unaryHandler(listPlansMethod, PlannerServiceServer.ListPlans)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "craftplan/v1/planner.proto",
}

type structMethod func(PlannerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a service method to grpc's method handler shape
func unaryHandler(fullMethod string, method structMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(PlannerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(PlannerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
