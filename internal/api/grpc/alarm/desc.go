package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClockService"

// Full method names used by clients.
const (
	ListAlarmsMethod  = "/" + ServiceName + "/ListAlarms"
	AddAlarmMethod    = "/" + ServiceName + "/AddAlarm"
	ToggleAlarmMethod = "/" + ServiceName + "/ToggleAlarm"
	DeleteAlarmMethod = "/" + ServiceName + "/DeleteAlarm"
	StopSoundMethod   = "/" + ServiceName + "/StopSound"
	GetStatusMethod   = "/" + ServiceName + "/GetStatus"
)

// AlarmClockServer is the server API of the alarm clock control service.
// Messages are protobuf well-known types so no generated code is needed.
type AlarmClockServer interface {
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	StopSound(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes AlarmClockServer for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListAlarms", Handler: unary(ListAlarmsMethod, AlarmClockServer.ListAlarms)},
		{MethodName: "AddAlarm", Handler: unary(AddAlarmMethod, AlarmClockServer.AddAlarm)},
		{MethodName: "ToggleAlarm", Handler: unary(ToggleAlarmMethod, AlarmClockServer.ToggleAlarm)},
		{MethodName: "DeleteAlarm", Handler: unary(DeleteAlarmMethod, AlarmClockServer.DeleteAlarm)},
		{MethodName: "StopSound", Handler: unary(StopSoundMethod, AlarmClockServer.StopSound)},
		{MethodName: "GetStatus", Handler: unary(GetStatusMethod, AlarmClockServer.GetStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// Register attaches srv to a gRPC server.
func Register(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler, honoring interceptors.
func unary[Req, Resp any](
	fullMethod string,
	call func(AlarmClockServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)
			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}
