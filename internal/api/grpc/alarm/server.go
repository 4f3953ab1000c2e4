package alarm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	AddAlarmAt(ctx context.Context, date string, hour, minute int) (*domain.Entry, error)
	ToggleAlarm(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	DeleteAlarm(ctx context.Context, id uuid.UUID) error
	ListAlarms(ctx context.Context) []*domain.Entry
	Notice() string
	StopSound(ctx context.Context) domain.Playback
	Status(ctx context.Context) *domain.Status
}

// Server implements the AlarmClockService gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ListAlarms returns every alarm in insertion order along with the load notice.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return EntriesToStruct(s.service.ListAlarms(ctx), s.service.Notice()), nil
}

// AddAlarm parses the picked date and time and schedules a new alarm.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	date, hour, minute, err := ParseAddRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	entry, err := s.service.AddAlarmAt(ctx, date, hour, minute)
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	return EntryToStruct(entry), nil
}

// ToggleAlarm flips the active flag of one alarm.
func (s *Server) ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := parseID(req)
	if err != nil {
		return nil, err
	}

	entry, err := s.service.ToggleAlarm(ctx, id)
	if err != nil {
		return nil, toStatusError(ctx, err)
	}

	return EntryToStruct(entry), nil
}

// DeleteAlarm removes one alarm.
func (s *Server) DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := parseID(req)
	if err != nil {
		return nil, err
	}

	if err = s.service.DeleteAlarm(ctx, id); err != nil {
		return nil, toStatusError(ctx, err)
	}

	return new(emptypb.Empty), nil
}

// StopSound silences a ringing alarm. It succeeds when nothing is playing.
func (s *Server) StopSound(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return PlaybackToStruct(s.service.StopSound(ctx)), nil
}

// GetStatus returns the current time, player state and next alarm.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return StatusToStruct(s.service.Status(ctx)), nil
}

// parseID validates an id request.
func parseID(req *wrapperspb.StringValue) (uuid.UUID, error) {
	if req == nil || req.GetValue() == "" {
		return uuid.Nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid alarm id %q", req.GetValue())
	}

	return id, nil
}

// toStatusError maps service errors to gRPC status codes.
func toStatusError(ctx context.Context, err error) error {
	switch {
	case domain.IsValidationError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrEntryNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		logger.ErrorKV(ctx, "Alarm operation failed", "error", err)

		return status.Error(codes.Internal, "unable to persist alarms")
	}
}
