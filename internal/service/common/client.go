//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the alarm clock control API with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn grpc.ClientConnInterface
	// closer releases conn, nil when the connection is not owned.
	closer func() error

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// location interprets alarm times received from the daemon.
	location *time.Location
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithLocation sets the zone alarm times are read in. Defaults to local time.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.location = loc
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the alarm daemon.
// The control API is meant for loopback use and carries no transport security.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("alarmctl")))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. Close does not release it.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
		location:    time.Local,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// ListAlarms returns all alarms and the daemon's load notice.
func (c *Client) ListAlarms(ctx context.Context) ([]*domain.Entry, string, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, api.ListAlarmsMethod, new(emptypb.Empty), resp); err != nil {
		return nil, "", fmt.Errorf("list alarms: %w", err)
	}

	entries, notice, err := api.EntriesFromStruct(resp, c.location)
	if err != nil {
		return nil, "", fmt.Errorf("decode alarms: %w", err)
	}

	return entries, notice, nil
}

// AddAlarm schedules an alarm for the picked date and hour/minute.
func (c *Client) AddAlarm(ctx context.Context, date string, hour, minute int) (*domain.Entry, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, api.AddAlarmMethod, api.NewAddRequest(date, hour, minute), resp); err != nil {
		return nil, fmt.Errorf("add alarm: %w", err)
	}

	return c.decodeEntry(resp)
}

// ToggleAlarm flips an alarm on or off.
func (c *Client) ToggleAlarm(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, api.ToggleAlarmMethod, wrapperspb.String(id.String()), resp); err != nil {
		return nil, fmt.Errorf("toggle alarm: %w", err)
	}

	return c.decodeEntry(resp)
}

// DeleteAlarm removes an alarm.
func (c *Client) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	if err := c.invoke(ctx, api.DeleteAlarmMethod, wrapperspb.String(id.String()), new(emptypb.Empty)); err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}

	return nil
}

// StopSound silences a ringing alarm.
func (c *Client) StopSound(ctx context.Context) (domain.Playback, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, api.StopSoundMethod, new(emptypb.Empty), resp); err != nil {
		return domain.Playback{}, fmt.Errorf("stop sound: %w", err)
	}

	return api.PlaybackFromStruct(resp)
}

// GetStatus retrieves the daemon snapshot.
func (c *Client) GetStatus(ctx context.Context) (*domain.Status, error) {
	resp := new(structpb.Struct)
	if err := c.invoke(ctx, api.GetStatusMethod, new(emptypb.Empty), resp); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return api.StatusFromStruct(resp, c.location)
}

// decodeEntry converts a single entry response.
func (c *Client) decodeEntry(resp *structpb.Struct) (*domain.Entry, error) {
	entry, err := api.EntryFromStruct(resp, c.location)
	if err != nil {
		return nil, fmt.Errorf("decode alarm: %w", err)
	}

	return entry, nil
}

// invoke performs one unary call under the call timeout.
func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	return c.conn.Invoke(callCtx, method, req, resp)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
