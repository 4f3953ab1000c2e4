package alarm

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Field names shared by requests and responses.
const (
	fieldID          = "id"
	fieldTime        = "time"
	fieldActive      = "active"
	fieldDate        = "date"
	fieldHour        = "hour"
	fieldMinute      = "minute"
	fieldAlarms      = "alarms"
	fieldNotice      = "notice"
	fieldState       = "state"
	fieldStopEnabled = "stop_enabled"
	fieldEntryID     = "entry_id"
	fieldSince       = "since"
	fieldNow         = "now"
	fieldPlayback    = "playback"
	fieldNext        = "next"
	fieldArmed       = "armed"
)

// errMissingField is returned when a required field is absent or has the wrong kind.
var errMissingField = errors.New("missing or invalid field")

// NewAddRequest builds the AddAlarm request from display input.
func NewAddRequest(date string, hour, minute int) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldDate:   structpb.NewStringValue(date),
			fieldHour:   structpb.NewNumberValue(float64(hour)),
			fieldMinute: structpb.NewNumberValue(float64(minute)),
		},
	}
}

// ParseAddRequest extracts display input from an AddAlarm request.
func ParseAddRequest(req *structpb.Struct) (string, int, int, error) {
	date, err := stringField(req, fieldDate)
	if err != nil {
		return "", 0, 0, err
	}

	hour, err := intField(req, fieldHour)
	if err != nil {
		return "", 0, 0, err
	}

	minute, err := intField(req, fieldMinute)
	if err != nil {
		return "", 0, 0, err
	}

	return date, hour, minute, nil
}

// EntryToStruct converts an entry to its wire form.
func EntryToStruct(entry *domain.Entry) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldID:     structpb.NewStringValue(entry.ID.String()),
			fieldTime:   structpb.NewStringValue(domain.FormatMoment(entry.TriggerMoment)),
			fieldActive: structpb.NewBoolValue(entry.Active),
		},
	}
}

// EntryFromStruct converts the wire form back to an entry in loc.
func EntryFromStruct(st *structpb.Struct, loc *time.Location) (*domain.Entry, error) {
	rawID, err := stringField(st, fieldID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse entry id: %w", err)
	}

	rawTime, err := stringField(st, fieldTime)
	if err != nil {
		return nil, err
	}

	moment, err := domain.ParseStoredMoment(rawTime, loc)
	if err != nil {
		return nil, err
	}

	return &domain.Entry{
		ID:            id,
		TriggerMoment: moment,
		Active:        st.GetFields()[fieldActive].GetBoolValue(),
	}, nil
}

// EntriesToStruct wraps a list of entries and the load notice.
func EntriesToStruct(entries []*domain.Entry, notice string) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(entries))
	for _, entry := range entries {
		values = append(values, structpb.NewStructValue(EntryToStruct(entry)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldAlarms: structpb.NewListValue(&structpb.ListValue{Values: values}),
			fieldNotice: structpb.NewStringValue(notice),
		},
	}
}

// EntriesFromStruct is the inverse of EntriesToStruct.
func EntriesFromStruct(st *structpb.Struct, loc *time.Location) ([]*domain.Entry, string, error) {
	values := st.GetFields()[fieldAlarms].GetListValue().GetValues()
	entries := make([]*domain.Entry, 0, len(values))

	for i, value := range values {
		entry, err := EntryFromStruct(value.GetStructValue(), loc)
		if err != nil {
			return nil, "", fmt.Errorf("alarm #%d: %w", i, err)
		}

		entries = append(entries, entry)
	}

	return entries, st.GetFields()[fieldNotice].GetStringValue(), nil
}

// PlaybackToStruct converts the player state to its wire form.
func PlaybackToStruct(playback domain.Playback) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldState:       structpb.NewStringValue(playback.State.String()),
		fieldStopEnabled: structpb.NewBoolValue(playback.StopEnabled),
		fieldEntryID:     structpb.NewStringValue(""),
		fieldSince:       structpb.NewStringValue(""),
	}

	if playback.EntryID != uuid.Nil {
		fields[fieldEntryID] = structpb.NewStringValue(playback.EntryID.String())
	}

	if !playback.Since.IsZero() {
		fields[fieldSince] = structpb.NewStringValue(playback.Since.Format(time.RFC3339))
	}

	return &structpb.Struct{Fields: fields}
}

// PlaybackFromStruct is the inverse of PlaybackToStruct.
func PlaybackFromStruct(st *structpb.Struct) (domain.Playback, error) {
	fields := st.GetFields()
	playback := domain.Playback{
		State:       domain.ParsePlayerState(fields[fieldState].GetStringValue()),
		StopEnabled: fields[fieldStopEnabled].GetBoolValue(),
	}

	if raw := fields[fieldEntryID].GetStringValue(); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.Playback{}, fmt.Errorf("parse playback entry id: %w", err)
		}

		playback.EntryID = id
	}

	if raw := fields[fieldSince].GetStringValue(); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Playback{}, fmt.Errorf("parse playback start: %w", err)
		}

		playback.Since = since
	}

	return playback, nil
}

// StatusToStruct converts a daemon snapshot to its wire form.
func StatusToStruct(status *domain.Status) *structpb.Struct {
	next := structpb.NewNullValue()
	if status.Next != nil {
		next = structpb.NewStructValue(EntryToStruct(status.Next))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldNow:      structpb.NewStringValue(status.Now.Format(time.RFC3339)),
			fieldPlayback: structpb.NewStructValue(PlaybackToStruct(status.Playback)),
			fieldNext:     next,
			fieldArmed:    structpb.NewNumberValue(float64(status.Armed)),
			fieldNotice:   structpb.NewStringValue(status.Notice),
		},
	}
}

// StatusFromStruct is the inverse of StatusToStruct.
func StatusFromStruct(st *structpb.Struct, loc *time.Location) (*domain.Status, error) {
	fields := st.GetFields()

	now, err := time.Parse(time.RFC3339, fields[fieldNow].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("parse daemon time: %w", err)
	}

	playback, err := PlaybackFromStruct(fields[fieldPlayback].GetStructValue())
	if err != nil {
		return nil, err
	}

	status := &domain.Status{
		Now:      now,
		Playback: playback,
		Armed:    int(fields[fieldArmed].GetNumberValue()),
		Notice:   fields[fieldNotice].GetStringValue(),
	}

	if nextStruct := fields[fieldNext].GetStructValue(); nextStruct != nil {
		status.Next, err = EntryFromStruct(nextStruct, loc)
		if err != nil {
			return nil, fmt.Errorf("next alarm: %w", err)
		}
	}

	return status, nil
}

// stringField returns a required string field.
func stringField(st *structpb.Struct, name string) (string, error) {
	value, ok := st.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", errMissingField, name)
	}

	if _, isString := value.GetKind().(*structpb.Value_StringValue); !isString {
		return "", fmt.Errorf("%w: %s", errMissingField, name)
	}

	return value.GetStringValue(), nil
}

// intField returns a required whole-number field.
func intField(st *structpb.Struct, name string) (int, error) {
	value, ok := st.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errMissingField, name)
	}

	if _, isNumber := value.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, fmt.Errorf("%w: %s", errMissingField, name)
	}

	number := value.GetNumberValue()
	if number != math.Trunc(number) {
		return 0, fmt.Errorf("%w: %s is not a whole number", errMissingField, name)
	}

	return int(number), nil
}
