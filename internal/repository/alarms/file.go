package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm collection.
type Repository interface {
	Load(ctx context.Context) (*Loaded, error)
	Save(ctx context.Context, entries []*domain.Entry) error
	Backup(ctx context.Context) (string, error)
	Path() string
}

// FileRepository persists alarm entries to a JSON file.
type FileRepository struct {
	// fs is the filesystem holding the file.
	fs afero.Fs
	// path is the location of the JSON file on fs.
	path string
	// location is used to interpret stored local times.
	location *time.Location
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// Loaded is the content of the alarms file after ids were checked.
type Loaded struct {
	// Entries are the alarms in stored order.
	Entries []*domain.Entry
	// Assigned counts records stored without an id that got a fresh one.
	Assigned int
	// Duplicates counts records whose id repeated an earlier record and was replaced.
	Duplicates int
}

// Repaired reports whether the stored ids differ from Entries, so the file
// should be saved again to keep the ids stable across restarts.
func (l *Loaded) Repaired() bool {
	return l.Assigned > 0 || l.Duplicates > 0
}

// record is the on-disk shape of one entry.
type record struct {
	ID     string `json:"id,omitempty"`
	Time   string `json:"time"`
	Active bool   `json:"active"`
}

const (
	// indent matches the human-readable layout of existing alarm files.
	indent = "    "
	// backupSuffix is appended to a malformed file when it is set aside.
	backupSuffix = ".corrupt"
)

var (
	// ErrNotFound is returned when the alarms file does not exist yet.
	ErrNotFound = errors.New("alarms file not found")
	// ErrMalformed is returned when the alarms file exists but cannot be decoded.
	ErrMalformed = errors.New("alarms file is malformed")
)

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithLocation sets the time zone stored moments are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(r *FileRepository) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewFileRepository creates a repository that reads/writes JSON at path on fs.
func NewFileRepository(fs afero.Fs, path string, opts ...Option) *FileRepository {
	r := &FileRepository{
		fs:       fs,
		path:     filepath.Clean(path),
		location: time.Local,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads all entries from disk in stored order.
// Records without an id, and records repeating an earlier id, get a fresh one.
func (r *FileRepository) Load(_ context.Context) (*Loaded, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarms file: %w", err)
	}

	var records []record
	if err = json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	loaded := &Loaded{
		Entries: make([]*domain.Entry, 0, len(records)),
	}
	seen := make(map[uuid.UUID]struct{}, len(records))

	for i, rec := range records {
		entry, recErr := r.fromRecord(rec)
		if recErr != nil {
			return nil, fmt.Errorf("%w: alarm #%d: %w", ErrMalformed, i, recErr)
		}

		switch _, duplicate := seen[entry.ID]; {
		case rec.ID == "":
			loaded.Assigned++
		case duplicate:
			entry.ID = uuid.New()
			loaded.Duplicates++
		}

		seen[entry.ID] = struct{}{}
		loaded.Entries = append(loaded.Entries, entry)
	}

	return loaded, nil
}

// Save overwrites the file with the provided entries.
func (r *FileRepository) Save(_ context.Context, entries []*domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, toRecord(entry))
	}

	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	if err = afero.WriteFile(r.fs, r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarms file: %w", err)
	}

	return nil
}

// Backup moves the current file aside and returns the new path.
// Any earlier backup is replaced.
func (r *FileRepository) Backup(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := r.path + backupSuffix

	if err := r.fs.Rename(r.path, target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("back up alarms file: %w", err)
	}

	return target, nil
}

// fromRecord converts a stored record into a domain entry.
func (r *FileRepository) fromRecord(rec record) (*domain.Entry, error) {
	moment, err := domain.ParseStoredMoment(rec.Time, r.location)
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	if rec.ID != "" {
		id, err = uuid.Parse(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", rec.ID, err)
		}
	}

	return &domain.Entry{
		ID:            id,
		TriggerMoment: moment,
		Active:        rec.Active,
	}, nil
}

// toRecord converts a domain entry into its stored shape.
func toRecord(entry *domain.Entry) record {
	return record{
		ID:     entry.ID.String(),
		Time:   domain.FormatMoment(entry.TriggerMoment),
		Active: entry.Active,
	}
}
