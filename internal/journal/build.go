package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/cscript/internal/transform"
	"github.com/roach88/cscript/internal/version"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("journal: build not found")

// Status of a recorded build.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Build describes one transpile to be recorded.
type Build struct {
	RunID      string
	InputPath  string
	OutputPath string
	Source     string
	Output     string // generated code, "" on failure
	Features   transform.Features
	Stats      map[transform.Feature]int
	Duration   time.Duration
	ErrorCode  string
	Err        error
}

// Entry is a recorded build as read back from the journal.
type Entry struct {
	ID           string                    `json:"id"`
	RunID        string                    `json:"run_id"`
	StartedAt    time.Time                 `json:"started_at"`
	Duration     time.Duration             `json:"duration"`
	InputPath    string                    `json:"input_path"`
	OutputPath   string                    `json:"output_path,omitempty"`
	SourceHash   string                    `json:"source_hash"`
	OutputHash   string                    `json:"output_hash,omitempty"`
	FeaturesHash string                    `json:"features_hash"`
	Features     []string                  `json:"features"`
	Status       Status                    `json:"status"`
	ErrorCode    string                    `json:"error_code,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Stats        map[transform.Feature]int `json:"stats"`
	ToolVersion  string                    `json:"tool_version"`
}

// NewRunID returns an id grouping the builds of one command invocation.
func (j *Journal) NewRunID() string {
	return j.ids.Generate()
}

// Record stores b and returns the stored entry.
func (j *Journal) Record(ctx context.Context, b Build) (*Entry, error) {
	featuresHash, err := FeaturesHash(b.Features)
	if err != nil {
		return nil, fmt.Errorf("record build: %w", err)
	}

	e := &Entry{
		ID:           j.ids.Generate(),
		RunID:        b.RunID,
		StartedAt:    j.now().UTC().Truncate(time.Millisecond),
		Duration:     b.Duration.Truncate(time.Microsecond),
		InputPath:    b.InputPath,
		SourceHash:   SourceHash(b.Source),
		FeaturesHash: featuresHash,
		Features:     featureNames(b.Features),
		Status:       StatusOK,
		Stats:        b.Stats,
		ToolVersion:  version.Tool,
	}
	if e.RunID == "" {
		e.RunID = e.ID
	}
	if e.Stats == nil {
		e.Stats = map[transform.Feature]int{}
	}
	if b.Err != nil {
		e.Status = StatusError
		e.ErrorCode = b.ErrorCode
		e.Error = b.Err.Error()
	} else {
		e.OutputPath = b.OutputPath
		e.OutputHash = OutputHash(b.Output)
	}

	statsJSON, err := json.Marshal(e.Stats)
	if err != nil {
		return nil, fmt.Errorf("record build: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO builds
		(id, run_id, started_at, duration_us, input_path, output_path, source_hash,
		 output_hash, features_hash, features, status, error_code, error, stats, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.RunID,
		e.StartedAt.UnixMilli(),
		e.Duration.Microseconds(),
		e.InputPath,
		e.OutputPath,
		e.SourceHash,
		e.OutputHash,
		e.FeaturesHash,
		strings.Join(e.Features, ","),
		string(e.Status),
		e.ErrorCode,
		e.Error,
		string(statsJSON),
		e.ToolVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("record build: %w", err)
	}
	return e, nil
}

// Filter narrows List.
type Filter struct {
	Limit     int    // 0 means no limit
	InputPath string // exact match when set
	RunID     string
	Status    Status
}

const selectColumns = `
	SELECT id, run_id, started_at, duration_us, input_path, output_path, source_hash,
	       output_hash, features_hash, features, status, error_code, error, stats, tool_version
	FROM builds`

// List returns recorded builds, newest first. Ties on started_at are
// broken by id, which is time-ordered.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.InputPath != "" {
		where = append(where, "input_path = ?")
		args = append(args, f.InputPath)
	}
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list builds: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return out, nil
}

// Get returns the build with the given id.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get build: %w", err)
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e          Entry
		startedMs  int64
		durationUs int64
		features   string
		status     string
		stats      string
	)
	err := s.Scan(
		&e.ID, &e.RunID, &startedMs, &durationUs, &e.InputPath, &e.OutputPath,
		&e.SourceHash, &e.OutputHash, &e.FeaturesHash, &features, &status,
		&e.ErrorCode, &e.Error, &stats, &e.ToolVersion,
	)
	if err != nil {
		return nil, err
	}
	e.StartedAt = time.UnixMilli(startedMs).UTC()
	e.Duration = time.Duration(durationUs) * time.Microsecond
	e.Status = Status(status)
	e.Features = []string{}
	if features != "" {
		e.Features = strings.Split(features, ",")
	}
	e.Stats = map[transform.Feature]int{}
	if err := json.Unmarshal([]byte(stats), &e.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &e, nil
}

func featureNames(f transform.Features) []string {
	active := f.Active()
	out := make([]string, 0, len(active)+1)
	for _, a := range active {
		out = append(out, string(a))
	}
	if f.EnhancedTypes {
		out = append(out, "enhancedTypes")
	}
	return out
}
