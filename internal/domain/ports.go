package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"flight_dashboard/internal/rawdoc"
)

// FlightProvider performs the single outbound search call.
type FlightProvider interface {
	Search(ctx context.Context, params map[string]string) (json.RawMessage, error)
}

type QuerySource interface {
	LoadQuery(ctx context.Context) (map[string]any, error)
}

type SnapshotStore interface {
	WriteSnapshot(ctx context.Context, s RawSnapshot) error
	// ReadSnapshot returns the whole snapshot file; ErrSnapshotMissing when absent.
	ReadSnapshot(ctx context.Context) (rawdoc.Value, error)
}

type SummaryStore interface {
	WriteSummary(ctx context.Context, s Summary) error
	// ReadSummary returns ErrSummaryMissing when no summary was written yet.
	ReadSummary(ctx context.Context) (Summary, error)
}

type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
	List(ctx context.Context) ([]HistoryRecord, error)
}

type DashboardSink interface {
	WriteDashboard(ctx context.Context, html []byte) error
}

// RunArchive keeps every processed run; optional.
type RunArchive interface {
	SaveRun(ctx context.Context, r Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Dashboard is everything the report renderer needs for one page.
type Dashboard struct {
	Query       map[string]any
	Summary     Summary
	History     []HistoryRecord
	GeneratedAt time.Time
}

type DashboardRenderer interface {
	Render(w io.Writer, d Dashboard) error
}
