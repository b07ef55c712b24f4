package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"flight_dashboard/internal/domain"
	"flight_dashboard/internal/rawdoc"
)

// ---- fakes ----

type fakeQuery struct {
	q   map[string]any
	err error
}

func (f *fakeQuery) LoadQuery(ctx context.Context) (map[string]any, error) { return f.q, f.err }

type fakeProvider struct {
	resp   json.RawMessage
	err    error
	calls  int
	params map[string]string
}

func (f *fakeProvider) Search(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	f.calls++
	f.params = params
	return f.resp, f.err
}

type memSnapshots struct {
	raw  []byte
	last domain.RawSnapshot
}

func (m *memSnapshots) WriteSnapshot(ctx context.Context, s domain.RawSnapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.raw, m.last = b, s
	return nil
}

func (m *memSnapshots) ReadSnapshot(ctx context.Context) (rawdoc.Value, error) {
	if m.raw == nil {
		return rawdoc.Value{}, domain.ErrSnapshotMissing
	}
	return rawdoc.Parse(m.raw)
}

type memSummaries struct {
	mu       sync.Mutex
	sum      *domain.Summary
	reads    int
	writeErr error
}

func (m *memSummaries) WriteSummary(ctx context.Context, s domain.Summary) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sum = &s
	return nil
}

func (m *memSummaries) ReadSummary(ctx context.Context) (domain.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.sum == nil {
		return domain.Summary{}, domain.ErrSummaryMissing
	}
	return *m.sum, nil
}

type memHistory struct {
	recs      []domain.HistoryRecord
	appendErr error
}

func (m *memHistory) Append(ctx context.Context, r domain.HistoryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.recs = append(m.recs, r)
	return nil
}

func (m *memHistory) List(ctx context.Context) ([]domain.HistoryRecord, error) {
	return append([]domain.HistoryRecord{}, m.recs...), nil
}

type memDashboard struct{ html []byte }

func (m *memDashboard) WriteDashboard(ctx context.Context, html []byte) error {
	m.html = append([]byte(nil), html...)
	return nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	last  domain.Dashboard
}

func (f *fakeRenderer) Render(w io.Writer, d domain.Dashboard) error {
	f.mu.Lock()
	f.calls++
	f.last = d
	n := f.calls
	f.mu.Unlock()
	_, err := fmt.Fprintf(w, "<html>render %d, %d offers</html>", n, len(d.Summary.TopOffers))
	return err
}

type memArchive struct {
	runs []domain.Run
	err  error
}

func (m *memArchive) SaveRun(ctx context.Context, r domain.Run) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, r)
	return nil
}

func (m *memArchive) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit < len(m.runs) {
		return m.runs[:limit], m.err
	}
	return m.runs, m.err
}

// fakeCache keeps JSON like the Redis adapter does, so values come back as
// fresh copies.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
	err   error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return c.err
}
