package app

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"flight_dashboard/internal/domain"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
	DefaultRunsLimit    = 20
)

// QueryDeps wires the read side. Archive and Cache are optional.
type QueryDeps struct {
	Query     domain.QuerySource
	Summaries domain.SummaryStore
	History   domain.HistoryStore
	Renderer  domain.DashboardRenderer
	Archive   domain.RunArchive
	Cache     domain.Cache
	CacheTTL  time.Duration
	Now       func() time.Time
}

// QueryService serves pipeline artifacts to the API. Summary and dashboard
// reads go through the cache, and concurrent misses share one load.
type QueryService struct {
	d  QueryDeps
	sf singleflight.Group
}

func NewQueryService(d QueryDeps) *QueryService {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &QueryService{d: d}
}

func (s *QueryService) ttl() int { return int(s.d.CacheTTL.Seconds()) }

// Summary returns the latest summary; ErrSummaryMissing before the first run.
func (s *QueryService) Summary(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	if s.d.Cache != nil {
		if ok, _ := s.d.Cache.Get(ctx, KeySummary, &sum); ok {
			sum.Normalize()
			return sum, nil
		}
	}
	v, err, _ := s.sf.Do(KeySummary, func() (any, error) {
		sum, err := s.d.Summaries.ReadSummary(ctx)
		if err != nil {
			return domain.Summary{}, err
		}
		if s.d.Cache != nil {
			if err := s.d.Cache.Set(ctx, KeySummary, sum, s.ttl()); err != nil {
				log.Warn().Err(err).Str("key", KeySummary).Msg("cache set failed")
			}
		}
		return sum, nil
	})
	if err != nil {
		return domain.Summary{}, err
	}
	return v.(domain.Summary), nil
}

// Offers returns one ranked bucket, or the overall top offers when st is empty.
func (s *QueryService) Offers(ctx context.Context, st domain.StopType) ([]domain.Offer, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if st == "" {
		return sum.TopOffers, nil
	}
	if _, ok := domain.ParseStopType(string(st)); !ok {
		return nil, fmt.Errorf("unknown stop type %q", st)
	}
	return sum.OffersByStops.Bucket(st), nil
}

// History returns the newest limit records in file order. limit is clamped
// to [1, MaxHistoryLimit]; zero means DefaultHistoryLimit.
func (s *QueryService) History(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	recs, err := s.d.History.List(ctx)
	if err != nil {
		return nil, err
	}
	return lastN(recs, clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)), nil
}

func (s *QueryService) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	if s.d.Archive == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return s.d.Archive.ListRuns(ctx, clampLimit(limit, DefaultRunsLimit, MaxHistoryLimit))
}

// DashboardHTML renders the dashboard from the current artifacts.
func (s *QueryService) DashboardHTML(ctx context.Context) ([]byte, error) {
	if s.d.Cache != nil {
		var html string
		if ok, _ := s.d.Cache.Get(ctx, KeyDashboard, &html); ok && html != "" {
			return []byte(html), nil
		}
	}
	v, err, _ := s.sf.Do(KeyDashboard, func() (any, error) {
		d := assembleDashboard(ctx, s.d.Query, s.d.Summaries, s.d.History, s.d.Now())
		var buf bytes.Buffer
		if err := s.d.Renderer.Render(&buf, d); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		if s.d.Cache != nil {
			if err := s.d.Cache.Set(ctx, KeyDashboard, buf.String(), s.ttl()); err != nil {
				log.Warn().Err(err).Str("key", KeyDashboard).Msg("cache set failed")
			}
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func clampLimit(n, def, hi int) int {
	switch {
	case n <= 0:
		return def
	case n > hi:
		return hi
	}
	return n
}

func lastN[T any](in []T, n int) []T {
	if len(in) <= n {
		return in
	}
	out := make([]T, n)
	copy(out, in[len(in)-n:])
	return out
}
