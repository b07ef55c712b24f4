package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"flight_dashboard/internal/adapters/observability"
	"flight_dashboard/internal/domain"
)

// Cache keys read by the API and evicted after every processed run.
const (
	KeySummary   = "summary:latest"
	KeyDashboard = "dashboard:latest"
)

// PipelineDeps wires the pipeline. Provider, Archive and Cache are optional.
type PipelineDeps struct {
	Query     domain.QuerySource
	Provider  domain.FlightProvider
	Snapshots domain.SnapshotStore
	Summaries domain.SummaryStore
	History   domain.HistoryStore
	Dashboard domain.DashboardSink
	Renderer  domain.DashboardRenderer
	Archive   domain.RunArchive
	Cache     domain.Cache

	Limits   Limits
	Location *time.Location
	Now      func() time.Time
	NewID    func() string
}

// Pipeline runs the fetch → process → render stages. Stages only talk to each
// other through the stores.
type Pipeline struct {
	d  PipelineDeps
	ex *Extractor
}

func NewPipeline(d PipelineDeps) *Pipeline {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return &Pipeline{d: d, ex: NewExtractor(d.Limits)}
}

// Fetch calls the provider with the configured query and replaces the raw
// snapshot. A missing query file or API key is fatal.
func (p *Pipeline) Fetch(ctx context.Context) (meta domain.SnapshotMeta, err error) {
	defer stage("fetch", time.Now(), &err)

	if p.d.Provider == nil {
		return meta, fmt.Errorf("fetch: %w", domain.ErrMissingAPIKey)
	}
	q, err := p.d.Query.LoadQuery(ctx)
	if err != nil {
		return meta, fmt.Errorf("fetch: load query: %w", err)
	}
	params := BuildParams(q)
	runID := p.d.NewID()
	log.Info().Str("run_id", runID).Interface("params", params).Msg("calling provider")

	resp, err := p.d.Provider.Search(ctx, params)
	if err != nil {
		return meta, fmt.Errorf("fetch: search: %w", err)
	}
	meta = domain.SnapshotMeta{
		FetchedAt: domain.FetchedAtUTC(p.d.Now()),
		RunID:     runID,
		Params:    params,
	}
	if err := p.d.Snapshots.WriteSnapshot(ctx, domain.RawSnapshot{Meta: meta, Response: resp}); err != nil {
		return meta, fmt.Errorf("fetch: %w", err)
	}
	log.Info().Str("run_id", runID).Int("bytes", len(resp)).Msg("saved raw response")
	return meta, nil
}

// Process turns the raw snapshot into the summary. Only reading the snapshot
// and writing the summary can fail it; history, archive and cache updates are
// best effort.
func (p *Pipeline) Process(ctx context.Context) (sum domain.Summary, err error) {
	defer stage("process", time.Now(), &err)

	doc, err := p.d.Snapshots.ReadSnapshot(ctx)
	if err != nil {
		return sum, fmt.Errorf("process: %w", err)
	}
	sum, defects := p.ex.ExtractReport(doc)
	for _, d := range defects {
		log.Warn().Int("offer", d.Index).Str("reason", d.Reason).Msg("offer skipped")
	}
	observability.ObserveOffers(p.ex.Considered(doc)-len(defects), len(defects))

	if err := p.d.Summaries.WriteSummary(ctx, sum); err != nil {
		return sum, fmt.Errorf("process: %w", err)
	}
	log.Info().
		Int("total_flights", sum.TotalFlights).
		Int("top_offers", len(sum.TopOffers)).
		Int("skipped", len(defects)).
		Msg("wrote summary")

	now := p.d.Now()
	if sum.MinPrice != nil {
		rec := domain.NewHistoryRecord(now, p.d.Location, *sum.MinPrice)
		if err := p.d.History.Append(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("history append failed")
		} else {
			log.Info().Str("timestamp", rec.Timestamp).Float64("min_price", rec.MinPrice).Msg("appended history")
		}
	}

	if p.d.Archive != nil {
		id, _ := doc.Get("meta", "run_id").Str()
		if id == "" {
			// snapshots written by older fetchers carry no run id
			id = p.d.NewID()
		}
		fetchedAt, _ := doc.Get("meta", "fetched_at").Str()
		run := domain.Run{
			ID:           id,
			FetchedAt:    fetchedAt,
			ProcessedAt:  now.UTC(),
			MinPrice:     sum.MinPrice,
			TotalFlights: sum.TotalFlights,
			Summary:      sum,
		}
		if err := p.d.Archive.SaveRun(ctx, run); err != nil {
			log.Warn().Err(err).Str("err_type", observability.LabelErr(err)).Str("run_id", run.ID).Msg("archive run failed")
		}
	}

	if p.d.Cache != nil {
		for _, k := range []string{KeySummary, KeyDashboard} {
			if err := p.d.Cache.Del(ctx, k); err != nil {
				log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
			}
		}
	}
	return sum, nil
}

// Render regenerates the dashboard from whatever artifacts exist.
func (p *Pipeline) Render(ctx context.Context) (err error) {
	defer stage("render", time.Now(), &err)

	d := assembleDashboard(ctx, p.d.Query, p.d.Summaries, p.d.History, p.d.Now())
	var buf bytes.Buffer
	if err := p.d.Renderer.Render(&buf, d); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := p.d.Dashboard.WriteDashboard(ctx, buf.Bytes()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Info().Int("bytes", buf.Len()).Int("history", len(d.History)).Msg("wrote dashboard")
	return nil
}

// Run executes all three stages, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.Fetch(ctx); err != nil {
		return err
	}
	if _, err := p.Process(ctx); err != nil {
		return err
	}
	return p.Render(ctx)
}

// assembleDashboard gathers render inputs; every source is optional.
func assembleDashboard(ctx context.Context, qs domain.QuerySource, ss domain.SummaryStore, hs domain.HistoryStore, now time.Time) domain.Dashboard {
	d := domain.Dashboard{Summary: domain.EmptySummary(), GeneratedAt: now}

	if q, err := qs.LoadQuery(ctx); err == nil {
		d.Query = q
	} else if !errors.Is(err, domain.ErrQueryMissing) {
		log.Warn().Err(err).Msg("query unreadable; rendering without it")
	}

	if s, err := ss.ReadSummary(ctx); err == nil {
		d.Summary = s
	} else if !errors.Is(err, domain.ErrSummaryMissing) {
		log.Warn().Err(err).Msg("summary unreadable; rendering empty summary")
	}

	if h, err := hs.List(ctx); err == nil {
		d.History = h
	} else {
		log.Warn().Err(err).Msg("history unreadable; rendering without it")
	}
	return d
}

func stage(name string, start time.Time, err *error) {
	observability.ObserveStage(name, *err, time.Since(start))
	if *err != nil {
		return
	}
	log.Debug().Str("stage", name).Dur("duration", time.Since(start)).Msg("stage done")
}
