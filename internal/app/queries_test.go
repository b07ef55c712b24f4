package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"flight_dashboard/internal/app"
	"flight_dashboard/internal/domain"
)

func summaryWith(prices ...float64) *domain.Summary {
	s := domain.EmptySummary()
	for _, p := range prices {
		o := domain.Offer{Price: ptr(p)}
		s.TopOffers = append(s.TopOffers, o)
		s.OffersByStops.Nonstop = append(s.OffersByStops.Nonstop, o)
	}
	s.TotalFlights = len(prices)
	return &s
}

func TestSummary_CacheMissThenHit(t *testing.T) {
	store := &memSummaries{sum: summaryWith(300)}
	cache := &fakeCache{}
	q := app.NewQueryService(app.QueryDeps{Summaries: store, Cache: cache, CacheTTL: 10 * time.Minute})

	s, err := q.Summary(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if s.TotalFlights != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	// mutate store to ensure second read indeed comes from cache
	store.sum = summaryWith(1, 2, 3)

	s2, err := q.Summary(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if s2.TotalFlights != 1 || store.reads != 1 {
		t.Fatalf("expected cached summary, got %+v (reads=%d)", s2, store.reads)
	}
}

func TestSummary_NoCache(t *testing.T) {
	store := &memSummaries{sum: summaryWith(300)}
	q := app.NewQueryService(app.QueryDeps{Summaries: store})

	for i := 0; i < 2; i++ {
		if _, err := q.Summary(context.Background()); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	if store.reads != 2 {
		t.Fatalf("reads: %d", store.reads)
	}
}

func TestSummary_Missing(t *testing.T) {
	q := app.NewQueryService(app.QueryDeps{Summaries: &memSummaries{}, Cache: &fakeCache{}})
	if _, err := q.Summary(context.Background()); !errors.Is(err, domain.ErrSummaryMissing) {
		t.Fatalf("expected ErrSummaryMissing, got %v", err)
	}
}

func TestSummary_ConcurrentCallersAllSucceed(t *testing.T) {
	store := &memSummaries{sum: summaryWith(300)}
	q := app.NewQueryService(app.QueryDeps{Summaries: store, Cache: &fakeCache{}, CacheTTL: time.Minute})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Summary(context.Background()); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("err: %v", err)
	}
	if store.reads > 20 || store.reads < 1 {
		t.Fatalf("reads: %d", store.reads)
	}
}

func TestOffers(t *testing.T) {
	q := app.NewQueryService(app.QueryDeps{Summaries: &memSummaries{sum: summaryWith(100, 200)}})
	ctx := context.Background()

	top, err := q.Offers(ctx, "")
	if err != nil || len(top) != 2 {
		t.Fatalf("top: %v %v", top, err)
	}
	one, err := q.Offers(ctx, domain.StopOne)
	if err != nil || one == nil || len(one) != 0 {
		t.Fatalf("1stop: %v %v", one, err)
	}
	if _, err := q.Offers(ctx, domain.StopType("2stop")); err == nil {
		t.Fatalf("expected error for unknown stop type")
	}
}

func TestHistory_Limits(t *testing.T) {
	h := &memHistory{}
	for i := 0; i < 150; i++ {
		h.recs = append(h.recs, domain.HistoryRecord{Timestamp: fmt.Sprint(i), MinPrice: float64(i)})
	}
	q := app.NewQueryService(app.QueryDeps{History: h})
	ctx := context.Background()

	cases := []struct {
		limit     int
		wantLen   int
		wantFirst string
	}{
		{0, 100, "50"},
		{5, 5, "145"},
		{5000, 150, "0"},
	}
	for _, tc := range cases {
		got, err := q.History(ctx, tc.limit)
		if err != nil {
			t.Fatalf("limit %d: %v", tc.limit, err)
		}
		if len(got) != tc.wantLen || got[0].Timestamp != tc.wantFirst || got[len(got)-1].Timestamp != "149" {
			t.Fatalf("limit %d: len=%d first=%s", tc.limit, len(got), got[0].Timestamp)
		}
	}
}

func TestRuns_ArchiveDisabled(t *testing.T) {
	q := app.NewQueryService(app.QueryDeps{})
	if _, err := q.Runs(context.Background(), 10); !errors.Is(err, domain.ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}

	arch := &memArchive{runs: []domain.Run{{ID: "a"}, {ID: "b"}}}
	q = app.NewQueryService(app.QueryDeps{Archive: arch})
	runs, err := q.Runs(context.Background(), 1)
	if err != nil || len(runs) != 1 || runs[0].ID != "a" {
		t.Fatalf("runs: %v %v", runs, err)
	}
}

func TestDashboardHTML_CachedUntilInvalidated(t *testing.T) {
	store := &memSummaries{sum: summaryWith(100, 200)}
	cache := &fakeCache{}
	rend := &fakeRenderer{}
	q := app.NewQueryService(app.QueryDeps{
		Query:     &fakeQuery{err: domain.ErrQueryMissing},
		Summaries: store,
		History:   &memHistory{},
		Renderer:  rend,
		Cache:     cache,
		CacheTTL:  time.Minute,
	})
	ctx := context.Background()

	first, err := q.DashboardHTML(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	second, _ := q.DashboardHTML(ctx)
	if string(first) != string(second) || rend.calls != 1 {
		t.Fatalf("expected cached page, renders=%d", rend.calls)
	}

	_ = cache.Del(ctx, app.KeyDashboard)
	third, _ := q.DashboardHTML(ctx)
	if rend.calls != 2 || !strings.Contains(string(third), "render 2") {
		t.Fatalf("expected re-render after invalidation: %s", third)
	}
}

func TestDashboardHTML_BeforeFirstRun(t *testing.T) {
	rend := &fakeRenderer{}
	q := app.NewQueryService(app.QueryDeps{
		Query:     &fakeQuery{err: domain.ErrQueryMissing},
		Summaries: &memSummaries{},
		History:   &memHistory{},
		Renderer:  rend,
	})
	html, err := q.DashboardHTML(context.Background())
	if err != nil || !strings.Contains(string(html), "0 offers") {
		t.Fatalf("html=%s err=%v", html, err)
	}
}
