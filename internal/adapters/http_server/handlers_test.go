package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flight_dashboard/internal/adapters/dashboard"
	"flight_dashboard/internal/adapters/filestore"
	httpserver "flight_dashboard/internal/adapters/http_server"
	"flight_dashboard/internal/app"
	"flight_dashboard/internal/domain"
)

func ptr[T any](v T) *T { return &v }

type env struct {
	srv       *httptest.Server
	summaries *filestore.Summaries
	history   *filestore.History
}

func newEnv(t *testing.T, withSummary bool) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		summaries: filestore.NewSummaries(filepath.Join(dir, "summary.json")),
		history:   filestore.NewHistory(filepath.Join(dir, "price_log.csv"), ""),
	}
	ctx := context.Background()
	if withSummary {
		s := domain.EmptySummary()
		s.MinPrice = ptr(300.0)
		s.TopOffers = []domain.Offer{{Price: ptr(300.0), Airline: ptr("IndiGo")}, {Price: ptr(900.0), Stops: 1}}
		s.OffersByStops.Nonstop = s.TopOffers[:1]
		s.OffersByStops.OneStop = s.TopOffers[1:]
		if err := e.summaries.WriteSummary(ctx, s); err != nil {
			t.Fatalf("seed summary: %v", err)
		}
	}
	for i, p := range []float64{500, 400, 300} {
		_ = e.history.Append(ctx, domain.HistoryRecord{Timestamp: time.Date(2025, 3, i+1, 9, 0, 0, 0, time.UTC).Format(domain.HistoryTimeLayout), MinPrice: p})
	}

	q := app.NewQueryService(app.QueryDeps{
		Query:     filestore.NewQueryFile(filepath.Join(dir, "query_params.json")),
		Summaries: e.summaries,
		History:   e.history,
		Renderer:  dashboard.New("₹", time.UTC),
	})
	s := httpserver.New(5 * time.Second)
	s.MountHandlers(&httpserver.Handlers{Q: q})
	e.srv = httptest.NewServer(s.Mux())
	t.Cleanup(e.srv.Close)
	return e
}

func get(t *testing.T, url string, hdr map[string]string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, false)
	if res := get(t, e.srv.URL+"/healthz", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
}

func TestSummary_ETag(t *testing.T) {
	e := newEnv(t, true)

	res := get(t, e.srv.URL+"/v1/summary", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	etag := res.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("etag: %q", etag)
	}
	var s domain.Summary
	if err := json.NewDecoder(res.Body).Decode(&s); err != nil || *s.MinPrice != 300 {
		t.Fatalf("decode: %v %+v", err, s)
	}

	res2 := get(t, e.srv.URL+"/v1/summary", map[string]string{"If-None-Match": etag})
	if res2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res2.StatusCode)
	}
}

func TestSummary_MissingIs404Problem(t *testing.T) {
	e := newEnv(t, false)
	res := get(t, e.srv.URL+"/v1/summary", nil)
	if res.StatusCode != http.StatusNotFound || res.Header.Get("Content-Type") != "application/problem+json" {
		t.Fatalf("status %d ct %s", res.StatusCode, res.Header.Get("Content-Type"))
	}
}

func TestOffers(t *testing.T) {
	e := newEnv(t, true)

	var body struct {
		Stops  string         `json:"stops"`
		Offers []domain.Offer `json:"offers"`
	}
	res := get(t, e.srv.URL+"/v1/offers?stops=1stop", nil)
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Stops != "1stop" || len(body.Offers) != 1 || *body.Offers[0].Price != 900 {
		t.Fatalf("body: %+v", body)
	}

	res = get(t, e.srv.URL+"/v1/offers", nil)
	body.Offers = nil
	_ = json.NewDecoder(res.Body).Decode(&body)
	if len(body.Offers) != 2 {
		t.Fatalf("top offers: %+v", body.Offers)
	}

	if res := get(t, e.srv.URL+"/v1/offers?stops=2stop", nil); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestHistory(t *testing.T) {
	e := newEnv(t, false)

	var body struct {
		Items []domain.HistoryRecord `json:"items"`
	}
	res := get(t, e.srv.URL+"/v1/history?limit=2", nil)
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 || body.Items[0].MinPrice != 400 || body.Items[1].MinPrice != 300 {
		t.Fatalf("items: %+v", body.Items)
	}

	for _, bad := range []string{"0", "-1", "abc", "1001"} {
		if res := get(t, e.srv.URL+"/v1/history?limit="+bad, nil); res.StatusCode != http.StatusBadRequest {
			t.Fatalf("limit=%s: expected 400, got %d", bad, res.StatusCode)
		}
	}
}

func TestRuns_NoArchive(t *testing.T) {
	e := newEnv(t, false)
	if res := get(t, e.srv.URL+"/v1/runs", nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestDashboard(t *testing.T) {
	e := newEnv(t, true)
	res := get(t, e.srv.URL+"/", nil)
	if res.StatusCode != http.StatusOK || !strings.HasPrefix(res.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("status %d ct %s", res.StatusCode, res.Header.Get("Content-Type"))
	}
	if res.Header.Get("ETag") == "" {
		t.Fatalf("missing etag")
	}
}
