// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"flight_dashboard/internal/app"
	"flight_dashboard/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.dashboard)
	s.mux.Get("/v1/summary", h.summary)
	s.mux.Get("/v1/offers", h.offers)
	s.mux.Get("/v1/history", h.history)
	s.mux.Get("/v1/runs", h.runs)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSummaryMissing):
		writeProblem(w, http.StatusNotFound, "Not Found", "no summary yet; run the pipeline first")
	case errors.Is(err, domain.ErrArchiveDisabled):
		writeProblem(w, http.StatusNotFound, "Not Found", "run archive is not configured")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return etagOf(body), body
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeTagged writes body with its ETag, or 304 when the client has it.
func writeTagged(w http.ResponseWriter, r *http.Request, contentType, etag string, body []byte) {
	if inm := r.Header.Get("If-None-Match"); inm != "" && etag != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode failed")
		return
	}
	writeTagged(w, r, "application/json", etag, body)
}

// parseLimit reads ?limit=; ok is false (and a 400 written) when it is not an
// integer in [1, hi].
func parseLimit(w http.ResponseWriter, r *http.Request, def, hi int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > hi {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and "+strconv.Itoa(hi))
		return 0, false
	}
	return l, true
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	html, err := h.Q.DashboardHTML(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeTagged(w, r, "text/html; charset=utf-8", etagOf(html), html)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Q.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, s)
}

func (h *Handlers) offers(w http.ResponseWriter, r *http.Request) {
	var st domain.StopType
	if raw := r.URL.Query().Get("stops"); raw != "" {
		parsed, ok := domain.ParseStopType(raw)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid stops", "stops must be one of nonstop, 1stop, multistop")
			return
		}
		st = parsed
	}
	offers, err := h.Q.Offers(r.Context(), st)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, struct {
		Stops  string         `json:"stops,omitempty"`
		Offers []domain.Offer `json:"offers"`
	}{string(st), offers})
}

func (h *Handlers) history(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, app.DefaultHistoryLimit, app.MaxHistoryLimit)
	if !ok {
		return
	}
	recs, err := h.Q.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, struct {
		Items []domain.HistoryRecord `json:"items"`
	}{recs})
}

func (h *Handlers) runs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, app.DefaultRunsLimit, app.MaxHistoryLimit)
	if !ok {
		return
	}
	runs, err := h.Q.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, r, struct {
		Items []domain.Run `json:"items"`
	}{runs})
}
