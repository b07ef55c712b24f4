package booking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flight_dashboard/internal/adapters/booking"
	"flight_dashboard/internal/domain"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := booking.New(booking.Options{BaseURL: "http://x"})
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestClient_Search_SendsHeadersAndParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/flights/searchFlights" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if r.Header.Get("x-rapidapi-key") != "test-key" || r.Header.Get("x-rapidapi-host") != "flights.example" {
			t.Errorf("headers: %v", r.Header)
		}
		if r.URL.Query().Get("fromId") != "BOM.AIRPORT" || r.URL.Query().Get("adults") != "1" {
			t.Errorf("query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"flightOffers":[]}}`))
	}))
	defer ts.Close()

	cl, err := booking.New(booking.Options{BaseURL: ts.URL, Host: "flights.example", Key: "test-key", RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.Search(ctx, map[string]string{"fromId": "BOM.AIRPORT", "adults": "1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(got, &doc); err != nil || doc["status"] != true {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestClient_Search_NoRetryByDefault(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("try later"))
	}))
	defer ts.Close()

	cl, _ := booking.New(booking.Options{BaseURL: ts.URL, Key: "k", RPS: 100})
	_, err := cl.Search(context.Background(), nil)

	var perr *booking.ProviderError
	if !errors.As(err, &perr) || perr.Status != http.StatusServiceUnavailable || perr.Body != "try later" {
		t.Fatalf("expected ProviderError 503, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_Search_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{"data":{}}`))
		}
	}))
	defer ts.Close()

	cl, _ := booking.New(booking.Options{BaseURL: ts.URL, Key: "k", RPS: 100, Retries: 3})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cl.Search(ctx, nil); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
}

func TestClient_Search_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	cl, _ := booking.New(booking.Options{BaseURL: ts.URL, Key: "k", RPS: 100, Retries: 3})
	_, err := cl.Search(context.Background(), nil)
	var perr *booking.ProviderError
	if !errors.As(err, &perr) || perr.Status != http.StatusForbidden {
		t.Fatalf("expected 403 ProviderError, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("4xx must not be retried")
	}
}

func TestClient_Search_InvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer ts.Close()

	cl, _ := booking.New(booking.Options{BaseURL: ts.URL, Key: "k", RPS: 100})
	if _, err := cl.Search(context.Background(), nil); err == nil {
		t.Fatalf("expected error for non-JSON body")
	}
}
