package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/jgoulah/roomwatt/internal/pipeline"
	"github.com/jgoulah/roomwatt/pkg/models"
)

type stubLoader struct {
	calls atomic.Int32
	err   error
}

func (s *stubLoader) Load(ctx context.Context) (*pipeline.Snapshot, error) {
	n := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &pipeline.Snapshot{
		LoadID:    "load-" + string(rune('0'+n)),
		TotalCost: 123.5,
		Summary:   models.StatusSummary{LatestLevel: models.LevelHigh},
	}, nil
}

func TestDashboardEndpoint(t *testing.T) {
	loader := &stubLoader{}
	srv := NewServer(loader, ":0")

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}

		var snap pipeline.Snapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if snap.TotalCost != 123.5 || snap.Summary.LatestLevel != models.LevelHigh {
			t.Errorf("Unexpected snapshot: %+v", snap)
		}
	}

	// Each request is its own load
	if got := loader.calls.Load(); got != 2 {
		t.Errorf("loader called %d times, want 2", got)
	}
}

func TestDashboardEndpointFailure(t *testing.T) {
	srv := NewServer(&stubLoader{err: errors.New("sheet unavailable")}, ":0")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sheet unavailable") {
		t.Error("Expected a generic failure message, not the internal error")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(&stubLoader{}, ":0")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := NewServer(&stubLoader{}, ":0")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
