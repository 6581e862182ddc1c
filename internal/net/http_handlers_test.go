package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arena/server/internal/game"
	"arena/server/logging"
)

type fakeDiagnostics struct {
	snapshot game.Snapshot
}

func (f fakeDiagnostics) Diagnostics() game.Snapshot { return f.snapshot }

func TestHealth(t *testing.T) {
	handler := NewHTTPHandler(fakeDiagnostics{}, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestDiagnosticsReportsMatchAndTelemetry(t *testing.T) {
	match := fakeDiagnostics{snapshot: game.Snapshot{
		MatchID: "match-1",
		Phase:   "running",
		Tick:    42,
		Players: []game.PlayerSnapshot{{NetID: 1, Name: "Alice", Team: "blue", Connected: true}},
	}}
	handler := NewHTTPHandler(match, HTTPHandlerConfig{
		TickInterval: 33 * time.Millisecond,
		Sessions:     func() int { return 3 },
		Metrics:      func() map[string]uint64 { return map[string]uint64{"game_units_on_map": 7} },
		RouterStats:  func() logging.RouterStats { return logging.RouterStats{EventsTotal: 9, DroppedTotal: 1} },
	})

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}

	var payload struct {
		Status     string            `json:"status"`
		TickMillis int64             `json:"tickMillis"`
		Match      game.Snapshot     `json:"match"`
		Sessions   int               `json:"sessions"`
		Metrics    map[string]uint64 `json:"metrics"`
		Logging    struct {
			EventsTotal  uint64
			DroppedTotal uint64
		} `json:"logging"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode diagnostics payload: %v", err)
	}
	if payload.Status != "ok" || payload.TickMillis != 33 {
		t.Fatalf("unexpected header fields %+v", payload)
	}
	if payload.Match.MatchID != "match-1" || payload.Match.Tick != 42 || len(payload.Match.Players) != 1 {
		t.Fatalf("unexpected match snapshot %+v", payload.Match)
	}
	if payload.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", payload.Sessions)
	}
	if payload.Metrics["game_units_on_map"] != 7 {
		t.Fatalf("expected metrics in payload, got %v", payload.Metrics)
	}
	if payload.Logging.EventsTotal != 9 || payload.Logging.DroppedTotal != 1 {
		t.Fatalf("expected router stats in payload, got %+v", payload.Logging)
	}
}

func TestDiagnosticsRejectsWrongMethod(t *testing.T) {
	handler := NewHTTPHandler(fakeDiagnostics{}, HTTPHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/diagnostics", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestCORSHonoursAllowedOrigins(t *testing.T) {
	handler := NewHTTPHandler(fakeDiagnostics{}, HTTPHandlerConfig{AllowedOrigins: []string{"https://arena.example"}})

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "https://arena.example", want: "https://arena.example"},
		{origin: "https://elsewhere.example", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tc.origin)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("expected allow origin %q, got %q", tc.want, got)
			}
		})
	}
}

func TestWebSocketRouteIsOptional(t *testing.T) {
	called := false
	withWS := NewHTTPHandler(fakeDiagnostics{}, HTTPHandlerConfig{
		WebSocket: func(w http.ResponseWriter, r *http.Request) { called = true },
	})
	withoutWS := NewHTTPHandler(fakeDiagnostics{}, HTTPHandlerConfig{})

	withWS.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))
	if !called {
		t.Fatalf("expected /ws routed to the websocket handler")
	}

	resp := httptest.NewRecorder()
	withoutWS.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a websocket handler, got %d", resp.Code)
	}
}
