package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/rs/cors"

	"arena/server/internal/game"
	"arena/server/internal/observability"
	"arena/server/internal/telemetry"
	"arena/server/logging"
)

// Diagnostics is the read-only view of a match served over HTTP.
type Diagnostics interface {
	Diagnostics() game.Snapshot
}

type HTTPHandlerConfig struct {
	Logger         telemetry.Logger
	AllowedOrigins []string
	TickInterval   time.Duration
	// Sessions reports the number of open websocket sessions.
	Sessions func() int
	// Metrics returns the current counter values.
	Metrics func() map[string]uint64
	// RouterStats returns the logging router's throughput counters.
	RouterStats func() logging.RouterStats
	// WebSocket serves /ws. Nil leaves the route unregistered.
	WebSocket     nethttp.HandlerFunc
	Observability observability.Config
}

func NewHTTPHandler(match Diagnostics, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		payload := struct {
			Status     string               `json:"status"`
			ServerTime int64                `json:"serverTime"`
			TickMillis int64                `json:"tickMillis"`
			Match      game.Snapshot        `json:"match"`
			Sessions   int                  `json:"sessions"`
			Metrics    map[string]uint64    `json:"metrics,omitempty"`
			Logging    *logging.RouterStats `json:"logging,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickMillis: cfg.TickInterval.Milliseconds(),
			Match:      match.Diagnostics(),
		}
		if cfg.Sessions != nil {
			payload.Sessions = cfg.Sessions()
		}
		if cfg.Metrics != nil {
			payload.Metrics = cfg.Metrics()
		}
		if cfg.RouterStats != nil {
			stats := cfg.RouterStats()
			payload.Logging = &stats
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Printf("failed to encode diagnostics: %v", err)
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	if cfg.WebSocket != nil {
		mux.HandleFunc("/ws", cfg.WebSocket)
	}
	cfg.Observability.Register(mux)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
