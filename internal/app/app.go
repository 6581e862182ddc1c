package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"arena/server/internal/config"
	"arena/server/internal/content"
	"arena/server/internal/game"
	servernet "arena/server/internal/net"
	"arena/server/internal/net/ws"
	"arena/server/internal/scripts"
	"arena/server/internal/telemetry"
	"arena/server/logging"
	loggingSinks "arena/server/logging/sinks"
)

// ShutdownTimeout bounds the graceful HTTP shutdown.
const ShutdownTimeout = 10 * time.Second

// Module assembles a runnable server.
var Module = fx.Options(
	fx.Provide(NewLogger),
	config.Module,
	fx.Provide(
		NewMetrics,
		NewRouter,
		NewContent,
		NewRoster,
		NewScripts,
		NewGame,
		NewSocketHandler,
		NewHTTPServer,
	),
	fx.Invoke(Run),
)

// NewLogger builds the process logger. Its level is narrowed once the
// configuration is known.
func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.DebugLevel)
}

func NewMetrics() *logging.Metrics {
	return logging.NewMetrics()
}

// NewRouter builds the event router with the configured sinks and closes it
// on shutdown.
func NewRouter(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger, metrics *logging.Metrics) (*logging.Router, error) {
	logCfg := cfg.LoggingConfig()
	var sinks []logging.NamedSink
	var files []io.Closer
	if logCfg.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logCfg.Console)})
	}
	if logCfg.HasSink("zerolog") {
		sinks = append(sinks, logging.NamedSink{Name: "zerolog", Sink: loggingSinks.NewZerolog(logger.Level(cfg.LogLevel))})
	}
	if logCfg.HasSink("json") {
		file, err := os.OpenFile(logCfg.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open event log: %w", err)
		}
		files = append(files, file)
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(file, logCfg.JSON.FlushInterval)})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, sinks,
		logging.WithFallbackLogger(logger),
		logging.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := router.Close(ctx)
			for _, f := range files {
				err = errors.Join(err, f.Close())
			}
			return err
		},
	})
	return router, nil
}

func NewContent(cfg *config.Config) (*content.Registry, error) {
	return content.Load(cfg.ContentPaths...)
}

// NewRoster loads the roster. Connect tokens, which may have been generated,
// are only logged at debug level.
func NewRoster(cfg *config.Config, logger zerolog.Logger, records *content.Registry) ([]content.RosterEntry, error) {
	roster, err := content.LoadRoster(cfg.RosterPath, records)
	if err != nil {
		return nil, err
	}
	for _, entry := range roster {
		logger.Info().
			Str("player", entry.Name).
			Str("champion", entry.Champion).
			Str("team", entry.Team).
			Msg("rostered player")
		logger.Debug().
			Str("player", entry.Name).
			Str("token", entry.Token).
			Msg("connect token")
	}
	return roster, nil
}

// NewScripts returns the built-in scripts after checking every spell record
// has one.
func NewScripts(records *content.Registry) (*scripts.Registry, error) {
	registry := scripts.Default()
	if err := registry.Validate(records); err != nil {
		return nil, err
	}
	return registry, nil
}

type GameParams struct {
	fx.In

	Config  *config.Config
	Logger  zerolog.Logger
	Router  *logging.Router
	Metrics *logging.Metrics
	Content *content.Registry
	Roster  []content.RosterEntry
	Scripts *scripts.Registry
}

func NewGame(p GameParams) (*game.Game, error) {
	logger := p.Logger.Level(p.Config.LogLevel)
	matchID := uuid.NewString()
	logger.Info().Str("match_id", matchID).Int("players", len(p.Roster)).Msg("match created")

	return game.New(game.Config{
		MatchID:          matchID,
		Name:             p.Config.MatchName,
		MapID:            p.Config.MapID,
		TickInterval:     p.Config.TickInterval(),
		TimeSyncInterval: p.Config.TimeSyncInterval,
		Roster:           p.Roster,
	}, game.Deps{
		Content:   p.Content,
		Scripts:   p.Scripts,
		Publisher: p.Router,
		Metrics:   telemetry.WrapMetrics(p.Metrics),
		Logger:    telemetry.WrapLogger(&logger),
		Clock:     logging.SystemClock{},
	})
}

func NewSocketHandler(cfg *config.Config, logger zerolog.Logger, router *logging.Router, metrics *logging.Metrics, match *game.Game) *ws.Handler {
	logger = logger.Level(cfg.LogLevel).With().Str("component", "ws").Logger()
	return ws.NewHandler(match, ws.HandlerConfig{
		Logger:      telemetry.WrapLogger(&logger),
		Publisher:   router,
		Metrics:     telemetry.WrapMetrics(metrics),
		SendBuffer:  cfg.SendBuffer,
		CheckOrigin: originChecker(cfg.AllowedOrigins),
	})
}

func NewHTTPServer(cfg *config.Config, logger zerolog.Logger, router *logging.Router, metrics *logging.Metrics, match *game.Game, sockets *ws.Handler) *http.Server {
	logger = logger.Level(cfg.LogLevel).With().Str("component", "http").Logger()
	handler := servernet.NewHTTPHandler(match, servernet.HTTPHandlerConfig{
		Logger:         telemetry.WrapLogger(&logger),
		AllowedOrigins: cfg.AllowedOrigins,
		TickInterval:   cfg.TickInterval(),
		Sessions:       sockets.Active,
		Metrics:        metrics.Snapshot,
		RouterStats:    router.Stats,
		WebSocket:      sockets.Handle,
		Observability:  cfg.Observability,
	})
	return &http.Server{Addr: cfg.Addr, Handler: handler}
}

// Run starts the simulation and the HTTP server with the application and
// stops both on shutdown.
func Run(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *http.Server, match *game.Game, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := match.Start(); err != nil {
				return fmt.Errorf("start simulation: %w", err)
			}
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("server failed")
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()

			err := srv.Shutdown(shutdownCtx)
			match.Stop()
			if err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// originChecker admits websocket upgrades from the configured origins. A
// wildcard or an absent Origin header is always accepted.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return nil
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
