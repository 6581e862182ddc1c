package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"arena/server/internal/game"
	"arena/server/internal/net/ws"
	"arena/server/internal/observability"
	"arena/server/logging"
)

// ErrInvalidValue marks an environment variable that could not be parsed.
var ErrInvalidValue = errors.New("config: invalid value")

type Config struct {
	Addr             string
	MatchName        string
	MapID            int32
	TickRate         int
	TimeSyncInterval time.Duration
	ContentPaths     []string
	RosterPath       string
	LogLevel         zerolog.Level
	LogSinks         []string
	LogJSONPath      string
	SendBuffer       int
	AllowedOrigins   []string
	Observability    observability.Config
}

// TickInterval is the simulation cadence implied by TickRate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Load reads an optional .env file and then the ARENA_* environment.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}
	return FromEnv(os.Getenv, logger)
}

// FromEnv builds a Config from lookup. Unset variables take their defaults.
func FromEnv(lookup func(string) string, logger zerolog.Logger) (*Config, error) {
	env := reader{lookup: lookup}

	cfg := &Config{
		Addr:             env.str("ARENA_ADDR", ":8080"),
		MatchName:        env.str("ARENA_MATCH_NAME", game.DefaultConfig().Name),
		MapID:            int32(env.integer("ARENA_MAP_ID", int(game.DefaultConfig().MapID), 1)),
		TickRate:         env.integer("ARENA_TICK_RATE", 30, 1),
		TimeSyncInterval: env.duration("ARENA_TIME_SYNC_INTERVAL", game.DefaultTimeSyncInterval),
		ContentPaths:     env.list("ARENA_CONTENT_PATHS", nil),
		RosterPath:       env.str("ARENA_ROSTER_PATH", "roster.yaml"),
		LogLevel:         env.level("ARENA_LOG_LEVEL", zerolog.InfoLevel),
		LogSinks:         env.list("ARENA_LOG_SINKS", []string{"console"}),
		LogJSONPath:      env.str("ARENA_LOG_JSON_PATH", "events.jsonl"),
		SendBuffer:       env.integer("ARENA_SEND_BUFFER", ws.DefaultSendBuffer, 1),
		AllowedOrigins:   env.list("ARENA_ALLOWED_ORIGINS", []string{"*"}),
		Observability: observability.Config{
			EnablePprofTrace: env.boolean("ARENA_ENABLE_PPROF_TRACE", false),
		},
	}
	for _, sink := range cfg.LogSinks {
		switch sink {
		case "console", "json", "zerolog":
		default:
			env.fail("ARENA_LOG_SINKS", sink)
		}
	}
	if env.err != nil {
		return nil, env.err
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("match", cfg.MatchName).
		Int32("map_id", cfg.MapID).
		Int("tick_rate", cfg.TickRate).
		Dur("time_sync_interval", cfg.TimeSyncInterval).
		Str("roster_path", cfg.RosterPath).
		Strs("log_sinks", cfg.LogSinks).
		Str("log_level", cfg.LogLevel.String()).
		Msg("configuration loaded")

	return cfg, nil
}

// LoggingConfig derives the event router settings.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = append([]string(nil), c.LogSinks...)
	cfg.JSON.FilePath = c.LogJSONPath
	switch {
	case c.LogLevel <= zerolog.DebugLevel:
		cfg.MinimumSeverity = logging.SeverityDebug
	case c.LogLevel == zerolog.WarnLevel:
		cfg.MinimumSeverity = logging.SeverityWarn
	case c.LogLevel >= zerolog.ErrorLevel:
		cfg.MinimumSeverity = logging.SeverityError
	}
	return cfg
}

// reader collects the first parse failure so every lookup stays a one-liner.
type reader struct {
	lookup func(string) string
	err    error
}

func (r *reader) raw(key string) (string, bool) {
	v := strings.TrimSpace(r.lookup(key))
	return v, v != ""
}

func (r *reader) fail(key, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
	}
}

func (r *reader) str(key, fallback string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return fallback
}

func (r *reader) integer(key string, fallback, floor int) int {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		r.fail(key, v)
		return fallback
	}
	return n
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.fail(key, v)
		return fallback
	}
	return d
}

func (r *reader) boolean(key string, fallback bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v)
		return fallback
	}
	return b
}

func (r *reader) level(key string, fallback zerolog.Level) zerolog.Level {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(v))
	if err != nil {
		r.fail(key, v)
		return fallback
	}
	return lvl
}

func (r *reader) list(key string, fallback []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var Module = fx.Provide(Load)
