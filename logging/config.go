package logging

import (
	"maps"
	"slices"
	"time"
)

// Config controls which sinks receive match events and how the router
// buffers them.
type Config struct {
	// EnabledSinks names the sinks to build: "console", "zerolog" or "json".
	EnabledSinks []string
	// BufferSize is the capacity of the router queue. Events published while
	// it is full are dropped and counted.
	BufferSize int
	// MinimumSeverity filters out less severe events before they are queued.
	MinimumSeverity Severity
	// Fields are stamped on every event that does not already carry them.
	Fields map[string]any
	JSON   JSONConfig
	// Console configures the human readable sink.
	Console ConsoleConfig
	// DropWarnInterval rate limits the fallback warning about dropped events.
	DropWarnInterval time.Duration
}

// JSONConfig configures the newline delimited event log.
type JSONConfig struct {
	FilePath string
	// FlushInterval is how often buffered lines reach the file. Zero writes
	// every event through.
	FlushInterval time.Duration
}

type ConsoleConfig struct {
	UseColor bool
}

// DefaultConfig routes info and above to the console.
func DefaultConfig() Config {
	return Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       512,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: 5 * time.Second,
		JSON: JSONConfig{
			FilePath:      "events.jsonl",
			FlushInterval: 2 * time.Second,
		},
	}
}

// HasSink reports whether the named sink is enabled.
func (c Config) HasSink(name string) bool {
	return slices.Contains(c.EnabledSinks, name)
}

// CloneFields returns a copy of Fields the router can own, or nil when no
// fields are configured.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	return maps.Clone(c.Fields)
}
