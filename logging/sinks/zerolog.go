package sinks

import (
	"context"

	"github.com/rs/zerolog"

	"arena/server/logging"
)

// Zerolog forwards events into a structured process logger so simulation
// events share one stream with server diagnostics.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog wraps logger.
func NewZerolog(logger zerolog.Logger) *Zerolog {
	return &Zerolog{logger: logger.With().Str("component", "events").Logger()}
}

// Write satisfies logging.Sink.
func (s *Zerolog) Write(event logging.Event) error {
	entry := s.logger.WithLevel(zerologLevel(event.Severity)).
		Str("type", string(event.Type)).
		Uint64("tick", event.Tick).
		Str("category", event.Category).
		Str("actor", formatEntity(event.Actor))
	if !event.Time.IsZero() {
		entry = entry.Time("eventTime", event.Time)
	}
	if len(event.Targets) > 0 {
		entry = entry.Str("targets", formatTargets(event.Targets))
	}
	if event.Payload != nil {
		entry = entry.Interface("payload", event.Payload)
	}
	if len(event.Extra) > 0 {
		entry = entry.Fields(event.Extra)
	}
	entry.Send()
	return nil
}

// Close satisfies logging.Sink.
func (s *Zerolog) Close(context.Context) error {
	return nil
}
