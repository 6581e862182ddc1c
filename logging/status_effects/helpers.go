package status_effects

import (
	"context"

	"arena/server/logging"
)

const (
	// EventApplied is emitted when a timed buff is applied to a unit.
	EventApplied logging.EventType = "status_effects.applied"
	// EventExpired is emitted when a timed buff runs out.
	EventExpired logging.EventType = "status_effects.expired"
)

// AppliedPayload captures details about a buff application.
type AppliedPayload struct {
	StatusEffect string `json:"statusEffect"`
	SourceID     string `json:"sourceId,omitempty"`
	DurationMs   int64  `json:"durationMs,omitempty"`
}

// ExpiredPayload names the buff that ran out.
type ExpiredPayload struct {
	StatusEffect string `json:"statusEffect"`
}

// Applied publishes a buff application event.
func Applied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: "status_effects",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Expired publishes a buff expiry event.
func Expired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExpiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventExpired,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "status_effects",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
