package simulation

import (
	"context"

	"arena/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when the simulation loop exceeds the allotted tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventQueueActionFault is emitted when a queued action panics or fails.
	EventQueueActionFault logging.EventType = "simulation.queue_action_fault"
	// EventUnitUpdateFault is emitted when a unit's per-tick update panics.
	EventUnitUpdateFault logging.EventType = "simulation.unit_update_fault"
	// EventTimeSync is emitted when the authoritative game time is broadcast.
	EventTimeSync logging.EventType = "simulation.time_sync"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TickBudgetOverrun publishes a warning when the simulation exceeds the configured tick budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// FaultPayload describes a recovered failure inside one step.
type FaultPayload struct {
	Error string `json:"error"`
	Index int    `json:"index,omitempty"`
}

// QueueActionFault publishes an error event for a failed queued action. The
// remaining actions of the batch still run.
func QueueActionFault(ctx context.Context, pub logging.Publisher, tick uint64, payload FaultPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventQueueActionFault,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityError,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// UnitUpdateFault publishes an error event for a unit whose update failed.
func UnitUpdateFault(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FaultPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventUnitUpdateFault,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// TimeSyncPayload carries the broadcast game time.
type TimeSyncPayload struct {
	GameSeconds float64 `json:"gameSeconds"`
}

// TimeSync publishes a debug event when the game timer is broadcast.
func TimeSync(ctx context.Context, pub logging.Publisher, tick uint64, payload TimeSyncPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventTimeSync,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityDebug,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
