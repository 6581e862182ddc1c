package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"arena/server/internal/net/proto"
	"arena/server/internal/sim"
	"arena/server/internal/world"
	"arena/server/logging"
	loggingsimulation "arena/server/logging/simulation"
)

// ErrQueueActionFault marks a queued action that panicked.
var ErrQueueActionFault = errors.New("queued action fault")

// QueueFault carries the panic value of a failed queued action and its
// position in the drained batch.
type QueueFault struct {
	Index int
	Value any
}

func (f *QueueFault) Error() string {
	return fmt.Sprintf("queued action %d panicked: %v", f.Index, f.Value)
}

func (f *QueueFault) Unwrap() error {
	return ErrQueueActionFault
}

// runQueue executes every staged action in order. A panicking action is
// reported and the batch continues.
func (g *Game) runQueue() {
	actions := g.queue.DrainAndClear()
	if g.metrics != nil {
		g.metrics.Store(metricActionsPerRun, uint64(len(actions)))
	}
	for i, action := range actions {
		if err := runAction(i, action); err != nil {
			g.ReportFault(err)
		}
	}
}

func runAction(index int, action sim.Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &QueueFault{Index: index, Value: r}
		}
	}()
	action()
	return nil
}

// ReportFault records a recovered failure without stopping the match.
func (g *Game) ReportFault(err error) {
	if err == nil {
		return
	}
	ctx := context.Background()
	var queueFault *QueueFault
	var unitFault *world.UnitFault
	switch {
	case errors.As(err, &queueFault):
		loggingsimulation.QueueActionFault(ctx, g.publisher, g.Tick(), loggingsimulation.FaultPayload{
			Error: err.Error(),
			Index: queueFault.Index,
		}, nil)
		g.addMetric(metricQueueFaults)
	case errors.As(err, &unitFault):
		actor := logging.EntityRef{ID: strconv.FormatUint(uint64(unitFault.UnitID), 10), Kind: logging.EntityKindWorld}
		if u, ok := g.arena.Unit(unitFault.UnitID); ok {
			actor = u.Ref()
		}
		loggingsimulation.UnitUpdateFault(ctx, g.publisher, g.Tick(), actor, loggingsimulation.FaultPayload{Error: err.Error()}, nil)
		g.addMetric(metricUnitFaults)
	default:
		loggingsimulation.UnitUpdateFault(ctx, g.publisher, g.Tick(), logging.WorldRef(), loggingsimulation.FaultPayload{Error: err.Error()}, nil)
		g.addMetric(metricUnitFaults)
	}
}

func (g *Game) addMetric(key string) {
	if g.metrics != nil {
		g.metrics.Add(key, 1)
	}
}

func (g *Game) afterStep(result sim.LoopStepResult) {
	if g.metrics != nil {
		g.metrics.Store(metricTickDuration, uint64(result.Duration.Microseconds()))
	}
	if !result.OverBudget() {
		g.streak = 0
		return
	}
	g.streak++
	g.addMetric(metricTickOverruns)
	loggingsimulation.TickBudgetOverrun(context.Background(), g.publisher, result.Tick, loggingsimulation.TickBudgetOverrunPayload{
		DurationMillis: result.Duration.Milliseconds(),
		BudgetMillis:   result.Budget.Milliseconds(),
		Ratio:          float64(result.Duration) / float64(result.Budget),
		Streak:         g.streak,
	}, nil)
}

// syncTime pushes the authoritative game time to every client.
func (g *Game) syncTime() {
	seconds := g.gameTime.Seconds()
	g.Send(&proto.GameTimer{Time: float32(seconds)}, proto.ChannelS2C, proto.FlagReliable)
	loggingsimulation.TimeSync(context.Background(), g.publisher, g.Tick(), loggingsimulation.TimeSyncPayload{GameSeconds: seconds}, nil)
}
