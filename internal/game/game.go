package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"arena/server/internal/combat"
	"arena/server/internal/content"
	"arena/server/internal/netid"
	"arena/server/internal/sim"
	"arena/server/internal/telemetry"
	"arena/server/internal/world"
	"arena/server/logging"
)

const (
	// DefaultTimeSyncInterval is how often the authoritative game time is
	// pushed to clients.
	DefaultTimeSyncInterval = 10 * time.Second
	// DefaultQueueCapacity sizes each batch of the command queue.
	DefaultQueueCapacity = 256

	metricQueueFaults   = "game_queue_action_faults_total"
	metricUnitFaults    = "game_unit_update_faults_total"
	metricTickDuration  = "game_tick_duration_micros"
	metricTickOverruns  = "game_tick_budget_overruns_total"
	metricUnitsOnMap    = "game_units_on_map"
	metricActionsPerRun = "game_actions_last_tick"
)

var (
	// ErrMissingContent indicates New was invoked without a content registry.
	ErrMissingContent = errors.New("game: content registry is nil")
	// ErrMissingScripts indicates New was invoked without a script registry.
	ErrMissingScripts = errors.New("game: script registry is nil")
)

// Config tunes one match.
type Config struct {
	MatchID          string
	Name             string
	MapID            int32
	TickInterval     time.Duration
	TimeSyncInterval time.Duration
	QueueCapacity    int
	Roster           []content.RosterEntry
}

// DefaultConfig returns the settings of a standard match on map 1.
func DefaultConfig() Config {
	return Config{
		Name:             "arena",
		MapID:            1,
		TickInterval:     sim.DefaultTickInterval,
		TimeSyncInterval: DefaultTimeSyncInterval,
		QueueCapacity:    DefaultQueueCapacity,
	}
}

// Deps carries shared infrastructure required by a match.
type Deps struct {
	Content   *content.Registry
	Scripts   combat.ScriptRegistry
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Logger    telemetry.Logger
	Clock     logging.Clock
	// NewTicker overrides the loop's firing source.
	NewTicker func(time.Duration) sim.Ticker
}

// Game is one authoritative match. Every method that touches world state
// runs on the simulation goroutine; other goroutines go through Invoke or
// Call.
type Game struct {
	cfg       Config
	content   *content.Registry
	ids       *netid.Provider
	arena     *world.Arena
	teams     [2]*world.Team
	engine    *combat.Engine
	queue     *sim.CommandQueue
	loop      *sim.Loop
	publisher logging.Publisher
	metrics   telemetry.Metrics
	logger    telemetry.Logger

	tick      atomic.Uint64
	gameTime  time.Duration
	sinceSync time.Duration
	phase     Phase
	turrets   map[world.TeamID]int
	streak    uint64

	snapshot atomic.Pointer[Snapshot]
}

// New builds a match from cfg, placing every rostered hero on its team.
func New(cfg Config, deps Deps) (*Game, error) {
	if deps.Content == nil {
		return nil, ErrMissingContent
	}
	if deps.Scripts == nil {
		return nil, ErrMissingScripts
	}
	defaults := DefaultConfig()
	if cfg.MapID == 0 {
		cfg.MapID = defaults.MapID
	}
	if cfg.TimeSyncInterval <= 0 {
		cfg.TimeSyncInterval = defaults.TimeSyncInterval
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = defaults.QueueCapacity
	}
	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}

	record, err := deps.Content.Map(cfg.MapID)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g := &Game{
		cfg:       cfg,
		content:   deps.Content,
		ids:       netid.NewProvider(),
		publisher: withMatch(deps.Publisher, cfg.MatchID),
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		phase:     PhaseWaiting,
		turrets:   make(map[world.TeamID]int),
	}
	if g.logger == nil {
		g.logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	g.arena = world.NewArena(record, g)
	g.teams[0] = world.NewTeam(world.TeamBlue, g)
	g.teams[1] = world.NewTeam(world.TeamPurple, g)
	g.engine = combat.NewEngine(g, deps.Scripts)
	g.queue = sim.NewCommandQueue(cfg.QueueCapacity, deps.Metrics)
	g.loop = sim.NewLoop(g.Step, sim.LoopConfig{
		Interval:  cfg.TickInterval,
		Clock:     deps.Clock,
		NewTicker: deps.NewTicker,
	}, sim.LoopHooks{AfterStep: g.afterStep})

	for i, entry := range cfg.Roster {
		if err := g.addPlayer(entry, int32(i+1)); err != nil {
			return nil, err
		}
	}
	g.publishSnapshot()
	return g, nil
}

func (g *Game) addPlayer(entry content.RosterEntry, playerNo int32) error {
	team, err := world.ParseTeamID(entry.Team)
	if err != nil {
		return fmt.Errorf("game: player %q: %w", entry.Name, err)
	}
	record, err := g.content.Unit(entry.Champion)
	if err != nil {
		return fmt.Errorf("game: player %q: %w", entry.Name, err)
	}
	hero := world.NewHero(g, record, entry, playerNo)
	return g.AddUnit(hero, team)
}

// MatchID identifies the match in logs.
func (g *Game) MatchID() string {
	return g.cfg.MatchID
}

// Engine returns the match's spell engine.
func (g *Game) Engine() *combat.Engine {
	return g.engine
}

// Start launches the simulation loop.
func (g *Game) Start() error {
	return g.loop.Start()
}

// Stop halts the simulation loop after any in-flight step completes.
func (g *Game) Stop() {
	g.loop.Stop()
}

// Done is closed once the loop goroutine exits.
func (g *Game) Done() <-chan struct{} {
	return g.loop.Done()
}

// Invoke stages action for the next tick. It is safe from any goroutine.
func (g *Game) Invoke(action sim.Action) bool {
	return g.queue.Enqueue(action)
}

// Call runs fn on the simulation goroutine and waits for it to finish or
// for ctx to end.
func (g *Game) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !g.Invoke(func() {
		defer close(done)
		fn()
	}) {
		return errors.New("game: action rejected")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// world.Host

func (g *Game) NextNetID() netid.ID          { return g.ids.Next() }
func (g *Game) Tick() uint64                 { return g.tick.Load() }
func (g *Game) GameTime() time.Duration      { return g.gameTime }
func (g *Game) Content() *content.Registry   { return g.content }
func (g *Game) Arena() *world.Arena          { return g.arena }
func (g *Game) Publisher() logging.Publisher { return g.publisher }

// Team returns the blue or purple team, or nil for any other id.
func (g *Game) Team(id world.TeamID) *world.Team {
	return g.team(id)
}

func (g *Game) team(id world.TeamID) *world.Team {
	switch id {
	case world.TeamBlue:
		return g.teams[0]
	case world.TeamPurple:
		return g.teams[1]
	default:
		return nil
	}
}

// Step advances the match by delta: time sync first, then queued actions,
// then Blue, Purple and the map.
func (g *Game) Step(delta time.Duration) {
	g.tick.Add(1)
	if g.phase == PhaseRunning {
		g.gameTime += delta
		g.sinceSync += delta
		if g.sinceSync >= g.cfg.TimeSyncInterval {
			g.syncTime()
			g.sinceSync = 0
		}
	}

	g.runQueue()

	if g.phase == PhaseRunning {
		for _, team := range g.teams {
			team.Update(delta)
		}
		g.arena.Update(delta)
		g.checkVictory()
	}
	g.publishSnapshot()
}
