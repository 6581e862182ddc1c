package combat

import (
	"context"
	"testing"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/internal/world"
	"arena/server/logging"
)

type testHost struct {
	ids      *netid.Provider
	tick     uint64
	now      time.Duration
	registry *content.Registry
	arena    *world.Arena
	teams    map[world.TeamID]*world.Team
	sent     []proto.Message
	faults   []error
	events   []logging.Event
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	registry, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	record, err := registry.Map(1)
	if err != nil {
		t.Fatalf("load map: %v", err)
	}
	h := &testHost{ids: netid.NewProvider(), registry: registry}
	h.arena = world.NewArena(record, h)
	h.teams = map[world.TeamID]*world.Team{
		world.TeamBlue:   world.NewTeam(world.TeamBlue, h),
		world.TeamPurple: world.NewTeam(world.TeamPurple, h),
	}
	return h
}

func (h *testHost) NextNetID() netid.ID        { return h.ids.Next() }
func (h *testHost) Tick() uint64               { return h.tick }
func (h *testHost) GameTime() time.Duration    { return h.now }
func (h *testHost) Content() *content.Registry { return h.registry }
func (h *testHost) Arena() *world.Arena        { return h.arena }
func (h *testHost) ReportFault(err error)      { h.faults = append(h.faults, err) }

func (h *testHost) Send(msg proto.Message, _ proto.Channel, _ proto.Flags) {
	h.sent = append(h.sent, msg)
}

func (h *testHost) SendTeam(_ world.TeamID, msg proto.Message, _ proto.Channel, _ proto.Flags) {
	h.sent = append(h.sent, msg)
}

func (h *testHost) AddUnit(u *world.Unit, id world.TeamID) error {
	if team, ok := h.teams[id]; ok {
		team.Attach(u)
	}
	h.arena.Add(u)
	u.Initialize()
	return nil
}

func (h *testHost) DestroyUnit(u *world.Unit, notify bool) {
	if u.Team() != nil {
		_ = u.Team().Detach(u)
	}
	h.arena.Remove(u.ID)
	u.Kill()
	if notify {
		h.sent = append(h.sent, &proto.DestroyClientMissile{GameHeader: proto.GameHeaderFor(uint32(u.ID), 0)})
	}
}

func (h *testHost) Publisher() logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		h.events = append(h.events, event)
	})
}

func (h *testHost) addHero(t *testing.T, champion string, team world.TeamID, at world.Vec2) *world.Unit {
	t.Helper()
	record, err := h.registry.Unit(champion)
	if err != nil {
		t.Fatalf("unit %s: %v", champion, err)
	}
	hero := world.NewHero(h, record, content.RosterEntry{Name: champion + "Player", Champion: champion}, int32(h.teams[team].Len()+1))
	if err := h.AddUnit(hero, team); err != nil {
		t.Fatalf("add hero: %v", err)
	}
	hero.Position = at
	return hero
}

func (h *testHost) addUnit(t *testing.T, kind world.Kind, team world.TeamID, at world.Vec2) *world.Unit {
	t.Helper()
	var name string
	switch kind {
	case world.KindTurret:
		name = "OuterTurret"
	case world.KindAIUnit:
		name = "Wolf"
	default:
		name = "MeleeMinion"
	}
	record, err := h.registry.Unit(name)
	if err != nil {
		t.Fatalf("unit %s: %v", name, err)
	}
	var u *world.Unit
	switch kind {
	case world.KindTurret:
		u = world.NewTurret(h, "Turret_Test", record, at)
	case world.KindAIUnit:
		u = world.NewNeutral(h, record, at)
	default:
		u = world.NewMinion(h, record, []world.Vec2{at})
	}
	if err := h.AddUnit(u, team); err != nil {
		t.Fatalf("add unit: %v", err)
	}
	return u
}

func (h *testHost) count(match func(proto.Message) bool) int {
	n := 0
	for _, msg := range h.sent {
		if match(msg) {
			n++
		}
	}
	return n
}

func isDestroy(msg proto.Message) bool {
	_, ok := msg.(*proto.DestroyClientMissile)
	return ok
}

func isSpawn(msg proto.Message) bool {
	_, ok := msg.(*proto.SpawnProjectile)
	return ok
}

func (h *testHost) eventsOfType(eventType logging.EventType) []logging.Event {
	var out []logging.Event
	for _, event := range h.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// stubScript records every effect it applies and deals the record's damage.
type stubScript struct {
	flags        AffectFlags
	destroyOnHit bool
	finish       func(c *Cast)
	applied      []netid.ID
}

func (s *stubScript) Flags() AffectFlags           { return s.flags }
func (s *stubScript) DestroyProjectileOnHit() bool { return s.destroyOnHit }
func (s *stubScript) OnStartCasting(*Cast)         {}

func (s *stubScript) OnFinishCasting(c *Cast) {
	if s.finish != nil {
		s.finish(c)
	}
}

func (s *stubScript) ApplyEffects(c *Cast, target, projectile *world.Unit) {
	s.applied = append(s.applied, target.ID)
	c.Damage(target, projectile)
}

type rangeScript struct {
	*stubScript
	reached int
}

func (s *rangeScript) OnRangeReached(c *Cast, projectile *world.Unit) {
	s.reached++
	c.DestroyProjectile(projectile, false)
}

func scriptsOf(byName map[string]Script) ScriptRegistry {
	return ScriptRegistryFunc(func(name string) (Script, bool) {
		script, ok := byName[name]
		return script, ok
	})
}
