package world

import (
	"context"
	"errors"
	"testing"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/logging"
)

type recordingClient struct {
	msgs []proto.Message
}

func (c *recordingClient) Send(msg proto.Message, _ proto.Channel, _ proto.Flags) {
	c.msgs = append(c.msgs, msg)
}

type testHost struct {
	ids       *netid.Provider
	tick      uint64
	now       time.Duration
	registry  *content.Registry
	arena     *Arena
	teams     map[TeamID]*Team
	sent      []proto.Message
	destroyed []*Unit
	faults    []error
	events    []logging.Event

	// refuseAfter fails every AddUnit once that many units were added.
	refuseAfter int
	added       int
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
	h.arena = NewArena(record, h)
	h.teams = map[TeamID]*Team{
		TeamBlue:   NewTeam(TeamBlue, h),
		TeamPurple: NewTeam(TeamPurple, h),
	}
	return h
}

func (h *testHost) NextNetID() netid.ID        { return h.ids.Next() }
func (h *testHost) Tick() uint64               { return h.tick }
func (h *testHost) GameTime() time.Duration    { return h.now }
func (h *testHost) Content() *content.Registry { return h.registry }
func (h *testHost) Arena() *Arena              { return h.arena }
func (h *testHost) ReportFault(err error)      { h.faults = append(h.faults, err) }

func (h *testHost) Send(msg proto.Message, ch proto.Channel, flags proto.Flags) {
	h.sent = append(h.sent, msg)
	for _, team := range h.teams {
		team.Send(msg, ch, flags)
	}
}

func (h *testHost) SendTeam(id TeamID, msg proto.Message, ch proto.Channel, flags proto.Flags) {
	if team, ok := h.teams[id]; ok {
		team.Send(msg, ch, flags)
	}
}

func (h *testHost) AddUnit(u *Unit, id TeamID) error {
	if h.refuseAfter > 0 && h.added >= h.refuseAfter {
		return errors.New("unit limit reached")
	}
	h.added++
	if team, ok := h.teams[id]; ok {
		team.Attach(u)
	}
	h.arena.Add(u)
	u.Initialize()
	return nil
}

func (h *testHost) DestroyUnit(u *Unit, notify bool) {
	if u.Team() != nil {
		_ = u.Team().Detach(u)
	}
	h.arena.Remove(u.ID)
	u.Kill()
	h.destroyed = append(h.destroyed, u)
	if notify {
		h.sent = append(h.sent, &proto.DestroyClientMissile{GameHeader: proto.GameHeaderFor(uint32(u.ID), 0)})
	}
}

func (h *testHost) Publisher() logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		h.events = append(h.events, event)
	})
}

func (h *testHost) unitRecord(t *testing.T, name string) content.UnitRecord {
	t.Helper()
	record, err := h.registry.Unit(name)
	if err != nil {
		t.Fatalf("unit %s: %v", name, err)
	}
	return record
}

func (h *testHost) spellRecord(t *testing.T, name string) content.SpellRecord {
	t.Helper()
	record, err := h.registry.Spell(name)
	if err != nil {
		t.Fatalf("spell %s: %v", name, err)
	}
	return record
}

func (h *testHost) addHero(t *testing.T, champion string, team TeamID) *Unit {
	t.Helper()
	hero := NewHero(h, h.unitRecord(t, champion), content.RosterEntry{Name: champion + "Player", Champion: champion}, int32(h.teams[team].Len()+1))
	if err := h.AddUnit(hero, team); err != nil {
		t.Fatalf("add hero: %v", err)
	}
	return hero
}

func (h *testHost) addMinion(t *testing.T, team TeamID, at Vec2) *Unit {
	t.Helper()
	minion := NewMinion(h, h.unitRecord(t, "MeleeMinion"), []Vec2{at})
	if err := h.AddUnit(minion, team); err != nil {
		t.Fatalf("add minion: %v", err)
	}
	return minion
}

func sentOfType[T proto.Message](msgs []proto.Message) []T {
	var out []T
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			out = append(out, typed)
		}
	}
	return out
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
