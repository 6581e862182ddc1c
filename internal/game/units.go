package game

import (
	"errors"
	"fmt"

	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/internal/world"
)

// ErrUnknownTeam indicates a team id other than blue, purple or neutral.
var ErrUnknownTeam = errors.New("unknown team")

// AddUnit attaches u to team, places it on the map and initializes it.
// TeamNeutral keeps the unit map-only. Initializing a unit twice panics.
func (g *Game) AddUnit(u *world.Unit, team world.TeamID) error {
	if u == nil {
		return errors.New("game: nil unit")
	}
	if team != world.TeamNeutral {
		t := g.team(team)
		if t == nil {
			return fmt.Errorf("game: add unit %d: %w %d", u.ID, ErrUnknownTeam, team)
		}
		t.Attach(u)
	}
	g.arena.Add(u)
	u.Initialize()
	if g.metrics != nil {
		g.metrics.Store(metricUnitsOnMap, uint64(g.arena.Len()))
	}
	return nil
}

// RemoveUnit takes u off its team and the map. Units without a team are
// rejected with world.ErrNoTeam.
func (g *Game) RemoveUnit(u *world.Unit) error {
	if u == nil || u.Team() == nil {
		id := netid.None
		if u != nil {
			id = u.ID
		}
		return fmt.Errorf("game: remove unit %d: %w", id, world.ErrNoTeam)
	}
	if err := u.Team().Detach(u); err != nil {
		return fmt.Errorf("game: remove unit %d: %w", u.ID, err)
	}
	g.arena.Remove(u.ID)
	return nil
}

// DestroyUnit removes u from its team and the map and marks it dead. Its id
// is never handed out again. Clients are told when notify is set.
func (g *Game) DestroyUnit(u *world.Unit, notify bool) {
	if u == nil {
		return
	}
	if team := u.Team(); team != nil {
		_ = team.Detach(u)
	}
	g.arena.Remove(u.ID)
	u.Kill()
	if notify {
		g.Send(&proto.DestroyClientMissile{GameHeader: proto.GameHeaderFor(uint32(u.ID), int32(g.Tick()))}, proto.ChannelS2C, proto.FlagReliable)
	}
	if g.metrics != nil {
		g.metrics.Store(metricUnitsOnMap, uint64(g.arena.Len()))
	}
}

// ChangeTeam moves a unit to another playable team without re-initializing
// it. Effects already in flight see the new side when they land.
func (g *Game) ChangeTeam(u *world.Unit, team world.TeamID) error {
	t := g.team(team)
	if t == nil {
		return fmt.Errorf("game: change team of %d: %w %d", u.ID, ErrUnknownTeam, team)
	}
	t.Attach(u)
	return nil
}

// FindUnit looks a unit up by network id.
func (g *Game) FindUnit(id netid.ID) (*world.Unit, bool) {
	return g.arena.Unit(id)
}

// Players returns every hero, blue team first, each team ordered by id.
func (g *Game) Players() []*world.Unit {
	var out []*world.Unit
	for _, team := range g.teams {
		out = append(out, team.Heroes()...)
	}
	return out
}

// Send delivers msg to every connected hero of both teams.
func (g *Game) Send(msg proto.Message, ch proto.Channel, flags proto.Flags) {
	for _, team := range g.teams {
		team.Send(msg, ch, flags)
	}
}

// SendTeam delivers msg to the connected heroes of one team.
func (g *Game) SendTeam(team world.TeamID, msg proto.Message, ch proto.Channel, flags proto.Flags) {
	if t := g.team(team); t != nil {
		t.Send(msg, ch, flags)
	}
}
