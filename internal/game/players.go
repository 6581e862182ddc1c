package game

import (
	"context"
	"errors"
	"fmt"

	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/internal/world"
	"arena/server/logging/lifecycle"
)

var (
	// ErrUnknownPlayer indicates a join token that matches no rostered hero.
	ErrUnknownPlayer = errors.New("unknown player token")
	// ErrNotRunning rejects gameplay orders outside the running phase.
	ErrNotRunning = errors.New("match is not running")
)

type closer interface {
	Close() error
}

// Join binds client to the hero rostered under token. A hero that already
// has a client is taken over and the previous client is closed. Players
// joining a match past the waiting phase receive the spawn sequence again.
func (g *Game) Join(token string, client world.Client) (*world.Unit, error) {
	var hero *world.Unit
	for _, u := range g.Players() {
		if u.Hero.Token == token {
			hero = u
			break
		}
	}
	if hero == nil || token == "" {
		return nil, ErrUnknownPlayer
	}

	previous := hero.Hero.Client
	reconnect := previous != nil || hero.Hero.Disconnected
	if previous != nil && previous != client {
		if c, ok := previous.(closer); ok {
			_ = c.Close()
		}
	}
	hero.Hero.Client = client
	hero.Hero.Disconnected = false

	lifecycle.PlayerJoined(context.Background(), g.publisher, g.Tick(), hero.Ref(), lifecycle.PlayerJoinedPayload{
		PlayerName: hero.Hero.PlayerName,
		Champion:   hero.Name,
		Team:       hero.Side().String(),
		Reconnect:  reconnect,
	}, nil)

	if reconnect {
		g.Send(&proto.UnitAnnounce{
			GameHeader:  proto.GameHeaderFor(uint32(hero.ID), int32(g.Tick())),
			Event:       proto.AnnounceSummonerReconnected,
			SourceNetID: uint32(hero.ID),
		}, proto.ChannelS2C, proto.FlagReliable)
	}
	g.catchUp(hero)
	return hero, nil
}

// catchUp replays what a late client missed.
func (g *Game) catchUp(hero *world.Unit) {
	if g.phase == PhaseWaiting {
		return
	}
	send := hero.SendToClient
	g.sendSpawnSequence(send)
	if g.phase == PhaseSpawned {
		return
	}
	for _, ally := range g.Players() {
		if ally.Side() == hero.Side() {
			send(g.visionOf(ally), proto.ChannelS2C, proto.FlagReliable)
		}
	}
	g.sendTimers(send)
	send(&proto.StartGame{}, proto.ChannelS2C, proto.FlagReliable)
}

// Disconnect detaches the hero's client. The hero stays on the map.
func (g *Game) Disconnect(hero *world.Unit, client world.Client, reason string) {
	if hero == nil || hero.Hero == nil {
		return
	}
	if client != nil && hero.Hero.Client != client {
		return
	}
	hero.Hero.Client = nil
	hero.Hero.Disconnected = true
	g.Send(&proto.UnitAnnounce{
		GameHeader:  proto.GameHeaderFor(uint32(hero.ID), int32(g.Tick())),
		Event:       proto.AnnounceSummonerLeft,
		SourceNetID: uint32(hero.ID),
	}, proto.ChannelS2C, proto.FlagReliable)
	lifecycle.PlayerDisconnected(context.Background(), g.publisher, g.Tick(), hero.Ref(), lifecycle.PlayerDisconnectedPayload{Reason: reason}, nil)
}

// ClientReady marks the hero ready to spawn and spawns the match once every
// player is.
func (g *Game) ClientReady(hero *world.Unit) error {
	hero.Hero.ReadyToSpawn = true
	if g.phase != PhaseWaiting || !world.CanSpawn(g.Players()) {
		return nil
	}
	return g.Spawn()
}

// CharLoaded marks the hero done loading and starts the match once every
// player is.
func (g *Game) CharLoaded(hero *world.Unit) {
	hero.Hero.ReadyToStart = true
	if g.phase == PhaseSpawned && world.CanStart(g.Players()) {
		g.StartMatch()
	}
}

// Move applies a movement order.
func (g *Game) Move(hero *world.Unit, moveType proto.MoveType, position world.Vec2, targetID netid.ID) {
	switch moveType {
	case proto.MoveTo:
		hero.MoveTo(position)
	case proto.MoveAttack:
		if target, ok := g.arena.Unit(targetID); ok && target.Side() != hero.Side() {
			hero.SetAttackTarget(target)
			return
		}
		hero.MoveTo(position)
	case proto.MoveAttackMove:
		hero.MoveTo(position)
		if hero.Hero != nil {
			hero.Hero.AutoAttack = true
		}
	case proto.MoveStop:
		hero.Stop()
	}
}

// CastSpell casts the spell in slot for hero.
func (g *Game) CastSpell(hero *world.Unit, slot int, position, end world.Vec2, targetID netid.ID) error {
	if g.phase != PhaseRunning {
		return fmt.Errorf("game: cast during %s phase: %w", g.phase, ErrNotRunning)
	}
	return g.engine.Cast(hero, slot, position, end, targetID)
}

// Ping relays an attention ping to the hero's team.
func (g *Game) Ping(hero *world.Unit, position world.Vec2, targetID netid.ID, kind proto.PingType) {
	g.SendTeam(hero.Side(), &proto.AttentionPingAnswer{
		Header:      proto.HeaderFor(uint32(hero.ID)),
		Position:    position.Wire(),
		TargetNetID: uint32(targetID),
		PingType:    kind,
	}, proto.ChannelS2C, proto.FlagReliable)
}

// SetAutoAttack toggles automatic attacks for hero.
func (g *Game) SetAutoAttack(hero *world.Unit, enabled bool) {
	hero.Hero.AutoAttack = enabled
	if !enabled {
		hero.ClearAttackTarget(true)
	}
}
