package game

import (
	"context"

	"arena/server/internal/net/proto"
	"arena/server/internal/world"
	"arena/server/logging/lifecycle"
	"arena/server/stats"
)

// Phase is the match lifecycle stage.
type Phase uint8

const (
	// PhaseWaiting accepts connections until every player is ready to spawn.
	PhaseWaiting Phase = iota
	// PhaseSpawned has sent the spawn sequence and waits for every client to
	// finish loading.
	PhaseSpawned
	// PhaseRunning advances game time and units. StartMatch enters it in the
	// same action that sends the start sequence, so a started match is
	// always running.
	PhaseRunning
	// PhaseEnded keeps the loop alive but freezes the world.
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseSpawned:
		return "spawned"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase reports the current stage. Call from the simulation goroutine.
func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) setPhase(next Phase) {
	if g.phase == next {
		return
	}
	prev := g.phase
	g.phase = next
	g.logger.Printf("match %s: %s -> %s", g.cfg.Name, prev, next)
	lifecycle.PhaseChanged(context.Background(), g.publisher, g.Tick(), lifecycle.PhaseChangedPayload{
		From: prev.String(),
		To:   next.String(),
	}, nil)
}

// Spawn places the map's turrets and camps and introduces every hero and
// turret to the clients.
func (g *Game) Spawn() error {
	if g.phase != PhaseWaiting {
		return nil
	}
	if err := g.arena.OnSpawn(); err != nil {
		return err
	}
	for _, turret := range g.arena.Turrets() {
		g.turrets[turret.Side()]++
	}
	g.setPhase(PhaseSpawned)
	g.sendSpawnSequence(g.Send)
	return nil
}

type sendFunc func(msg proto.Message, ch proto.Channel, flags proto.Flags)

func (g *Game) sendSpawnSequence(send sendFunc) {
	send(&proto.StartSpawn{}, proto.ChannelS2C, proto.FlagReliable)
	for _, hero := range g.Players() {
		id := uint32(hero.ID)
		send(&proto.HeroSpawn{
			Header:   proto.HeaderFor(id),
			PlayerNo: hero.Hero.PlayerNo,
			TeamID:   uint16(hero.Side()),
			SkinID:   hero.Hero.SkinID,
			Name:     hero.Hero.PlayerName,
			Model:    hero.Model,
		}, proto.ChannelS2C, proto.FlagReliable)
		send(&proto.PlayerInfo{
			Header:    proto.HeaderFor(id),
			Summoner1: hero.Hero.Summoner1,
			Summoner2: hero.Hero.Summoner2,
		}, proto.ChannelS2C, proto.FlagReliable)
		send(g.healthOf(hero), proto.ChannelS2C, proto.FlagReliable)
	}
	for _, turret := range g.arena.Turrets() {
		send(&proto.TurretSpawn{
			Header:      proto.HeaderFor(0),
			TurretNetID: uint32(turret.ID),
			Name:        turret.Name,
		}, proto.ChannelS2C, proto.FlagReliable)
		send(g.healthOf(turret), proto.ChannelS2C, proto.FlagReliable)
	}
	send(&proto.EndSpawn{}, proto.ChannelS2C, proto.FlagReliable)
}

func (g *Game) healthOf(u *world.Unit) *proto.SetHealth {
	return &proto.SetHealth{
		GameHeader: proto.GameHeaderFor(uint32(u.ID), int32(g.Tick())),
		Current:    float32(u.Stats.Current(stats.PoolHealth)),
		Max:        float32(u.Stats.Max(stats.PoolHealth)),
	}
}

// StartMatch reveals every hero to its team, syncs the timer and releases
// the clients from the loading screen.
func (g *Game) StartMatch() {
	if g.phase != PhaseSpawned {
		return
	}
	for _, hero := range g.Players() {
		g.SendTeam(hero.Side(), g.visionOf(hero), proto.ChannelS2C, proto.FlagReliable)
	}
	g.sendTimers(g.Send)
	g.setPhase(PhaseRunning)
	g.sinceSync = 0
	g.arena.OnStart()
	g.Send(&proto.StartGame{}, proto.ChannelS2C, proto.FlagReliable)
}

func (g *Game) visionOf(hero *world.Unit) *proto.EnterVision {
	dest := hero.Position
	if hero.Path != nil {
		if d, ok := hero.Path.Destination(); ok {
			dest = d
		}
	}
	return &proto.EnterVision{
		GameHeader:  proto.GameHeaderFor(uint32(hero.ID), int32(g.Tick())),
		Position:    hero.Position.Wire(),
		Destination: dest.Wire(),
	}
}

func (g *Game) sendTimers(send sendFunc) {
	seconds := float32(g.gameTime.Seconds())
	send(&proto.GameTimer{Time: seconds}, proto.ChannelS2C, proto.FlagReliable)
	send(&proto.GameTimerUpdate{Time: seconds}, proto.ChannelS2C, proto.FlagReliable)
}

// checkVictory ends the match once a team that started with turrets has
// lost all of them.
func (g *Game) checkVictory() {
	for _, team := range g.teams {
		if g.turrets[team.ID] == 0 {
			continue
		}
		standing := 0
		for _, u := range team.Units() {
			if u.Kind == world.KindTurret && u.Alive() {
				standing++
			}
		}
		if standing == 0 {
			g.endMatch(team.ID.Opponent())
			return
		}
	}
}

func (g *Game) endMatch(winner world.TeamID) {
	mapID := g.arena.Record.ID
	g.SendTeam(winner, &proto.Announce{MapID: mapID, Event: proto.AnnounceVictory}, proto.ChannelS2C, proto.FlagReliable)
	g.SendTeam(winner.Opponent(), &proto.Announce{MapID: mapID, Event: proto.AnnounceDefeat}, proto.ChannelS2C, proto.FlagReliable)
	g.setPhase(PhaseEnded)
}
