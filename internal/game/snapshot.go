package game

import (
	"arena/server/internal/world"
	"arena/server/stats"
)

// Snapshot is a read-only view of the match published after every step.
type Snapshot struct {
	MatchID     string           `json:"matchId"`
	Name        string           `json:"name"`
	Phase       string           `json:"phase"`
	Tick        uint64           `json:"tick"`
	GameSeconds float64          `json:"gameSeconds"`
	Units       int              `json:"units"`
	Players     []PlayerSnapshot `json:"players"`
}

// PlayerSnapshot summarises one hero.
type PlayerSnapshot struct {
	NetID     uint32  `json:"netId"`
	Name      string  `json:"name"`
	Champion  string  `json:"champion"`
	Team      string  `json:"team"`
	Connected bool    `json:"connected"`
	Alive     bool    `json:"alive"`
	Level     int     `json:"level"`
	Health    float64 `json:"health"`
	Kills     int     `json:"kills"`
	Deaths    int     `json:"deaths"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (g *Game) publishSnapshot() {
	players := g.Players()
	snap := &Snapshot{
		MatchID:     g.cfg.MatchID,
		Name:        g.cfg.Name,
		Phase:       g.phase.String(),
		Tick:        g.Tick(),
		GameSeconds: g.gameTime.Seconds(),
		Units:       g.arena.Len(),
		Players:     make([]PlayerSnapshot, 0, len(players)),
	}
	for _, hero := range players {
		snap.Players = append(snap.Players, playerSnapshot(hero))
	}
	g.snapshot.Store(snap)
}

func playerSnapshot(hero *world.Unit) PlayerSnapshot {
	return PlayerSnapshot{
		NetID:     uint32(hero.ID),
		Name:      hero.Hero.PlayerName,
		Champion:  hero.Name,
		Team:      hero.Side().String(),
		Connected: hero.Hero.Client != nil && !hero.Hero.Disconnected,
		Alive:     hero.Alive(),
		Level:     hero.Hero.Level,
		Health:    hero.Stats.Current(stats.PoolHealth),
		Kills:     hero.Hero.Kills,
		Deaths:    hero.Hero.Deaths,
		X:         hero.Position.X,
		Y:         hero.Position.Y,
	}
}

// Diagnostics returns the snapshot published by the latest step. It is safe
// from any goroutine.
func (g *Game) Diagnostics() Snapshot {
	snap := g.snapshot.Load()
	if snap == nil {
		return Snapshot{MatchID: g.cfg.MatchID, Name: g.cfg.Name}
	}
	return *snap
}
