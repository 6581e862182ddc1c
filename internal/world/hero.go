package world

import (
	"context"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/logging/lifecycle"
	"arena/server/stats"
)

// SpellSlot is the runtime state of one learned spell.
type SpellSlot struct {
	Name     string
	Level    int
	Cooldown time.Duration
}

// Ready reports whether the slot is off cooldown.
func (s SpellSlot) Ready() bool {
	return s.Cooldown <= 0
}

// HeroState holds the player-controlled part of a hero.
type HeroState struct {
	Client     Client
	PlayerNo   int32
	PlayerName string
	SkinID     int32
	Summoner1  uint32
	Summoner2  uint32
	Token      string

	ReadyToSpawn bool
	ReadyToStart bool
	Disconnected bool

	Level       int
	Experience  float64
	SkillPoints int
	Spells      []SpellSlot

	SpawnPosition  Vec2
	DeathRemaining time.Duration
	Kills          int
	Deaths         int

	// AutoAttack enables automatic target acquisition while idle.
	AutoAttack bool
}

// NewHero constructs a player hero from its champion record and roster entry.
func NewHero(host Host, record content.UnitRecord, player content.RosterEntry, playerNo int32) *Unit {
	u := newRecordUnit(host, KindHero, record)
	u.Hero = &HeroState{
		PlayerNo:   playerNo,
		PlayerName: player.Name,
		SkinID:     player.SkinID,
		Summoner1:  player.Summoner1,
		Summoner2:  player.Summoner2,
		Token:      player.Token,
		Level:      1,
	}
	for _, name := range record.Spells {
		u.Hero.Spells = append(u.Hero.Spells, SpellSlot{Name: name, Level: 1})
	}
	return u
}

func (u *Unit) initializeHero() {
	if arena := u.arena(); arena != nil {
		u.Hero.SpawnPosition = arena.SpawnFor(u.Side())
	}
	u.Position = u.Hero.SpawnPosition
	u.Home = u.Hero.SpawnPosition
	if u.Hero.Level < 1 {
		u.Hero.Level = 1
	}
}

func (u *Unit) updateHero(delta time.Duration) {
	h := u.Hero
	if !u.alive {
		// A zero death timer respawns on the tick after the death.
		h.DeathRemaining -= delta
		if h.DeathRemaining <= 0 {
			u.Revive()
		}
		return
	}
	u.refreshStats()
	for i := range h.Spells {
		if h.Spells[i].Cooldown > 0 {
			h.Spells[i].Cooldown = max(h.Spells[i].Cooldown-delta, 0)
		}
	}
	u.Stats.Regenerate(delta.Seconds())
	if h.AutoAttack && u.Attack.Target == nil && len(u.Path.Waypoints) == 0 {
		u.SetAttackTarget(u.acquireTarget(u.acquisitionRange()))
	}
	if !u.updateAttack(delta, true) {
		u.followPath(delta)
	}
}

// AddExperience credits a hero and applies every level gained.
func (u *Unit) AddExperience(amount float64) {
	if u.Hero == nil || amount <= 0 || u.host == nil {
		return
	}
	h := u.Hero
	h.Experience += amount
	registry := u.host.Content()
	target := min(registry.LevelFor(h.Experience), registry.MaxLevel())
	for h.Level < target {
		u.levelUp()
	}
}

func (u *Unit) levelUp() {
	h := u.Hero
	h.Level++
	h.SkillPoints++
	var growth stats.ValueSet
	if u.Record != nil {
		growth = u.Record.GrowthValues()
	}
	u.Stats.ApplyLevel(h.Level, growth)
	u.refreshStats()
	u.Stats.SetCurrent(stats.PoolHealth, u.Stats.Current(stats.PoolHealth)+growth[stats.StatHealth])
	u.Stats.SetCurrent(stats.PoolMana, u.Stats.Current(stats.PoolMana)+growth[stats.StatMana])
	u.broadcast(&proto.LevelUp{
		GameHeader:  u.gameHeader(),
		Level:       uint8(h.Level),
		SkillPoints: uint8(min(h.SkillPoints, 255)),
	}, proto.ChannelS2C)
	lifecycle.LevelUp(context.Background(), u.publisher(), u.tick(), u.Ref(), lifecycle.LevelUpPayload{
		Level:       h.Level,
		SkillPoints: h.SkillPoints,
	}, nil)
}

// Revive returns a dead hero to its spawn with full pools.
func (u *Unit) Revive() {
	if u.Hero == nil || u.alive {
		return
	}
	u.alive = true
	u.Hero.DeathRemaining = 0
	u.LastDamager = nil
	u.refreshStats()
	u.Stats.Fill(stats.PoolHealth)
	u.Stats.Fill(stats.PoolMana)
	u.Position = u.Hero.SpawnPosition
	u.Path.Clear()
	u.broadcast(&proto.ChampionRespawn{GameHeader: u.gameHeader(), Position: u.Position.Wire()}, proto.ChannelS2C)
	u.broadcastHealth()
	lifecycle.HeroRespawned(context.Background(), u.publisher(), u.tick(), u.Ref(), lifecycle.HeroRespawnedPayload{
		X: u.Position.X,
		Y: u.Position.Y,
	}, nil)
}

func (u *Unit) dieHero(killer *Unit) {
	h := u.Hero
	u.Stats.Drain(stats.PoolHealth)
	u.Stats.Drain(stats.PoolMana)
	u.Path.Clear()
	h.Deaths++
	var duration time.Duration
	if arena := u.arena(); arena != nil {
		duration = arena.DeathDuration(h.Level)
	}
	h.DeathRemaining = duration
	var killerID uint32
	if killer != nil {
		killerID = uint32(killer.ID)
	}
	u.broadcast(&proto.ChampionDie{
		GameHeader:    u.gameHeader(),
		KillerNetID:   killerID,
		DeathDuration: float32(duration.Seconds()),
	}, proto.ChannelS2C)
	u.broadcast(&proto.UnitAnnounce{
		GameHeader:  u.gameHeader(),
		Event:       proto.AnnounceChampionKill,
		SourceNetID: killerID,
	}, proto.ChannelS2C)
	u.SendToClient(&proto.ChampionDeathTimer{
		Header:    proto.HeaderFor(uint32(u.ID)),
		Remaining: float32(duration.Seconds()),
	}, proto.ChannelS2C, proto.FlagReliable)
	if killer != nil && killer.Hero != nil {
		killer.Hero.Kills++
	}
}

// CanStart reports whether every hero has signalled start readiness.
func CanStart(heroes []*Unit) bool {
	for _, u := range heroes {
		if u.Hero == nil || !u.Hero.ReadyToStart {
			return false
		}
	}
	return true
}

// CanSpawn reports whether every hero has signalled spawn readiness.
func CanSpawn(heroes []*Unit) bool {
	for _, u := range heroes {
		if u.Hero == nil || !u.Hero.ReadyToSpawn {
			return false
		}
	}
	return true
}
