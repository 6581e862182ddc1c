package world

import (
	"context"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	loggingcombat "arena/server/logging/combat"
	"arena/server/stats"
)

// mitigation returns the damage multiplier target applies to kind.
func (u *Unit) mitigation(kind content.DamageType) float64 {
	switch kind {
	case content.DamagePhysical:
		return u.Stats.GetDerived(stats.DerivedPhysicalMultiplier)
	case content.DamageMagic:
		return u.Stats.GetDerived(stats.DerivedMagicMultiplier)
	default:
		return 1
	}
}

// ApplyDamage mitigates raw by the target's resistances, removes it from the
// health pool, broadcasts the new health and kills the target when the pool
// empties. Projectile sources are credited to their caster. It returns the
// damage dealt.
func ApplyDamage(source, target *Unit, raw float64, kind content.DamageType, spell string) float64 {
	if target == nil || !target.Damageable() || !target.alive || raw <= 0 {
		return 0
	}
	attacker := source.Owner()
	amount := raw * target.mitigation(kind)
	target.Stats.SetCurrent(stats.PoolHealth, target.Stats.Current(stats.PoolHealth)-amount)
	if attacker != nil {
		target.LastDamager = attacker
	}
	target.broadcastHealth()
	loggingcombat.Damage(context.Background(), target.publisher(), target.tick(), attacker.Ref(), target.Ref(), loggingcombat.DamagePayload{
		Spell:        spell,
		DamageType:   string(kind),
		Raw:          raw,
		Amount:       amount,
		TargetHealth: target.Stats.Current(stats.PoolHealth),
	}, nil)
	if target.Stats.Current(stats.PoolHealth) <= 0 {
		target.Die(attacker, spell)
	}
	return amount
}

// Heal restores health without exceeding the maximum.
func Heal(target *Unit, amount float64) {
	if target == nil || !target.Damageable() || !target.alive || amount <= 0 {
		return
	}
	target.Stats.SetCurrent(stats.PoolHealth, target.Stats.Current(stats.PoolHealth)+amount)
	target.broadcastHealth()
}

func (u *Unit) broadcastHealth() {
	u.broadcast(&proto.SetHealth{
		GameHeader: u.gameHeader(),
		Current:    float32(u.Stats.Current(stats.PoolHealth)),
		Max:        float32(u.Stats.Max(stats.PoolHealth)),
	}, proto.ChannelS2C)
}

// Die kills the unit. Heroes wait for their respawn timer; every other kind
// is destroyed. A hero killer earns the unit's experience.
func (u *Unit) Die(killer *Unit, spell string) {
	if !u.alive {
		return
	}
	u.Kill()
	loggingcombat.Defeat(context.Background(), u.publisher(), u.tick(), killer.Ref(), u.Ref(), loggingcombat.DefeatPayload{
		Spell:  spell,
		Killer: killer.Ref().ID,
	}, nil)

	if killer != nil && killer.Hero != nil && u.Record != nil {
		killer.AddExperience(u.Record.ExperienceGiven)
	}

	switch u.Kind {
	case KindHero:
		u.dieHero(killer)
		return
	case KindTurret:
		var killerID uint32
		if killer != nil {
			killerID = uint32(killer.ID)
		}
		u.broadcast(&proto.UnitAnnounce{
			GameHeader:  u.gameHeader(),
			Event:       proto.AnnounceTurretDestroyed,
			SourceNetID: killerID,
		}, proto.ChannelS2C)
	}
	if u.host != nil {
		u.host.DestroyUnit(u, false)
	}
}
