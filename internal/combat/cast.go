package combat

import (
	"context"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/world"
	"arena/server/logging"
	loggingcombat "arena/server/logging/combat"
	"arena/server/stats"
)

// Cast is the runtime state of one spell cast, handed to its script.
type Cast struct {
	Owner    *world.Unit
	Record   content.SpellRecord
	Slot     int
	Level    int
	Position world.Vec2
	End      world.Vec2
	Target   *world.Unit

	engine *Engine
	script Script
}

// NewCast prepares a cast that is not tied to a hero's spell slot.
func (e *Engine) NewCast(owner *world.Unit, record content.SpellRecord, script Script) *Cast {
	return &Cast{Owner: owner, Record: record, Level: 1, engine: e, script: script}
}

// Resolve returns the units inside shape eligible for this spell.
func (c *Cast) Resolve(shape Shape) []*world.Unit {
	return c.engine.Resolve(EffectRequest{Caster: c.Owner, Shape: shape, Flags: c.script.Flags()})
}

// AddCone resolves a cone immediately and applies the spell to each affected
// unit in id order.
func (c *Cast) AddCone(apex, end world.Vec2, halfAngle float64) []*world.Unit {
	shape := Cone{Apex: apex, End: end, HalfAngle: halfAngle}
	return c.applyArea(shape)
}

// AddArea resolves any shape immediately and applies the spell to each
// affected unit in id order.
func (c *Cast) AddArea(shape Shape) []*world.Unit {
	return c.applyArea(shape)
}

func (c *Cast) applyArea(shape Shape) []*world.Unit {
	hits := c.Resolve(shape)
	refs := make([]logging.EntityRef, 0, len(hits))
	for _, target := range hits {
		refs = append(refs, target.Ref())
	}
	host := c.engine.host
	loggingcombat.EffectResolved(context.Background(), host.Publisher(), host.Tick(), c.Owner.Ref(), refs, loggingcombat.EffectResolvedPayload{
		Spell: c.Record.Name,
		Shape: shape.Name(),
		Hits:  len(hits),
	}, nil)
	for _, target := range hits {
		c.script.ApplyEffects(c, target, nil)
	}
	return hits
}

// AddSkillShot launches a line projectile from start toward end using the
// record's range, speed and width. Effects apply on contact.
func (c *Cast) AddSkillShot(start, end world.Vec2) *world.Unit {
	host := c.engine.host
	p := world.NewSkillShot(host, c.Owner, c.Record, start, end, c.Record.Range, c.Record.MissileSpeed, c.Record.LineWidth)
	p.Projectile.OnRangeReached = func(missile *world.Unit) {
		if handler, ok := c.script.(RangeReachedHandler); ok {
			handler.OnRangeReached(c, missile)
			return
		}
		c.DestroyProjectile(missile, false)
	}
	return c.launch(p)
}

// AddTargetedProjectile launches a projectile homing on target.
func (c *Cast) AddTargetedProjectile(target *world.Unit) *world.Unit {
	p := world.NewTargetedProjectile(c.engine.host, c.Owner, c.Record, target, c.Record.MissileSpeed)
	return c.launch(p)
}

func (c *Cast) launch(p *world.Unit) *world.Unit {
	p.Projectile.OnReach = c.onReach
	host := c.engine.host
	if err := host.AddUnit(p, world.TeamNeutral); err != nil {
		host.ReportFault(err)
		return nil
	}
	msg := p.SpawnMessage()
	host.Send(msg, msg.Channel(), msg.Channel().DefaultFlags())
	return p
}

// onReach re-checks eligibility against the struck unit's current side.
func (c *Cast) onReach(p, target *world.Unit) bool {
	if !Eligible(c.Owner, target, c.script.Flags()) {
		return false
	}
	c.script.ApplyEffects(c, target, p)
	if c.script.DestroyProjectileOnHit() {
		c.DestroyProjectile(p, true)
	}
	return true
}

// DestroyProjectile removes a projectile, telling clients when notify is set.
func (c *Cast) DestroyProjectile(p *world.Unit, notify bool) {
	if p == nil || !p.Alive() {
		return
	}
	c.engine.host.DestroyUnit(p, notify)
}

// Damage deals the record's damage plus ratios to target and returns the
// mitigated amount. source is the projectile, or nil for instant effects.
func (c *Cast) Damage(target, source *world.Unit) float64 {
	if source == nil {
		source = c.Owner
	}
	raw := c.Record.Damage +
		c.Record.ADRatio*c.Owner.Stats.GetTotal(stats.StatAttackDamage) +
		c.Record.APRatio*c.Owner.Stats.GetTotal(stats.StatAbilityPower)
	return world.ApplyDamage(source, target, raw, c.Record.DamageType, c.Record.Name)
}

// Buff grants the record's stat bonus to target for its duration.
func (c *Cast) Buff(target *world.Unit) error {
	delta, err := c.Record.BuffDelta()
	if err != nil {
		return err
	}
	duration := time.Duration(c.Record.BuffDuration * float64(time.Second))
	world.AddBuff(c.Owner, target, c.Record.Name, delta, duration)
	return nil
}
