package scripts

import (
	"arena/server/internal/combat"
	"arena/server/internal/world"
)

// script runs a Definition through the combat cast API.
type script struct {
	def Definition
}

// FromDefinition builds a combat script from def.
func FromDefinition(def Definition) combat.Script {
	return &script{def: def}
}

func (s *script) Flags() combat.AffectFlags {
	return s.def.Flags
}

func (s *script) DestroyProjectileOnHit() bool {
	return s.def.DestroyOnHit
}

func (s *script) OnStartCasting(*combat.Cast) {}

func (s *script) OnFinishCasting(c *combat.Cast) {
	owner := c.Owner
	switch s.def.Delivery {
	case DeliverySkillShot:
		c.AddSkillShot(owner.Position, c.Position)
	case DeliveryTargeted:
		if c.Target != nil {
			c.AddTargetedProjectile(c.Target)
		}
	case DeliveryCone:
		dir := c.Position.Sub(owner.Position).Normalize()
		if dir == (world.Vec2{}) {
			dir = owner.Facing
		}
		end := owner.Position.Add(dir.Scale(c.Record.Range))
		c.AddCone(owner.Position, end, c.Record.ConeHalfAngle())
	case DeliverySelf:
		c.AddArea(combat.Single{Target: owner})
	}
}

func (s *script) ApplyEffects(c *combat.Cast, target, projectile *world.Unit) {
	switch s.def.Impact {
	case ImpactDamage:
		c.Damage(target, projectile)
	case ImpactBuff:
		if err := c.Buff(target); err != nil {
			if host := c.Owner.Host(); host != nil {
				host.ReportFault(err)
			}
		}
	}
}
