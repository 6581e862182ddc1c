package combat

import "arena/server/internal/world"

// Script is the gameplay behavior of one spell.
type Script interface {
	// Flags is the affect policy applied to every target the spell resolves.
	Flags() AffectFlags
	// DestroyProjectileOnHit stops the spell's projectiles at their first
	// eligible hit. Otherwise skillshots pierce.
	DestroyProjectileOnHit() bool
	OnStartCasting(c *Cast)
	OnFinishCasting(c *Cast)
	// ApplyEffects runs once per affected unit. projectile is nil for
	// instant shapes.
	ApplyEffects(c *Cast, target, projectile *world.Unit)
}

// RangeReachedHandler is implemented by scripts that react to a skillshot
// exhausting its range. Without it the projectile is dropped quietly.
type RangeReachedHandler interface {
	OnRangeReached(c *Cast, projectile *world.Unit)
}

// ScriptRegistry resolves spell names to scripts.
type ScriptRegistry interface {
	Script(name string) (Script, bool)
}

// ScriptRegistryFunc adapts a function into a ScriptRegistry.
type ScriptRegistryFunc func(name string) (Script, bool)

func (f ScriptRegistryFunc) Script(name string) (Script, bool) {
	if f == nil {
		return nil, false
	}
	return f(name)
}
