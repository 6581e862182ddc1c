package combat

import (
	"strings"

	"arena/server/internal/world"
)

// AffectFlags selects which relationships and unit kinds an effect may strike.
type AffectFlags uint32

const (
	AffectEnemies AffectFlags = 1 << iota
	AffectFriends
	AffectNeutral
	AffectHeroes
	AffectMinions
	AffectTurrets

	// AffectAllSides skips relationship filtering when every side bit is set.
	AffectAllSides = AffectEnemies | AffectFriends | AffectNeutral
	// AffectAllUnitKinds skips kind filtering when every kind bit is set.
	AffectAllUnitKinds = AffectHeroes | AffectMinions | AffectTurrets
)

// Has reports whether every bit of mask is set.
func (f AffectFlags) Has(mask AffectFlags) bool {
	return f&mask == mask
}

func (f AffectFlags) String() string {
	if f == 0 {
		return "none"
	}
	names := []struct {
		flag AffectFlags
		name string
	}{
		{AffectEnemies, "enemies"},
		{AffectFriends, "friends"},
		{AffectNeutral, "neutral"},
		{AffectHeroes, "heroes"},
		{AffectMinions, "minions"},
		{AffectTurrets, "turrets"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Friendly reports whether a and b fight on the same playable side. Neutral
// units are nobody's friend.
func Friendly(a, b *world.Unit) bool {
	side := a.Side()
	return side != world.TeamNeutral && side == b.Side()
}

// Eligible applies the affect policy of caster's effect to candidate. The
// side filter and the kind filter are independent and both must pass.
// Sides are read at call time.
func Eligible(caster, candidate *world.Unit, flags AffectFlags) bool {
	if !flags.Has(AffectAllSides) {
		friendly := Friendly(caster, candidate)
		if !friendly && !flags.Has(AffectEnemies) {
			return false
		}
		if friendly && !flags.Has(AffectFriends) {
			return false
		}
		if candidate.Side() == world.TeamNeutral && flags.Has(AffectNeutral) {
			return true
		}
	}
	if flags.Has(AffectAllUnitKinds) {
		return true
	}
	switch candidate.Kind {
	case world.KindTurret:
		return flags.Has(AffectTurrets)
	case world.KindMinion:
		return flags.Has(AffectMinions)
	case world.KindHero:
		return flags.Has(AffectHeroes)
	default:
		return false
	}
}
