package world

import (
	"context"
	"slices"
	"time"

	"arena/server/logging/status_effects"
	"arena/server/stats"
)

// AddBuff grants a timed additive stat bonus keyed by name. Reapplying the
// same name refreshes the bonus and its expiry.
func AddBuff(source, target *Unit, name string, delta stats.StatDelta, duration time.Duration) {
	if target == nil || !target.alive || duration <= 0 {
		return
	}
	var now uint64
	if target.host != nil {
		now = gameMillis(target.host)
	}
	expires := now + uint64(duration.Milliseconds())
	target.Stats.Apply(stats.CommandStatChange{
		Layer:     stats.LayerTemporary,
		Source:    stats.SourceKey{Kind: stats.SourceKindBuff, ID: name},
		Delta:     delta,
		ExpiresAt: expires,
	})
	if target.buffs == nil {
		target.buffs = make(map[string]uint64)
	}
	target.buffs[name] = expires
	target.Stats.Resolve(now)
	status_effects.Applied(context.Background(), target.publisher(), target.tick(), source.Owner().Ref(), target.Ref(), status_effects.AppliedPayload{
		StatusEffect: name,
		SourceID:     source.Owner().Ref().ID,
		DurationMs:   duration.Milliseconds(),
	}, nil)
}

// HasBuff reports whether the named buff is active.
func (u *Unit) HasBuff(name string) bool {
	_, ok := u.buffs[name]
	return ok
}

// refreshStats drops expired buffs and folds the stat layers.
func (u *Unit) refreshStats() {
	var now uint64
	if u.host != nil {
		now = gameMillis(u.host)
	}
	u.Stats.Resolve(now)
	if len(u.buffs) == 0 {
		return
	}
	var expired []string
	for name, expires := range u.buffs {
		if now >= expires {
			expired = append(expired, name)
		}
	}
	slices.Sort(expired)
	for _, name := range expired {
		delete(u.buffs, name)
		status_effects.Expired(context.Background(), u.publisher(), u.tick(), u.Ref(), status_effects.ExpiredPayload{StatusEffect: name}, nil)
	}
}
