package world

import (
	"math"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/stats"
)

// AttackState tracks a unit's automatic attack.
type AttackState struct {
	Target   *Unit
	Cooldown time.Duration
}

// PathState is the remaining list of waypoints a unit walks.
type PathState struct {
	Waypoints []Vec2
}

// Set replaces the remaining waypoints.
func (p *PathState) Set(points ...Vec2) {
	p.Waypoints = append(p.Waypoints[:0], points...)
}

// Clear drops the remaining waypoints.
func (p *PathState) Clear() {
	p.Waypoints = p.Waypoints[:0]
}

// Destination returns the final waypoint.
func (p *PathState) Destination() (Vec2, bool) {
	if p == nil || len(p.Waypoints) == 0 {
		return Vec2{}, false
	}
	return p.Waypoints[len(p.Waypoints)-1], true
}

// MoveTo orders the unit to walk to dest, dropping its attack target.
// Hero orders are broadcast as waypoint updates.
func (u *Unit) MoveTo(dest Vec2) {
	if u.Path == nil || !u.alive {
		return
	}
	u.ClearAttackTarget(true)
	u.Path.Set(dest)
	if u.Kind == KindHero {
		u.broadcast(&proto.WaypointUpdate{
			GameHeader:  u.gameHeader(),
			Position:    u.Position.Wire(),
			Destination: dest.Wire(),
			Speed:       float32(u.Stats.GetTotal(stats.StatMoveSpeed)),
		}, proto.ChannelLowPriority)
	}
}

// Stop cancels movement and attack.
func (u *Unit) Stop() {
	if u.Path != nil {
		u.Path.Clear()
	}
	u.ClearAttackTarget(true)
}

// SetAttackTarget orders an automatic attack on target.
func (u *Unit) SetAttackTarget(target *Unit) {
	if u.Attack == nil || target == nil || target == u {
		return
	}
	u.Attack.Target = target
}

// ClearAttackTarget drops the attack target. Heroes tell clients to stop the
// attack animation when notify is set.
func (u *Unit) ClearAttackTarget(notify bool) {
	if u.Attack == nil || u.Attack.Target == nil {
		return
	}
	u.Attack.Target = nil
	if notify && u.Kind == KindHero {
		u.broadcast(&proto.StopAutoAttack{Header: proto.HeaderFor(uint32(u.ID))}, proto.ChannelS2C)
	}
}

// moveSpeedStep returns the distance covered in delta.
func (u *Unit) moveSpeedStep(delta time.Duration) float64 {
	return u.Stats.GetTotal(stats.StatMoveSpeed) * delta.Seconds()
}

// followPath walks the waypoint list and reports whether the unit moved.
func (u *Unit) followPath(delta time.Duration) bool {
	if u.Path == nil || len(u.Path.Waypoints) == 0 {
		return false
	}
	step := u.moveSpeedStep(delta)
	if step <= 0 {
		return false
	}
	for step > 0 && len(u.Path.Waypoints) > 0 {
		next := u.Path.Waypoints[0]
		travelled := u.Position.Distance(next)
		pos, reached := MoveToward(u.Position, next, step)
		u.face(next)
		u.Position = pos
		if !reached {
			break
		}
		step -= travelled
		u.Path.Waypoints = u.Path.Waypoints[1:]
	}
	return true
}

func (u *Unit) face(target Vec2) {
	dir := target.Sub(u.Position).Normalize()
	if dir != (Vec2{}) {
		u.Facing = dir
	}
}

// attackReach is the centre distance at which u can hit target.
func (u *Unit) attackReach(target *Unit) float64 {
	return u.Stats.GetTotal(stats.StatAttackRange) + u.Radius + target.Radius
}

// updateAttack runs the automatic attack. Mobile units chase a target that is
// out of reach; stationary ones drop it. It reports whether the unit is busy
// with a target.
func (u *Unit) updateAttack(delta time.Duration, mobile bool) bool {
	a := u.Attack
	if a == nil {
		return false
	}
	if a.Cooldown > 0 {
		a.Cooldown -= delta
	}
	target := a.Target
	if target == nil {
		return false
	}
	if !target.alive || !target.Damageable() {
		u.ClearAttackTarget(true)
		return false
	}
	if u.Position.Distance(target.Position) > u.attackReach(target) {
		if !mobile {
			u.ClearAttackTarget(true)
			return false
		}
		pos, _ := MoveToward(u.Position, target.Position, u.moveSpeedStep(delta))
		u.face(target.Position)
		u.Position = pos
		return true
	}
	u.face(target.Position)
	if a.Cooldown <= 0 {
		ApplyDamage(u, target, u.Stats.GetTotal(stats.StatAttackDamage), content.DamagePhysical, "")
		interval := u.Stats.GetDerived(stats.DerivedAttackInterval)
		a.Cooldown = time.Duration(interval * float64(time.Second))
	}
	return true
}

// acquireTarget returns the closest living enemy of a playable side within
// radius, breaking distance ties by id.
func (u *Unit) acquireTarget(radius float64) *Unit {
	arena := u.arena()
	if arena == nil {
		return nil
	}
	side := u.Side()
	var best *Unit
	bestDistance := math.Inf(1)
	for _, candidate := range arena.UnitsInRange(u.Position, radius) {
		if candidate == u || !candidate.alive || !candidate.Damageable() {
			continue
		}
		other := candidate.Side()
		if other == side || other == TeamNeutral {
			continue
		}
		distance := u.Position.Distance(candidate.Position)
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}

func (u *Unit) acquisitionRange() float64 {
	if u.Record == nil {
		return 0
	}
	return u.Record.AcquisitionRange
}

func (u *Unit) updateMinion(delta time.Duration) {
	if !u.alive {
		return
	}
	u.refreshStats()
	u.Stats.Regenerate(delta.Seconds())
	if u.Attack.Target == nil {
		u.SetAttackTarget(u.acquireTarget(u.acquisitionRange()))
	}
	if u.Attack.Target != nil && u.Position.Distance(u.Attack.Target.Position) > u.acquisitionRange()*1.5 {
		u.ClearAttackTarget(false)
	}
	if !u.updateAttack(delta, true) {
		u.followPath(delta)
	}
}

func (u *Unit) updateTurret(delta time.Duration) {
	if !u.alive {
		return
	}
	u.refreshStats()
	if u.Attack.Target == nil {
		u.SetAttackTarget(u.acquireTarget(u.Stats.GetTotal(stats.StatAttackRange) + u.Radius))
	}
	u.updateAttack(delta, false)
}

// updateNeutral fights back against the last attacker while it stays within
// the leash, then walks home and heals.
func (u *Unit) updateNeutral(delta time.Duration) {
	if !u.alive {
		return
	}
	u.refreshStats()
	leash := u.acquisitionRange() * 2
	aggressor := u.LastDamager.Owner()
	if aggressor != nil && aggressor.alive && aggressor.Damageable() && aggressor.Position.Distance(u.Home) <= leash {
		u.SetAttackTarget(aggressor)
		u.updateAttack(delta, true)
		return
	}
	u.LastDamager = nil
	u.ClearAttackTarget(false)
	if u.Position != u.Home {
		u.Path.Set(u.Home)
		u.followPath(delta)
		return
	}
	u.Stats.Fill(stats.PoolHealth)
}
