package world

import (
	"cmp"
	"slices"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
)

// ProjectileState is the travel model of a spell projectile.
type ProjectileState struct {
	Caster    *Unit
	Spell     content.SpellRecord
	Start     Vec2
	Direction Vec2
	Speed     float64
	Remaining float64
	Width     float64
	Target    *Unit

	// OnReach runs when the projectile touches a unit and reports whether the
	// contact counted as a hit. Counted units are never reached again.
	OnReach func(p, target *Unit) bool
	// OnRangeReached runs once when a skillshot exhausts its range without
	// being destroyed.
	OnRangeReached func(p *Unit)

	hit        map[netid.ID]struct{}
	rangeFired bool
}

// HasHit reports whether id was already struck.
func (p *ProjectileState) HasHit(id netid.ID) bool {
	_, ok := p.hit[id]
	return ok
}

// Hits returns the struck unit ids in order.
func (p *ProjectileState) Hits() []netid.ID {
	ids := make([]netid.ID, 0, len(p.hit))
	for id := range p.hit {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NewSkillShot constructs a projectile flying from start toward end for
// rangeLimit units.
func NewSkillShot(host Host, caster *Unit, spell content.SpellRecord, start, end Vec2, rangeLimit, speed, width float64) *Unit {
	u := newUnit(host, KindSkillShot, spell.Name)
	dir := end.Sub(start).Normalize()
	if dir == (Vec2{}) {
		dir = caster.Facing
	}
	u.Position = start
	u.Facing = dir
	u.Projectile = &ProjectileState{
		Caster:    caster,
		Spell:     spell,
		Start:     start,
		Direction: dir,
		Speed:     speed,
		Remaining: rangeLimit,
		Width:     width,
		hit:       make(map[netid.ID]struct{}),
	}
	return u
}

// NewTargetedProjectile constructs a projectile homing on target.
func NewTargetedProjectile(host Host, caster *Unit, spell content.SpellRecord, target *Unit, speed float64) *Unit {
	u := newUnit(host, KindTargetedProjectile, spell.Name)
	u.Position = caster.Position
	u.Facing = target.Position.Sub(caster.Position).Normalize()
	u.Projectile = &ProjectileState{
		Caster: caster,
		Spell:  spell,
		Start:  caster.Position,
		Speed:  speed,
		Target: target,
		hit:    make(map[netid.ID]struct{}),
	}
	return u
}

// SpawnMessage describes the projectile for clients.
func (u *Unit) SpawnMessage() *proto.SpawnProjectile {
	p := u.Projectile
	msg := &proto.SpawnProjectile{
		GameHeader:  u.gameHeader(),
		Position:    u.Position.Wire3(),
		Start:       p.Start.Wire3(),
		Speed:       float32(p.Speed),
		SpellHash:   p.Spell.Hash(),
		CasterNetID: uint32(p.Caster.ID),
	}
	if p.Target != nil {
		msg.End = p.Target.Position.Wire3()
		msg.TargetNetID = uint32(p.Target.ID)
	} else {
		msg.End = p.Start.Add(p.Direction.Scale(p.Remaining)).Wire3()
	}
	return msg
}

func (p *ProjectileState) step(delta time.Duration, limit float64) float64 {
	if p.Speed <= 0 {
		return limit
	}
	return min(p.Speed*delta.Seconds(), limit)
}

func (u *Unit) updateSkillShot(delta time.Duration) {
	p := u.Projectile
	if !u.alive || p == nil {
		return
	}
	step := p.step(delta, p.Remaining)
	from := u.Position
	to := from.Add(p.Direction.Scale(step))
	for _, candidate := range u.sweep(from, to) {
		if !u.alive {
			return
		}
		if p.OnReach != nil && p.OnReach(u, candidate) {
			p.hit[candidate.ID] = struct{}{}
		}
	}
	if !u.alive {
		return
	}
	u.Position = to
	p.Remaining -= step
	if p.Remaining <= 0 {
		u.rangeReached()
	}
}

// sweep returns the units overlapping the swept segment from-to, in travel
// order and then by id.
func (u *Unit) sweep(from, to Vec2) []*Unit {
	arena := u.arena()
	if arena == nil {
		return nil
	}
	p := u.Projectile
	dir := to.Sub(from)
	var out []*Unit
	for _, candidate := range arena.Units() {
		if candidate == u || candidate == p.Caster || !candidate.alive || !candidate.Damageable() || p.HasHit(candidate.ID) {
			continue
		}
		if DistanceToSegment(candidate.Position, from, to) <= p.Width/2+candidate.Radius {
			out = append(out, candidate)
		}
	}
	slices.SortStableFunc(out, func(a, b *Unit) int {
		if c := cmp.Compare(a.Position.Sub(from).Dot(dir), b.Position.Sub(from).Dot(dir)); c != 0 {
			return c
		}
		return compareUnits(a, b)
	})
	return out
}

func (u *Unit) rangeReached() {
	p := u.Projectile
	if p.rangeFired {
		return
	}
	p.rangeFired = true
	if p.OnRangeReached != nil {
		p.OnRangeReached(u)
	}
	if u.alive && u.host != nil {
		u.host.DestroyUnit(u, false)
	}
}

func (u *Unit) updateTargeted(delta time.Duration) {
	p := u.Projectile
	if !u.alive || p == nil {
		return
	}
	target := p.Target
	if target == nil || !target.alive {
		if u.host != nil {
			u.host.DestroyUnit(u, true)
		}
		return
	}
	distance := u.Position.Distance(target.Position)
	step := p.step(delta, distance)
	if distance-target.Radius <= step {
		u.Position = target.Position
		if p.OnReach != nil && p.OnReach(u, target) {
			p.hit[target.ID] = struct{}{}
		}
		if u.alive && u.host != nil {
			u.host.DestroyUnit(u, false)
		}
		return
	}
	u.face(target.Position)
	u.Position, _ = MoveToward(u.Position, target.Position, step)
}
