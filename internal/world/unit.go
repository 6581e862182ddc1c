package world

import (
	"fmt"
	"strconv"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/logging"
	"arena/server/stats"
)

// Kind tags the variant of a Unit.
type Kind uint8

const (
	KindProp Kind = iota
	KindAIUnit
	KindHero
	KindTurret
	KindMinion
	KindSkillShot
	KindTargetedProjectile
)

func (k Kind) String() string {
	switch k {
	case KindProp:
		return "prop"
	case KindAIUnit:
		return "aiUnit"
	case KindHero:
		return "hero"
	case KindTurret:
		return "turret"
	case KindMinion:
		return "minion"
	case KindSkillShot:
		return "skillShot"
	case KindTargetedProjectile:
		return "targetedProjectile"
	default:
		return "unknown"
	}
}

// Damageable reports whether units of this kind carry health and can be hit.
func (k Kind) Damageable() bool {
	switch k {
	case KindAIUnit, KindHero, KindTurret, KindMinion:
		return true
	default:
		return false
	}
}

// Updatable reports whether units of this kind advance every tick.
func (k Kind) Updatable() bool {
	return k != KindProp
}

// Projectile reports whether the kind is a travelling spell.
func (k Kind) Projectile() bool {
	return k == KindSkillShot || k == KindTargetedProjectile
}

func (k Kind) entityKind() logging.EntityKind {
	switch k {
	case KindHero:
		return logging.EntityKindHero
	case KindMinion:
		return logging.EntityKindMinion
	case KindTurret:
		return logging.EntityKindTurret
	case KindAIUnit:
		return logging.EntityKindNeutral
	case KindSkillShot, KindTargetedProjectile:
		return logging.EntityKindProjectile
	default:
		return logging.EntityKindUnknown
	}
}

// Unit is any simulated object. Kind selects which of the state pointers are
// populated; behavior dispatches on Kind.
type Unit struct {
	ID       netid.ID
	Kind     Kind
	Name     string
	Model    string
	Record   *content.UnitRecord
	Position Vec2
	Facing   Vec2
	Home     Vec2
	Radius   float64
	Stats    stats.Component

	Hero       *HeroState
	Projectile *ProjectileState
	Attack     *AttackState
	Path       *PathState

	// LastDamager is the unit that most recently dealt damage.
	LastDamager *Unit
	// OnUpdate runs after the kind behavior each tick while the unit is alive.
	OnUpdate func(u *Unit, delta time.Duration)

	host        Host
	team        *Team
	buffs       map[string]uint64
	alive       bool
	initialized bool
}

func newUnit(host Host, kind Kind, name string) *Unit {
	u := &Unit{Kind: kind, Name: name, Facing: Vec2{X: 1}, host: host}
	if host != nil {
		u.ID = host.NextNetID()
	}
	if kind.Damageable() {
		u.Attack = &AttackState{}
		u.Path = &PathState{}
	}
	return u
}

func newRecordUnit(host Host, kind Kind, record content.UnitRecord) *Unit {
	u := newUnit(host, kind, record.Name)
	rec := record
	u.Record = &rec
	u.Model = rec.Model
	u.Radius = rec.Radius
	return u
}

// NewProp constructs a passive map object.
func NewProp(host Host, name string, position Vec2) *Unit {
	u := newUnit(host, KindProp, name)
	u.Position = position
	u.Home = position
	return u
}

// NewMinion constructs a lane minion that walks waypoints.
func NewMinion(host Host, record content.UnitRecord, waypoints []Vec2) *Unit {
	u := newRecordUnit(host, KindMinion, record)
	if len(waypoints) > 0 {
		u.Position = waypoints[0]
		u.Home = waypoints[0]
		u.Path.Set(waypoints[1:]...)
	}
	return u
}

// NewTurret constructs a stationary turret.
func NewTurret(host Host, name string, record content.UnitRecord, position Vec2) *Unit {
	u := newRecordUnit(host, KindTurret, record)
	u.Name = name
	u.Position = position
	u.Home = position
	return u
}

// NewNeutral constructs a neutral camp monster.
func NewNeutral(host Host, record content.UnitRecord, position Vec2) *Unit {
	u := newRecordUnit(host, KindAIUnit, record)
	u.Position = position
	u.Home = position
	return u
}

// Initialize resolves stats from the record, fills pools and places heroes on
// their spawn. It runs exactly once per unit; a second call panics.
func (u *Unit) Initialize() {
	if u.initialized {
		panic(fmt.Sprintf("world: unit %d initialized twice", u.ID))
	}
	u.initialized = true
	u.alive = true
	if u.Record != nil {
		u.Stats = stats.NewComponent(u.Record.Base())
		if u.Model == "" {
			u.Model = u.Record.Name
		}
	}
	if u.Kind == KindHero {
		u.initializeHero()
	}
}

// Initialized reports whether Initialize has run.
func (u *Unit) Initialized() bool {
	return u.initialized
}

// Alive reports whether the unit is live.
func (u *Unit) Alive() bool {
	return u.alive
}

// Damageable reports whether the unit can be hit.
func (u *Unit) Damageable() bool {
	return u.Kind.Damageable()
}

// Team returns the owning team, or nil for map-only units.
func (u *Unit) Team() *Team {
	return u.team
}

// Host returns the owning match.
func (u *Unit) Host() Host {
	return u.host
}

// Side reports the unit's current allegiance. Projectiles fight for their
// caster; units without a team are neutral.
func (u *Unit) Side() TeamID {
	if u.team != nil {
		return u.team.ID
	}
	if u.Projectile != nil && u.Projectile.Caster != nil {
		return u.Projectile.Caster.Side()
	}
	return TeamNeutral
}

// Owner returns the unit credited for the unit's actions: the caster for
// projectiles, the unit itself otherwise.
func (u *Unit) Owner() *Unit {
	if u == nil {
		return nil
	}
	if u.Projectile != nil && u.Projectile.Caster != nil {
		return u.Projectile.Caster
	}
	return u
}

// Ref identifies the unit in log events.
func (u *Unit) Ref() logging.EntityRef {
	if u == nil {
		return logging.WorldRef()
	}
	return logging.EntityRef{ID: strconv.FormatUint(uint64(u.ID), 10), Kind: u.Kind.entityKind()}
}

// SendToClient delivers msg to the unit's player when it is a connected hero.
func (u *Unit) SendToClient(msg proto.Message, ch proto.Channel, flags proto.Flags) {
	if u.Hero == nil || u.Hero.Client == nil || u.Hero.Disconnected {
		return
	}
	u.Hero.Client.Send(msg, ch, flags)
}

// Kill marks the unit dead without death side effects.
func (u *Unit) Kill() {
	u.alive = false
	if u.Attack != nil {
		u.Attack.Target = nil
	}
}

// Update advances the unit by delta.
func (u *Unit) Update(delta time.Duration) {
	if !u.Kind.Updatable() || !u.initialized {
		return
	}
	switch u.Kind {
	case KindHero:
		u.updateHero(delta)
	case KindMinion:
		u.updateMinion(delta)
	case KindTurret:
		u.updateTurret(delta)
	case KindAIUnit:
		u.updateNeutral(delta)
	case KindSkillShot:
		u.updateSkillShot(delta)
	case KindTargetedProjectile:
		u.updateTargeted(delta)
	}
	if u.alive && u.OnUpdate != nil {
		u.OnUpdate(u, delta)
	}
}

func (u *Unit) arena() *Arena {
	if u.host == nil {
		return nil
	}
	return u.host.Arena()
}

func (u *Unit) tick() uint64 {
	if u.host == nil {
		return 0
	}
	return u.host.Tick()
}

func (u *Unit) publisher() logging.Publisher {
	if u.host == nil {
		return nil
	}
	return u.host.Publisher()
}

func (u *Unit) broadcast(msg proto.Message, ch proto.Channel) {
	if u.host == nil {
		return
	}
	u.host.Send(msg, ch, ch.DefaultFlags())
}

func (u *Unit) gameHeader() proto.GameHeader {
	var tick int32
	if u.host != nil {
		tick = tickOf(u.host)
	}
	return proto.GameHeaderFor(uint32(u.ID), tick)
}
