package combat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"arena/server/internal/netid"
	"arena/server/internal/world"
	loggingcombat "arena/server/logging/combat"
	"arena/server/stats"
)

var (
	ErrInvalidCaster    = errors.New("caster cannot cast")
	ErrCasterDead       = errors.New("caster is dead")
	ErrInvalidSlot      = errors.New("invalid spell slot")
	ErrOnCooldown       = errors.New("spell on cooldown")
	ErrNotEnoughMana    = errors.New("not enough mana")
	ErrNoScript         = errors.New("spell has no script")
	ErrInvalidTarget    = errors.New("invalid spell target")
	ErrTargetOutOfRange = errors.New("target out of range")
)

// EffectRequest describes one area query: who cast it, where it lands and
// which units it may affect.
type EffectRequest struct {
	Caster *world.Unit
	Shape  Shape
	Flags  AffectFlags
}

// Engine resolves effect areas against the map and runs spell casts.
type Engine struct {
	host    world.Host
	scripts ScriptRegistry
}

// NewEngine constructs an engine reading units from host's map.
func NewEngine(host world.Host, scripts ScriptRegistry) *Engine {
	return &Engine{host: host, scripts: scripts}
}

// Resolve returns the alive damageable units inside the request's shape that
// pass its affect policy, ordered by network id.
func (e *Engine) Resolve(req EffectRequest) []*world.Unit {
	arena := e.host.Arena()
	if arena == nil || req.Shape == nil || req.Caster == nil {
		return nil
	}
	var out []*world.Unit
	for _, candidate := range arena.Units() {
		if !candidate.Alive() || !candidate.Damageable() {
			continue
		}
		if !req.Shape.Contains(candidate) {
			continue
		}
		if !Eligible(req.Caster, candidate, req.Flags) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// Cast validates and fires the spell in a hero's slot. A failed check leaves
// cooldown and mana untouched. A missing spell record wraps
// content.ErrMissingRecord.
func (e *Engine) Cast(hero *world.Unit, slot int, position, end world.Vec2, targetID netid.ID) error {
	err := e.cast(hero, slot, position, end, targetID)
	if err != nil && hero != nil {
		payload := loggingcombat.CastRejectedPayload{Slot: slot, Reason: err.Error()}
		if hero.Hero != nil && slot >= 0 && slot < len(hero.Hero.Spells) {
			payload.Spell = hero.Hero.Spells[slot].Name
		}
		loggingcombat.CastRejected(context.Background(), e.host.Publisher(), e.host.Tick(), hero.Ref(), payload, nil)
	}
	return err
}

func (e *Engine) cast(hero *world.Unit, slot int, position, end world.Vec2, targetID netid.ID) error {
	if hero == nil || hero.Hero == nil {
		return ErrInvalidCaster
	}
	if !hero.Alive() {
		return ErrCasterDead
	}
	if slot < 0 || slot >= len(hero.Hero.Spells) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	state := &hero.Hero.Spells[slot]
	if !state.Ready() {
		return fmt.Errorf("%s: %w", state.Name, ErrOnCooldown)
	}
	record, err := e.host.Content().Spell(state.Name)
	if err != nil {
		return fmt.Errorf("cast: %w", err)
	}
	script, ok := e.scripts.Script(record.Name)
	if !ok {
		return fmt.Errorf("%s: %w", record.Name, ErrNoScript)
	}

	var target *world.Unit
	if targetID != netid.None {
		target, ok = e.host.Arena().Unit(targetID)
		if !ok || !target.Alive() || !target.Damageable() {
			return fmt.Errorf("%w: %d", ErrInvalidTarget, targetID)
		}
		if record.CastRange > 0 && hero.Position.Distance(target.Position) > record.CastRange+target.Radius {
			return fmt.Errorf("%s: %w", record.Name, ErrTargetOutOfRange)
		}
	}
	if !hero.Stats.Spend(stats.PoolMana, record.ManaCost) {
		return fmt.Errorf("%s: %w", record.Name, ErrNotEnoughMana)
	}

	c := &Cast{
		Owner:    hero,
		Record:   record,
		Slot:     slot,
		Level:    state.Level,
		Position: position,
		End:      end,
		Target:   target,
		engine:   e,
		script:   script,
	}
	if dir := position.Sub(hero.Position).Normalize(); dir != (world.Vec2{}) {
		hero.Facing = dir
	}
	script.OnStartCasting(c)
	script.OnFinishCasting(c)
	state.Cooldown = time.Duration(record.Cooldown * float64(time.Second))

	loggingcombat.SpellCast(context.Background(), e.host.Publisher(), e.host.Tick(), hero.Ref(), loggingcombat.SpellCastPayload{
		Spell:   record.Name,
		Slot:    slot,
		TargetX: position.X,
		TargetY: position.Y,
	}, nil)
	return nil
}
