package combat

import (
	"context"

	"arena/server/logging"
)

const (
	// EventDamage is emitted when a unit takes damage.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when a unit dies.
	EventDefeat logging.EventType = "combat.defeat"
	// EventSpellCast is emitted when a spell passes validation and fires.
	EventSpellCast logging.EventType = "combat.spell_cast"
	// EventCastRejected is emitted when a cast request fails validation.
	EventCastRejected logging.EventType = "combat.cast_rejected"
	// EventEffectResolved is emitted when an area effect selects its targets.
	EventEffectResolved logging.EventType = "combat.effect_resolved"
)

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Spell        string  `json:"spell,omitempty"`
	DamageType   string  `json:"damageType"`
	Raw          float64 `json:"raw"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Spell  string `json:"spell,omitempty"`
	Killer string `json:"killer,omitempty"`
}

// SpellCastPayload describes a fired spell.
type SpellCastPayload struct {
	Spell   string  `json:"spell"`
	Slot    int     `json:"slot"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// CastRejectedPayload names the failed check.
type CastRejectedPayload struct {
	Spell  string `json:"spell,omitempty"`
	Slot   int    `json:"slot"`
	Reason string `json:"reason"`
}

// EffectResolvedPayload summarizes an area resolution.
type EffectResolvedPayload struct {
	Spell string `json:"spell"`
	Shape string `json:"shape"`
	Hits  int    `json:"hits"`
}

// Damage publishes a damage event.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	publish(ctx, pub, EventDamage, logging.SeverityInfo, tick, actor, []logging.EntityRef{target}, payload, extra)
}

// Defeat publishes a defeat event.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	publish(ctx, pub, EventDefeat, logging.SeverityInfo, tick, actor, []logging.EntityRef{target}, payload, extra)
}

// SpellCast publishes a cast event.
func SpellCast(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpellCastPayload, extra map[string]any) {
	publish(ctx, pub, EventSpellCast, logging.SeverityDebug, tick, actor, nil, payload, extra)
}

// CastRejected publishes a rejected cast.
func CastRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CastRejectedPayload, extra map[string]any) {
	publish(ctx, pub, EventCastRejected, logging.SeverityDebug, tick, actor, nil, payload, extra)
}

// EffectResolved publishes the targets an area effect selected.
func EffectResolved(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload EffectResolvedPayload, extra map[string]any) {
	publish(ctx, pub, EventEffectResolved, logging.SeverityDebug, tick, actor, targets, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
