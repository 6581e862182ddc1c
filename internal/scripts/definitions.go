package scripts

import "arena/server/internal/combat"

// Spell names with built-in scripts. They match the names in the content
// records so gameplay code can reference them without string literals.
const (
	SpellMysticShot       = "MysticShot"
	SpellEssenceFlux      = "EssenceFlux"
	SpellArcaneBolt       = "ArcaneBolt"
	SpellRisingSpellForce = "RisingSpellForce"
	SpellIncinerate       = "Incinerate"
	SpellDisintegrate     = "Disintegrate"
	SpellMoltenShield     = "MoltenShield"
)

// Delivery selects how a spell reaches its targets.
type Delivery uint8

const (
	// DeliverySkillShot fires a line projectile toward the cast position.
	DeliverySkillShot Delivery = iota
	// DeliveryTargeted fires a projectile homing on the selected unit.
	DeliveryTargeted
	// DeliveryCone strikes a cone in front of the caster immediately.
	DeliveryCone
	// DeliverySelf applies to the caster only.
	DeliverySelf
)

func (d Delivery) String() string {
	switch d {
	case DeliverySkillShot:
		return "skillshot"
	case DeliveryTargeted:
		return "targeted"
	case DeliveryCone:
		return "cone"
	case DeliverySelf:
		return "self"
	default:
		return "unknown"
	}
}

// Impact selects what happens to each affected unit.
type Impact uint8

const (
	ImpactDamage Impact = iota
	ImpactBuff
)

// Definition declares a data driven spell script.
type Definition struct {
	Name     string
	Delivery Delivery
	Impact   Impact
	Flags    combat.AffectFlags
	// DestroyOnHit stops projectiles at their first eligible hit.
	DestroyOnHit bool
}

const offensive = combat.AffectEnemies | combat.AffectNeutral | combat.AffectAllUnitKinds

// BuiltInDefinitions returns the shipped spell scripts. Callers receive a
// fresh slice they may modify.
func BuiltInDefinitions() []Definition {
	return []Definition{
		{Name: SpellMysticShot, Delivery: DeliverySkillShot, Impact: ImpactDamage, Flags: offensive, DestroyOnHit: true},
		{Name: SpellEssenceFlux, Delivery: DeliverySkillShot, Impact: ImpactDamage, Flags: combat.AffectEnemies | combat.AffectHeroes | combat.AffectMinions},
		{Name: SpellArcaneBolt, Delivery: DeliveryTargeted, Impact: ImpactDamage, Flags: offensive, DestroyOnHit: true},
		{Name: SpellRisingSpellForce, Delivery: DeliverySelf, Impact: ImpactBuff, Flags: combat.AffectFriends | combat.AffectHeroes},
		{Name: SpellIncinerate, Delivery: DeliveryCone, Impact: ImpactDamage, Flags: offensive},
		{Name: SpellDisintegrate, Delivery: DeliveryTargeted, Impact: ImpactDamage, Flags: offensive, DestroyOnHit: true},
		{Name: SpellMoltenShield, Delivery: DeliverySelf, Impact: ImpactBuff, Flags: combat.AffectFriends | combat.AffectHeroes},
	}
}
