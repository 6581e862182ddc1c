package stats

import "fmt"

var statNames = [StatCount]string{
	StatHealth:       "health",
	StatMana:         "mana",
	StatHealthRegen:  "healthRegen",
	StatManaRegen:    "manaRegen",
	StatAttackDamage: "attackDamage",
	StatAbilityPower: "abilityPower",
	StatArmor:        "armor",
	StatMagicResist:  "magicResist",
	StatAttackSpeed:  "attackSpeed",
	StatAttackRange:  "attackRange",
	StatMoveSpeed:    "moveSpeed",
	StatCritChance:   "critChance",
}

func (id StatID) String() string {
	if id >= StatCount {
		return fmt.Sprintf("stat(%d)", uint8(id))
	}
	return statNames[id]
}

// ParseStatID resolves a stat by its content name.
func ParseStatID(name string) (StatID, error) {
	for i, candidate := range statNames {
		if candidate == name {
			return StatID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// ValueSetFromMap builds a value set from content names.
func ValueSetFromMap(values map[string]float64) (ValueSet, error) {
	var vs ValueSet
	for name, value := range values {
		id, err := ParseStatID(name)
		if err != nil {
			return ValueSet{}, err
		}
		vs[id] = value
	}
	return vs, nil
}

// Tuning bounds shared by every unit.
const (
	minAttackSpeed = 0.2
	maxAttackSpeed = 2.5
)

var levelSource = SourceKey{Kind: SourceKindLevel, ID: "growth"}

// ApplyLevel replaces the level layer with growth scaled by the levels gained
// above one. Pools keep their current values.
func (c *Component) ApplyLevel(level int, growth ValueSet) {
	if level < 1 {
		level = 1
	}
	delta := NewStatDelta()
	gained := float64(level - 1)
	for i := range growth {
		delta.Add[i] = growth[i] * gained
	}
	c.Apply(CommandStatChange{Layer: LayerLevel, Source: levelSource, Delta: delta})
}
