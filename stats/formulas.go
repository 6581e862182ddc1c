package stats

func computeDerived(total ValueSet) DerivedSet {
	var derived DerivedSet

	attackSpeed := clamp(total[StatAttackSpeed], minAttackSpeed, maxAttackSpeed)
	derived[DerivedAttackInterval] = 1 / attackSpeed
	derived[DerivedPhysicalMultiplier] = mitigation(total[StatArmor])
	derived[DerivedMagicMultiplier] = mitigation(total[StatMagicResist])

	return derived
}

// mitigation converts a resistance into a damage multiplier. Positive
// resistance reduces damage with diminishing returns; negative resistance
// amplifies it.
func mitigation(resist float64) float64 {
	if resist >= 0 {
		return 100 / (100 + resist)
	}
	return 2 - 100/(100-resist)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
