package stats

// Snapshot captures the component totals, derived stats and pools for
// diagnostics.
type Snapshot struct {
	Totals  map[string]float64 `json:"totals"`
	Health  float64            `json:"health"`
	Mana    float64            `json:"mana"`
	Version uint64             `json:"version"`
}

// Snapshot returns the current snapshot for the component.
func (c *Component) Snapshot() Snapshot {
	totals := make(map[string]float64, StatCount)
	for id := StatID(0); id < StatCount; id++ {
		totals[id.String()] = c.totals[id]
	}
	return Snapshot{
		Totals:  totals,
		Health:  c.current[PoolHealth],
		Mana:    c.current[PoolMana],
		Version: c.version,
	}
}
