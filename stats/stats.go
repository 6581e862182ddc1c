package stats

import (
	"math"
	"sort"
)

// StatID enumerates the attributes tracked for every damageable unit.
type StatID uint8

const (
	StatHealth StatID = iota
	StatMana
	StatHealthRegen
	StatManaRegen
	StatAttackDamage
	StatAbilityPower
	StatArmor
	StatMagicResist
	StatAttackSpeed
	StatAttackRange
	StatMoveSpeed
	StatCritChance

	StatCount
)

// DerivedID enumerates values computed from the stat totals.
type DerivedID uint8

const (
	DerivedAttackInterval DerivedID = iota
	DerivedPhysicalMultiplier
	DerivedMagicMultiplier

	DerivedCount
)

// PoolID enumerates the depletable resources backed by a stat maximum.
type PoolID uint8

const (
	PoolHealth PoolID = iota
	PoolMana

	PoolCount
)

// Layer describes the precedence order for additive and multiplicative modifiers.
type Layer uint8

const (
	LayerBase Layer = iota
	LayerLevel
	LayerEquipment
	LayerTemporary

	LayerCount
)

// SourceKind identifies the origin of a stat modifier for deterministic ordering.
type SourceKind uint8

const (
	SourceKindUnknown SourceKind = iota
	SourceKindRecord
	SourceKindLevel
	SourceKindEquipment
	SourceKindBuff
)

// SourceKey uniquely identifies the origin of a modifier inside a layer.
type SourceKey struct {
	Kind SourceKind
	ID   string
}

// ValueSet stores a fixed vector of stat values.
type ValueSet [StatCount]float64

// DerivedSet stores derived stat values.
type DerivedSet [DerivedCount]float64

// OverrideValue represents a stat override entry.
type OverrideValue struct {
	Active bool
	Value  float64
}

// OverrideSet stores per-stat override entries.
type OverrideSet [StatCount]OverrideValue

// LayerStack caches the aggregate contributions for a modifier layer.
type LayerStack struct {
	add      ValueSet
	mul      ValueSet
	override OverrideSet
}

type layerSource struct {
	delta     StatDelta
	expiresAt uint64
}

// Component owns the stats of a unit: layered modifiers folded into totals,
// plus the current health and mana pools. Expiry stamps are game time in
// milliseconds.
type Component struct {
	layers      [LayerCount]LayerStack
	sources     map[Layer]map[SourceKey]*layerSource
	totals      ValueSet
	base        ValueSet
	derived     DerivedSet
	current     [PoolCount]float64
	dirty       bool
	version     uint64
	lastResolve uint64
}

// StatDelta captures additive, multiplicative, and override contributions supplied by a source.
type StatDelta struct {
	Add      ValueSet
	Mul      ValueSet
	Override OverrideSet
}

// CommandStatChange represents an atomic mutation applied to the component.
type CommandStatChange struct {
	Layer     Layer
	Source    SourceKey
	Delta     StatDelta
	ExpiresAt uint64
	Remove    bool
}

// NewComponent constructs a resolved component seeded with the provided base
// values, with both pools full.
func NewComponent(base ValueSet) Component {
	c := Component{}
	c.ensureInit()
	baseDelta := NewStatDelta()
	baseDelta.Add = base
	c.applySource(LayerBase, SourceKey{Kind: SourceKindRecord, ID: "base"}, baseDelta, 0)
	c.Resolve(0)
	c.Fill(PoolHealth)
	c.Fill(PoolMana)
	return c
}

func (c *Component) ensureInit() {
	if c.sources != nil {
		return
	}
	c.sources = make(map[Layer]map[SourceKey]*layerSource)
	for layer := Layer(0); layer < LayerCount; layer++ {
		c.layers[layer].mul = unitValueSet()
	}
	c.dirty = true
}

// NewStatDelta creates a delta with neutral multiplicative values.
func NewStatDelta() StatDelta {
	d := StatDelta{}
	d.Mul = unitValueSet()
	return d
}

// AddDelta creates a purely additive delta.
func AddDelta(values ValueSet) StatDelta {
	d := NewStatDelta()
	d.Add = values
	return d
}

// Apply mutates the component according to the provided command. Totals are
// refreshed on the next Resolve.
func (c *Component) Apply(change CommandStatChange) {
	if c == nil {
		return
	}
	c.ensureInit()
	if change.Layer >= LayerCount {
		return
	}
	if change.Remove {
		if c.removeSource(change.Layer, change.Source) {
			c.dirty = true
		}
		return
	}
	if c.applySource(change.Layer, change.Source, change.Delta, change.ExpiresAt) {
		c.dirty = true
	}
}

// HasSource reports whether a modifier with key is active in layer.
func (c *Component) HasSource(layer Layer, key SourceKey) bool {
	if c == nil || c.sources == nil {
		return false
	}
	_, ok := c.sources[layer][key]
	return ok
}

// Resolve drops expired temporary modifiers and folds all layers in
// deterministic order. Pools are clamped to their new maximum.
func (c *Component) Resolve(now uint64) {
	if c == nil {
		return
	}
	c.ensureInit()
	c.cullExpired(now)
	if !c.dirty {
		c.lastResolve = now
		return
	}

	total := c.layers[LayerBase].add
	multiplyValueSet(&total, c.layers[LayerBase].mul)
	applyOverrides(&total, c.layers[LayerBase].override)
	c.base = total

	for layer := LayerLevel; layer < LayerCount; layer++ {
		stack := &c.layers[layer]
		addValueSet(&total, stack.add)
		multiplyValueSet(&total, stack.mul)
		applyOverrides(&total, stack.override)
	}

	c.totals = total
	c.derived = computeDerived(total)
	c.clampPools()
	c.version++
	c.lastResolve = now
	c.dirty = false
}

// Totals returns the cached total stat values.
func (c *Component) Totals() ValueSet {
	return c.totals
}

// GetTotal returns the cached total for a specific stat.
func (c *Component) GetTotal(id StatID) float64 {
	if id >= StatCount {
		return 0
	}
	return c.totals[id]
}

// GetBase returns the record value for a stat before any bonus layer.
func (c *Component) GetBase(id StatID) float64 {
	if id >= StatCount {
		return 0
	}
	return c.base[id]
}

// GetBonus returns the contribution of every layer above base.
func (c *Component) GetBonus(id StatID) float64 {
	return c.GetTotal(id) - c.GetBase(id)
}

// GetDerived returns the cached derived stat value.
func (c *Component) GetDerived(id DerivedID) float64 {
	if id >= DerivedCount {
		return 0
	}
	return c.derived[id]
}

// DerivedValues returns a copy of the derived set.
func (c *Component) DerivedValues() DerivedSet {
	return c.derived
}

// Version returns the component version updated on each effective resolve.
func (c *Component) Version() uint64 {
	return c.version
}

// Current returns the current value of a pool.
func (c *Component) Current(pool PoolID) float64 {
	if pool >= PoolCount {
		return 0
	}
	return c.current[pool]
}

// Max returns the maximum of a pool.
func (c *Component) Max(pool PoolID) float64 {
	return c.GetTotal(poolStat(pool))
}

// SetCurrent stores a pool value clamped to [0, Max].
func (c *Component) SetCurrent(pool PoolID, value float64) {
	if pool >= PoolCount {
		return
	}
	c.current[pool] = clamp(value, 0, c.Max(pool))
}

// Fill restores a pool to its maximum.
func (c *Component) Fill(pool PoolID) {
	c.SetCurrent(pool, c.Max(pool))
}

// Drain empties a pool.
func (c *Component) Drain(pool PoolID) {
	c.SetCurrent(pool, 0)
}

// Spend removes amount from a pool, reporting false without change when the
// pool holds less than amount.
func (c *Component) Spend(pool PoolID, amount float64) bool {
	if pool >= PoolCount || amount < 0 {
		return false
	}
	if c.current[pool] < amount {
		return false
	}
	c.current[pool] -= amount
	return true
}

// Regenerate adds per-second regeneration over the elapsed seconds.
func (c *Component) Regenerate(seconds float64) {
	if seconds <= 0 {
		return
	}
	c.SetCurrent(PoolHealth, c.current[PoolHealth]+c.GetTotal(StatHealthRegen)*seconds)
	c.SetCurrent(PoolMana, c.current[PoolMana]+c.GetTotal(StatManaRegen)*seconds)
}

func poolStat(pool PoolID) StatID {
	if pool == PoolMana {
		return StatMana
	}
	return StatHealth
}

func (c *Component) clampPools() {
	for pool := PoolID(0); pool < PoolCount; pool++ {
		c.current[pool] = clamp(c.current[pool], 0, c.Max(pool))
	}
}

func (c *Component) applySource(layer Layer, key SourceKey, delta StatDelta, expires uint64) bool {
	if c.sources[layer] == nil {
		c.sources[layer] = make(map[SourceKey]*layerSource)
	}
	current := c.sources[layer][key]
	if current != nil {
		if sourcesEqual(current.delta, delta) && current.expiresAt == expires {
			return false
		}
	} else {
		current = &layerSource{}
		c.sources[layer][key] = current
	}
	current.delta = delta
	current.expiresAt = expires
	c.rebuildLayerStack(layer)
	return true
}

func (c *Component) removeSource(layer Layer, key SourceKey) bool {
	entries := c.sources[layer]
	if len(entries) == 0 {
		return false
	}
	if _, ok := entries[key]; !ok {
		return false
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(c.sources, layer)
	}
	c.rebuildLayerStack(layer)
	return true
}

func (c *Component) rebuildLayerStack(layer Layer) {
	stack := &c.layers[layer]
	stack.add = ValueSet{}
	stack.mul = unitValueSet()
	stack.override = OverrideSet{}
	entries := c.sources[layer]
	if len(entries) == 0 {
		return
	}
	keys := make([]SourceKey, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	for _, key := range keys {
		src := entries[key]
		addValueSet(&stack.add, src.delta.Add)
		multiplyValueSet(&stack.mul, src.delta.Mul)
		mergeOverrides(&stack.override, src.delta.Override)
	}
}

func (c *Component) cullExpired(now uint64) {
	entries := c.sources[LayerTemporary]
	if len(entries) == 0 {
		return
	}
	removed := false
	for key, src := range entries {
		if src.expiresAt > 0 && now >= src.expiresAt {
			delete(entries, key)
			removed = true
		}
	}
	if removed {
		if len(entries) == 0 {
			delete(c.sources, LayerTemporary)
		}
		c.rebuildLayerStack(LayerTemporary)
		c.dirty = true
	}
}

func addValueSet(target *ValueSet, other ValueSet) {
	for i := range target {
		target[i] += other[i]
	}
}

func multiplyValueSet(target *ValueSet, other ValueSet) {
	for i := range target {
		target[i] *= other[i]
	}
}

func applyOverrides(target *ValueSet, overrides OverrideSet) {
	for i := range overrides {
		if overrides[i].Active {
			target[i] = overrides[i].Value
		}
	}
}

func mergeOverrides(target *OverrideSet, other OverrideSet) {
	for i := range other {
		if other[i].Active {
			target[i] = other[i]
		}
	}
}

func unitValueSet() ValueSet {
	var vs ValueSet
	for i := range vs {
		vs[i] = 1
	}
	return vs
}

func sourcesEqual(a, b StatDelta) bool {
	for i := range a.Add {
		if math.Abs(a.Add[i]-b.Add[i]) > 1e-9 {
			return false
		}
		if math.Abs(a.Mul[i]-b.Mul[i]) > 1e-9 {
			return false
		}
		if a.Override[i].Active != b.Override[i].Active {
			return false
		}
		if a.Override[i].Active && math.Abs(a.Override[i].Value-b.Override[i].Value) > 1e-9 {
			return false
		}
	}
	return true
}
