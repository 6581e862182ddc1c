package content

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"arena/server/stats"
)

// Point is a planar map coordinate.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// DamageType selects which resistance mitigates a spell.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagic    DamageType = "magic"
	DamageTrue     DamageType = "true"
)

// SpellRecord holds the tunables of a named spell.
type SpellRecord struct {
	Name         string             `yaml:"name" json:"name" jsonschema:"required,minLength=1,description=Unique spell name referenced by units and scripts"`
	Cooldown     float64            `yaml:"cooldown" json:"cooldown" jsonschema:"minimum=0,description=Seconds before the spell can be cast again"`
	ManaCost     float64            `yaml:"manaCost" json:"manaCost" jsonschema:"minimum=0"`
	CastRange    float64            `yaml:"castRange" json:"castRange" jsonschema:"minimum=0,description=Maximum distance to a targeted unit"`
	Range        float64            `yaml:"range" json:"range" jsonschema:"minimum=0,description=Travel distance of a skillshot or reach of a cone"`
	MissileSpeed float64            `yaml:"missileSpeed" json:"missileSpeed" jsonschema:"minimum=0,description=Units per second"`
	LineWidth    float64            `yaml:"lineWidth" json:"lineWidth" jsonschema:"minimum=0"`
	ConeAngle    float64            `yaml:"coneAngle" json:"coneAngle" jsonschema:"minimum=0,maximum=180,description=Half angle in degrees"`
	Damage       float64            `yaml:"damage" json:"damage" jsonschema:"minimum=0"`
	DamageType   DamageType         `yaml:"damageType" json:"damageType" jsonschema:"enum=physical,enum=magic,enum=true"`
	ADRatio      float64            `yaml:"adRatio" json:"adRatio"`
	APRatio      float64            `yaml:"apRatio" json:"apRatio"`
	BuffDuration float64            `yaml:"buffDuration" json:"buffDuration" jsonschema:"minimum=0,description=Seconds a granted buff lasts"`
	BuffStats    map[string]float64 `yaml:"buffStats" json:"buffStats,omitempty" jsonschema:"description=Additive stat bonuses keyed by stat name"`

	hash uint32
}

// Hash identifies the spell on the wire.
func (r SpellRecord) Hash() uint32 {
	return r.hash
}

// ConeHalfAngle returns the cone half angle in radians.
func (r SpellRecord) ConeHalfAngle() float64 {
	return r.ConeAngle * math.Pi / 180
}

// BuffDelta converts BuffStats into an additive stat delta.
func (r SpellRecord) BuffDelta() (stats.StatDelta, error) {
	values, err := stats.ValueSetFromMap(r.BuffStats)
	if err != nil {
		return stats.StatDelta{}, fmt.Errorf("spell %q: %w", r.Name, err)
	}
	return stats.AddDelta(values), nil
}

// UnitKind classifies unit records.
type UnitKind string

const (
	UnitHero    UnitKind = "hero"
	UnitMinion  UnitKind = "minion"
	UnitTurret  UnitKind = "turret"
	UnitNeutral UnitKind = "neutral"
)

// UnitRecord holds the base statistics of a named unit.
type UnitRecord struct {
	Name             string             `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Kind             UnitKind           `yaml:"kind" json:"kind" jsonschema:"required,enum=hero,enum=minion,enum=turret,enum=neutral"`
	Model            string             `yaml:"model" json:"model,omitempty"`
	Radius           float64            `yaml:"radius" json:"radius" jsonschema:"minimum=0"`
	AcquisitionRange float64            `yaml:"acquisitionRange" json:"acquisitionRange" jsonschema:"minimum=0,description=Distance at which automatic attacks pick a target"`
	ExperienceGiven  float64            `yaml:"experienceGiven" json:"experienceGiven" jsonschema:"minimum=0"`
	Stats            map[string]float64 `yaml:"stats" json:"stats" jsonschema:"description=Base stats keyed by stat name"`
	Growth           map[string]float64 `yaml:"growth" json:"growth,omitempty" jsonschema:"description=Per-level stat growth keyed by stat name"`
	Spells           []string           `yaml:"spells" json:"spells,omitempty" jsonschema:"description=Spell names by slot"`

	base   stats.ValueSet
	growth stats.ValueSet
}

// Base returns the parsed base stats.
func (r UnitRecord) Base() stats.ValueSet {
	return r.base
}

// GrowthValues returns the parsed per-level growth.
func (r UnitRecord) GrowthValues() stats.ValueSet {
	return r.growth
}

// TurretPlacement positions one turret on a map.
type TurretPlacement struct {
	Name     string `yaml:"name" json:"name" jsonschema:"required"`
	Unit     string `yaml:"unit" json:"unit" jsonschema:"required"`
	Team     string `yaml:"team" json:"team" jsonschema:"required,enum=blue,enum=purple"`
	Position Point  `yaml:"position" json:"position"`
}

// Lane is a minion path from the blue base to the purple base. Purple
// minions walk it in reverse.
type Lane struct {
	Name      string  `yaml:"name" json:"name" jsonschema:"required"`
	Waypoints []Point `yaml:"waypoints" json:"waypoints" jsonschema:"minItems=2"`
}

// WaveConfig schedules minion waves.
type WaveConfig struct {
	Unit       string  `yaml:"unit" json:"unit"`
	FirstAt    float64 `yaml:"firstAt" json:"firstAt" jsonschema:"minimum=0,description=Game seconds of the first wave"`
	Interval   float64 `yaml:"interval" json:"interval" jsonschema:"minimum=0"`
	Size       int     `yaml:"size" json:"size" jsonschema:"minimum=0"`
	AnnounceAt float64 `yaml:"announceAt" json:"announceAt" jsonschema:"minimum=0,description=Game seconds of the minions-spawn-soon announcement"`
}

// Camp is a neutral unit spawn point.
type Camp struct {
	Unit     string  `yaml:"unit" json:"unit" jsonschema:"required"`
	Position Point   `yaml:"position" json:"position"`
	Respawn  float64 `yaml:"respawn" json:"respawn" jsonschema:"minimum=0,description=Seconds before the camp respawns"`
}

// DeathConfig tunes hero respawn timers.
type DeathConfig struct {
	BaseSeconds     float64 `yaml:"baseSeconds" json:"baseSeconds" jsonschema:"minimum=0"`
	PerLevelSeconds float64 `yaml:"perLevelSeconds" json:"perLevelSeconds" jsonschema:"minimum=0"`
}

// MapRecord describes one arena layout.
type MapRecord struct {
	ID          int32             `yaml:"id" json:"id" jsonschema:"required"`
	Name        string            `yaml:"name" json:"name"`
	Width       float64           `yaml:"width" json:"width" jsonschema:"minimum=0"`
	Height      float64           `yaml:"height" json:"height" jsonschema:"minimum=0"`
	BlueSpawn   Point             `yaml:"blueSpawn" json:"blueSpawn"`
	PurpleSpawn Point             `yaml:"purpleSpawn" json:"purpleSpawn"`
	Turrets     []TurretPlacement `yaml:"turrets" json:"turrets,omitempty"`
	Lanes       []Lane            `yaml:"lanes" json:"lanes,omitempty"`
	Waves       WaveConfig        `yaml:"waves" json:"waves"`
	Camps       []Camp            `yaml:"camps" json:"camps,omitempty"`
	Death       DeathConfig       `yaml:"death" json:"death"`
}

// MiddleOfMap returns the map centre.
func (m MapRecord) MiddleOfMap() Point {
	return Point{X: m.Width / 2, Y: m.Height / 2}
}

// Document is the on-disk content format. Files may carry any subset.
type Document struct {
	Spells     []SpellRecord `yaml:"spells" json:"spells,omitempty"`
	Units      []UnitRecord  `yaml:"units" json:"units,omitempty"`
	Maps       []MapRecord   `yaml:"maps" json:"maps,omitempty"`
	Experience []float64     `yaml:"experience" json:"experience,omitempty" jsonschema:"description=Cumulative experience required for each level above one"`
}

func (r *SpellRecord) prepare() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("spell missing name")
	}
	switch r.DamageType {
	case "":
		r.DamageType = DamageMagic
	case DamagePhysical, DamageMagic, DamageTrue:
	default:
		return fmt.Errorf("spell %q: unknown damage type %q", r.Name, r.DamageType)
	}
	if _, err := r.BuffDelta(); err != nil {
		return err
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(r.Name)))
	r.hash = h.Sum32()
	return nil
}

func (r *UnitRecord) prepare() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("unit missing name")
	}
	switch r.Kind {
	case UnitHero, UnitMinion, UnitTurret, UnitNeutral:
	default:
		return fmt.Errorf("unit %q: unknown kind %q", r.Name, r.Kind)
	}
	base, err := stats.ValueSetFromMap(r.Stats)
	if err != nil {
		return fmt.Errorf("unit %q stats: %w", r.Name, err)
	}
	growth, err := stats.ValueSetFromMap(r.Growth)
	if err != nil {
		return fmt.Errorf("unit %q growth: %w", r.Name, err)
	}
	r.base = base
	r.growth = growth
	if r.Model == "" {
		r.Model = r.Name
	}
	return nil
}
