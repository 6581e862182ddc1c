package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrMissingRecord is returned when a named record is not loaded. It fails
// the lookup that triggered it, never the simulation.
var ErrMissingRecord = errors.New("content: missing record")

//go:embed default.yaml
var defaultContent []byte

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

type bytesSource struct {
	name string
	data []byte
}

func (b bytesSource) Load() ([]byte, error) {
	return b.data, nil
}

func (b bytesSource) Path() string {
	return b.name
}

// Registry merges content sources into name-indexed lookup tables. Later
// sources override records of the same name. Call Reload to pick up on-disk
// changes.
type Registry struct {
	mu         sync.RWMutex
	sources    []source
	spells     map[string]SpellRecord
	units      map[string]UnitRecord
	maps       map[int32]MapRecord
	experience []float64
}

// Load constructs a Registry from the embedded defaults overlaid with the
// provided YAML files. Missing files are skipped.
func Load(paths ...string) (*Registry, error) {
	sources := []source{bytesSource{name: "embedded:default.yaml", data: defaultContent}}
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return newRegistry(sources...)
}

// Parse constructs a Registry from in-memory YAML documents only.
func Parse(documents ...[]byte) (*Registry, error) {
	sources := make([]source, 0, len(documents))
	for i, data := range documents {
		sources = append(sources, bytesSource{name: fmt.Sprintf("document[%d]", i), data: data})
	}
	return newRegistry(sources...)
}

func newRegistry(sources ...source) (*Registry, error) {
	r := &Registry{sources: append([]source(nil), sources...)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses every source and swaps the tables atomically.
func (r *Registry) Reload() error {
	if r == nil {
		return nil
	}
	spells := make(map[string]SpellRecord)
	units := make(map[string]UnitRecord)
	maps := make(map[int32]MapRecord)
	var experience []float64

	for _, src := range r.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("content: failed loading %s: %w", src.Path(), err)
		}
		doc, err := decodeDocument(data)
		if err != nil {
			return fmt.Errorf("content: failed parsing %s: %w", src.Path(), err)
		}
		for _, spell := range doc.Spells {
			if err := spell.prepare(); err != nil {
				return fmt.Errorf("content: %s: %w", src.Path(), err)
			}
			spells[spell.Name] = spell
		}
		for _, unit := range doc.Units {
			if err := unit.prepare(); err != nil {
				return fmt.Errorf("content: %s: %w", src.Path(), err)
			}
			units[unit.Name] = unit
		}
		for _, m := range doc.Maps {
			maps[m.ID] = m
		}
		if len(doc.Experience) > 0 {
			experience = append([]float64(nil), doc.Experience...)
		}
	}

	if err := validateReferences(spells, units, maps); err != nil {
		return err
	}
	if !sort.Float64sAreSorted(experience) {
		return fmt.Errorf("content: experience curve must be non-decreasing")
	}

	r.mu.Lock()
	r.spells = spells
	r.units = units
	r.maps = maps
	r.experience = experience
	r.mu.Unlock()
	return nil
}

func decodeDocument(data []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	return doc, nil
}

func validateReferences(spells map[string]SpellRecord, units map[string]UnitRecord, maps map[int32]MapRecord) error {
	for _, unit := range units {
		for _, spell := range unit.Spells {
			if _, ok := spells[spell]; !ok {
				return fmt.Errorf("content: unit %q references spell %q: %w", unit.Name, spell, ErrMissingRecord)
			}
		}
	}
	for _, m := range maps {
		for _, turret := range m.Turrets {
			if _, ok := units[turret.Unit]; !ok {
				return fmt.Errorf("content: map %d turret %q references unit %q: %w", m.ID, turret.Name, turret.Unit, ErrMissingRecord)
			}
		}
		for _, camp := range m.Camps {
			if _, ok := units[camp.Unit]; !ok {
				return fmt.Errorf("content: map %d camp references unit %q: %w", m.ID, camp.Unit, ErrMissingRecord)
			}
		}
		if m.Waves.Unit != "" {
			if _, ok := units[m.Waves.Unit]; !ok {
				return fmt.Errorf("content: map %d waves reference unit %q: %w", m.ID, m.Waves.Unit, ErrMissingRecord)
			}
		}
	}
	return nil
}

// Spell returns the named spell record.
func (r *Registry) Spell(name string) (SpellRecord, error) {
	if r == nil {
		return SpellRecord{}, fmt.Errorf("spell %q: %w", name, ErrMissingRecord)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.spells[name]
	if !ok {
		return SpellRecord{}, fmt.Errorf("spell %q: %w", name, ErrMissingRecord)
	}
	return record, nil
}

// Unit returns the named unit record.
func (r *Registry) Unit(name string) (UnitRecord, error) {
	if r == nil {
		return UnitRecord{}, fmt.Errorf("unit %q: %w", name, ErrMissingRecord)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.units[name]
	if !ok {
		return UnitRecord{}, fmt.Errorf("unit %q: %w", name, ErrMissingRecord)
	}
	return record, nil
}

// Map returns the map record with the given id.
func (r *Registry) Map(id int32) (MapRecord, error) {
	if r == nil {
		return MapRecord{}, fmt.Errorf("map %d: %w", id, ErrMissingRecord)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.maps[id]
	if !ok {
		return MapRecord{}, fmt.Errorf("map %d: %w", id, ErrMissingRecord)
	}
	return record, nil
}

// MaxLevel reports the highest reachable level.
func (r *Registry) MaxLevel() int {
	if r == nil {
		return 1
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.experience) + 1
}

// LevelFor converts cumulative experience into a level.
func (r *Registry) LevelFor(experience float64) int {
	if r == nil {
		return 1
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	level := 1
	for _, threshold := range r.experience {
		if experience < threshold {
			break
		}
		level++
	}
	return level
}

// SpellNames lists loaded spells in name order.
func (r *Registry) SpellNames() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.spells))
	for name := range r.spells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
