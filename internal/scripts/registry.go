package scripts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"arena/server/internal/combat"
	"arena/server/internal/content"
)

var (
	ErrEmptyName       = errors.New("script name must not be empty")
	ErrNilScript       = errors.New("script must not be nil")
	ErrDuplicateName   = errors.New("script already registered")
	ErrUnscriptedSpell = errors.New("spell has no script")
)

// Registry maps spell names to scripts. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]combat.Script
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scripts: make(map[string]combat.Script)}
}

// Default returns a registry holding every built-in definition.
func Default() *Registry {
	r := NewRegistry()
	for _, def := range BuiltInDefinitions() {
		if err := r.Register(def.Name, FromDefinition(def)); err != nil {
			panic(fmt.Sprintf("scripts: built-in %s: %v", def.Name, err))
		}
	}
	return r
}

// Register binds script to name. Names are unique.
func (r *Registry) Register(name string, script combat.Script) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if script == nil {
		return fmt.Errorf("%s: %w", name, ErrNilScript)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.scripts[name]; exists {
		return fmt.Errorf("%s: %w", name, ErrDuplicateName)
	}
	r.scripts[name] = script
	return nil
}

// Script implements combat.ScriptRegistry.
func (r *Registry) Script(name string) (combat.Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	script, ok := r.scripts[name]
	return script, ok
}

// Names lists the registered spells in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports every spell in records that has no script.
func (r *Registry) Validate(records *content.Registry) error {
	var errs []error
	for _, name := range records.SpellNames() {
		if _, ok := r.Script(name); !ok {
			errs = append(errs, fmt.Errorf("%s: %w", name, ErrUnscriptedSpell))
		}
	}
	return errors.Join(errs...)
}
