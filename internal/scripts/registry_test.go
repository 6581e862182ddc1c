package scripts

import (
	"errors"
	"testing"

	"arena/server/internal/combat"
	"arena/server/internal/content"
)

func TestDefaultCoversShippedSpells(t *testing.T) {
	records, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	reg := Default()
	if err := reg.Validate(records); err != nil {
		t.Fatalf("expected every spell scripted: %v", err)
	}
	if got, want := len(reg.Names()), len(BuiltInDefinitions()); got != want {
		t.Fatalf("expected %d scripts, got %d", want, got)
	}
}

func TestValidateReportsUnscriptedSpells(t *testing.T) {
	records, err := content.Parse([]byte("spells:\n  - {name: Alpha}\n  - {name: Beta}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg := NewRegistry()
	if err := reg.Register("Alpha", FromDefinition(Definition{Name: "Alpha"})); err != nil {
		t.Fatalf("register: %v", err)
	}
	err = reg.Validate(records)
	if !errors.Is(err, ErrUnscriptedSpell) {
		t.Fatalf("expected ErrUnscriptedSpell, got %v", err)
	}
}

func TestRegisterRejectsInvalidEntries(t *testing.T) {
	reg := NewRegistry()
	script := FromDefinition(Definition{Name: "Alpha"})
	if err := reg.Register("Alpha", script); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name   string
		spell  string
		script combat.Script
		want   error
	}{
		{name: "empty name", spell: "  ", script: script, want: ErrEmptyName},
		{name: "nil script", spell: "Beta", script: nil, want: ErrNilScript},
		{name: "duplicate", spell: "Alpha", script: script, want: ErrDuplicateName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := reg.Register(tc.spell, tc.script); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBuiltInPolicies(t *testing.T) {
	reg := Default()
	cases := []struct {
		spell        string
		destroyOnHit bool
		flags        combat.AffectFlags
	}{
		{SpellMysticShot, true, combat.AffectMinions | combat.AffectEnemies},
		{SpellEssenceFlux, false, combat.AffectHeroes | combat.AffectEnemies},
		{SpellMoltenShield, false, combat.AffectFriends | combat.AffectHeroes},
	}
	for _, tc := range cases {
		t.Run(tc.spell, func(t *testing.T) {
			script, ok := reg.Script(tc.spell)
			if !ok {
				t.Fatalf("missing script")
			}
			if script.DestroyProjectileOnHit() != tc.destroyOnHit {
				t.Fatalf("destroy on hit = %v", script.DestroyProjectileOnHit())
			}
			if !script.Flags().Has(tc.flags) {
				t.Fatalf("flags %s lack %s", script.Flags(), tc.flags)
			}
		})
	}
	if _, ok := reg.Script("Unknown"); ok {
		t.Fatalf("unexpected script for unknown spell")
	}
}
