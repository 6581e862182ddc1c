package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	spell, err := reg.Spell("MysticShot")
	if err != nil {
		t.Fatalf("expected MysticShot: %v", err)
	}
	if spell.MissileSpeed != 2000 || spell.DamageType != DamagePhysical {
		t.Fatalf("unexpected spell record %+v", spell)
	}
	if spell.Hash() == 0 {
		t.Fatalf("expected spell hash to be derived")
	}
	hero, err := reg.Unit("Ezreal")
	if err != nil {
		t.Fatalf("expected Ezreal: %v", err)
	}
	if hero.Kind != UnitHero || len(hero.Spells) != 4 || hero.Model != "Ezreal" {
		t.Fatalf("unexpected unit record %+v", hero)
	}
	m, err := reg.Map(1)
	if err != nil {
		t.Fatalf("expected map 1: %v", err)
	}
	if len(m.Turrets) != 2 || len(m.Lanes) != 1 {
		t.Fatalf("unexpected map record %+v", m)
	}
	if reg.MaxLevel() != 18 {
		t.Fatalf("expected max level 18, got %d", reg.MaxLevel())
	}
}

func TestMissingRecordsAreTyped(t *testing.T) {
	reg, err := Parse([]byte("spells: []"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := reg.Spell("Nope"); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}
	if _, err := reg.Unit("Nope"); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}
	if _, err := reg.Map(9); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}
}

func TestLaterSourcesOverride(t *testing.T) {
	base := []byte(`
spells:
  - {name: Bolt, damage: 10}
`)
	overlay := []byte(`
spells:
  - {name: Bolt, damage: 25, damageType: "true"}
`)
	reg, err := Parse(base, overlay)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spell, err := reg.Spell("Bolt")
	if err != nil {
		t.Fatalf("spell: %v", err)
	}
	if spell.Damage != 25 || spell.DamageType != DamageTrue {
		t.Fatalf("expected overlay to win, got %+v", spell)
	}
}

func TestParseRejectsInvalidContent(t *testing.T) {
	cases := map[string]string{
		"unknown field":      "spells:\n  - {name: A, colour: red}\n",
		"unknown stat":       "units:\n  - {name: A, kind: hero, stats: {luck: 3}}\n",
		"unknown kind":       "units:\n  - {name: A, kind: dragon}\n",
		"dangling spell":     "units:\n  - {name: A, kind: hero, spells: [Missing]}\n",
		"unsorted curve":     "experience: [10, 5]\n",
		"bad damage type":    "spells:\n  - {name: A, damageType: fire}\n",
		"dangling turret":    "maps:\n  - {id: 1, turrets: [{name: T, unit: Ghost, team: blue}]}\n",
		"missing spell name": "spells:\n  - {damage: 1}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	reg, err := Parse([]byte("experience: [100, 250, 450]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cases := []struct {
		exp  float64
		want int
	}{
		{0, 1}, {99, 1}, {100, 2}, {300, 3}, {450, 4}, {10000, 4},
	}
	for _, tc := range cases {
		if got := reg.LevelFor(tc.exp); got != tc.want {
			t.Fatalf("LevelFor(%v) = %d, want %d", tc.exp, got, tc.want)
		}
	}
}

func TestReloadPicksUpFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	if err := os.WriteFile(path, []byte("spells:\n  - {name: Custom, damage: 1}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err := Load(path, filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := reg.Spell("Custom"); err != nil {
		t.Fatalf("expected overlay spell: %v", err)
	}
	if err := os.WriteFile(path, []byte("spells:\n  - {name: Custom, damage: 7}\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := reg.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	spell, _ := reg.Spell("Custom")
	if spell.Damage != 7 {
		t.Fatalf("expected reloaded damage 7, got %v", spell.Damage)
	}
	if _, err := reg.Spell("MysticShot"); err != nil {
		t.Fatalf("expected embedded defaults to remain: %v", err)
	}
}

func TestParseRoster(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	roster, err := ParseRoster([]byte(`
players:
  - {name: alice, champion: Ezreal, team: Blue, token: secret}
  - {name: bob, champion: Annie, team: purple}
`), reg)
	if err != nil {
		t.Fatalf("parse roster: %v", err)
	}
	if len(roster) != 2 || roster[0].Team != "blue" || roster[0].Token != "secret" {
		t.Fatalf("unexpected roster %+v", roster)
	}
	if roster[1].Token == "" {
		t.Fatalf("expected generated token")
	}

	if _, err := ParseRoster([]byte("players:\n  - {name: x, champion: MeleeMinion, team: blue}\n"), reg); err == nil {
		t.Fatalf("expected non-hero champion to be rejected")
	}
	if _, err := ParseRoster([]byte("players:\n  - {name: x, champion: Nobody, team: blue}\n"), reg); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}
}

func TestSchemaDescribesDocument(t *testing.T) {
	schema := Schema()
	if schema == nil || schema.Title != "Arena Content" {
		t.Fatalf("unexpected schema %+v", schema)
	}
	if RosterSchema() == nil {
		t.Fatalf("expected roster schema")
	}
}
