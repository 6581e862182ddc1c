package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gopkg.in/yaml.v3"
)

// RosterEntry pre-assigns a connecting player to a hero.
type RosterEntry struct {
	Token     string `yaml:"token" json:"token,omitempty" jsonschema:"description=Secret presented on connect; generated when empty"`
	Name      string `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Champion  string `yaml:"champion" json:"champion" jsonschema:"required,description=Hero unit record name"`
	Team      string `yaml:"team" json:"team" jsonschema:"required,enum=blue,enum=purple"`
	SkinID    int32  `yaml:"skinId" json:"skinId"`
	Summoner1 uint32 `yaml:"summoner1" json:"summoner1"`
	Summoner2 uint32 `yaml:"summoner2" json:"summoner2"`
}

// Roster is the on-disk roster format.
type Roster struct {
	Players []RosterEntry `yaml:"players" json:"players"`
}

// LoadRoster reads and validates a roster file against reg.
func LoadRoster(path string, reg *Registry) ([]RosterEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: failed loading roster %s: %w", path, err)
	}
	return ParseRoster(data, reg)
}

// ParseRoster decodes roster YAML, fills missing tokens and validates
// champions against reg.
func ParseRoster(data []byte, reg *Registry) ([]RosterEntry, error) {
	var roster Roster
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("content: failed parsing roster: %w", err)
	}

	tokens := make(map[string]struct{}, len(roster.Players))
	for i := range roster.Players {
		entry := &roster.Players[i]
		entry.Name = strings.TrimSpace(entry.Name)
		if entry.Name == "" {
			return nil, fmt.Errorf("content: roster entry %d missing name", i)
		}
		entry.Team = strings.ToLower(strings.TrimSpace(entry.Team))
		if entry.Team != "blue" && entry.Team != "purple" {
			return nil, fmt.Errorf("content: roster entry %q has unknown team %q", entry.Name, entry.Team)
		}
		unit, err := reg.Unit(entry.Champion)
		if err != nil {
			return nil, fmt.Errorf("content: roster entry %q: %w", entry.Name, err)
		}
		if unit.Kind != UnitHero {
			return nil, fmt.Errorf("content: roster entry %q champion %q is a %s", entry.Name, entry.Champion, unit.Kind)
		}
		if entry.Token == "" {
			token, err := gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("content: generate token for %q: %w", entry.Name, err)
			}
			entry.Token = token
		}
		if _, dup := tokens[entry.Token]; dup {
			return nil, fmt.Errorf("content: duplicate roster token for %q", entry.Name)
		}
		tokens[entry.Token] = struct{}{}
	}
	return roster.Players, nil
}
