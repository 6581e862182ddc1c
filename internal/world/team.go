package world

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
)

var (
	// ErrNoTeam is returned when removing a unit that belongs to no team.
	ErrNoTeam = errors.New("unit has no team")
	// ErrUnknownTeamName is returned for team names other than blue or purple.
	ErrUnknownTeamName = errors.New("unknown team")
)

// TeamID identifies a side.
type TeamID uint16

const (
	TeamBlue    TeamID = 100
	TeamPurple  TeamID = 200
	TeamNeutral TeamID = 300
)

func (t TeamID) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamPurple:
		return "purple"
	case TeamNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("team(%d)", uint16(t))
	}
}

// ParseTeamID maps a content team name onto a playable side.
func ParseTeamID(name string) (TeamID, error) {
	switch name {
	case "blue":
		return TeamBlue, nil
	case "purple":
		return TeamPurple, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownTeamName, name)
	}
}

// Opponent returns the other playable side.
func (t TeamID) Opponent() TeamID {
	switch t {
	case TeamBlue:
		return TeamPurple
	case TeamPurple:
		return TeamBlue
	default:
		return TeamNeutral
	}
}

// Team owns the units of one side, keyed by network id.
type Team struct {
	ID TeamID

	host  Host
	units map[netid.ID]*Unit
}

// NewTeam constructs an empty team.
func NewTeam(id TeamID, host Host) *Team {
	return &Team{ID: id, host: host, units: make(map[netid.ID]*Unit)}
}

// Attach moves u into the team, detaching it from its previous team first.
func (t *Team) Attach(u *Unit) {
	if u.team == t {
		return
	}
	if u.team != nil {
		delete(u.team.units, u.ID)
	}
	t.units[u.ID] = u
	u.team = t
}

// Detach removes u from the team.
func (t *Team) Detach(u *Unit) error {
	if u.team != t {
		return fmt.Errorf("unit %d not on team %s: %w", u.ID, t.ID, ErrNoTeam)
	}
	delete(t.units, u.ID)
	u.team = nil
	return nil
}

// Unit looks up a member by id.
func (t *Team) Unit(id netid.ID) (*Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// Len reports the number of members.
func (t *Team) Len() int {
	return len(t.units)
}

// Units returns the members ordered by id.
func (t *Team) Units() []*Unit {
	out := make([]*Unit, 0, len(t.units))
	for _, u := range t.units {
		out = append(out, u)
	}
	slices.SortFunc(out, compareUnits)
	return out
}

// Heroes returns the hero members ordered by id.
func (t *Team) Heroes() []*Unit {
	var out []*Unit
	for _, u := range t.units {
		if u.Kind == KindHero {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, compareUnits)
	return out
}

// Send delivers msg to every connected hero on the team, as enumerated at
// call time.
func (t *Team) Send(msg proto.Message, ch proto.Channel, flags proto.Flags) {
	for _, u := range t.units {
		u.SendToClient(msg, ch, flags)
	}
}

// Update advances every member in id order. Members removed by an earlier
// update in the same pass are skipped. A failing member is reported to the
// host and the pass continues.
func (t *Team) Update(delta time.Duration) {
	for _, id := range t.ids() {
		u, ok := t.units[id]
		if !ok {
			continue
		}
		if err := UpdateUnit(u, delta); err != nil && t.host != nil {
			t.host.ReportFault(err)
		}
	}
}

func (t *Team) ids() []netid.ID {
	ids := make([]netid.ID, 0, len(t.units))
	for id := range t.units {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func compareUnits(a, b *Unit) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
