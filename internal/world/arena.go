package world

import (
	"fmt"
	"math"
	"slices"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
)

// Arena is the map: it holds every unit in play, answers spatial queries and
// runs the map-owned spawners.
type Arena struct {
	Record content.MapRecord

	host  Host
	units map[netid.ID]*Unit
	waves waveSpawner
	camps []*campState
}

// NewArena constructs an empty map for record.
func NewArena(record content.MapRecord, host Host) *Arena {
	return &Arena{
		Record: record,
		host:   host,
		units:  make(map[netid.ID]*Unit),
		waves:  waveSpawner{config: record.Waves},
	}
}

// Add places u on the map.
func (a *Arena) Add(u *Unit) {
	a.units[u.ID] = u
}

// Remove takes the unit off the map.
func (a *Arena) Remove(id netid.ID) {
	delete(a.units, id)
}

// Unit looks up a unit on the map.
func (a *Arena) Unit(id netid.ID) (*Unit, bool) {
	u, ok := a.units[id]
	return u, ok
}

// Len reports the number of units on the map.
func (a *Arena) Len() int {
	return len(a.units)
}

// Units returns every unit on the map ordered by id.
func (a *Arena) Units() []*Unit {
	out := make([]*Unit, 0, len(a.units))
	for _, u := range a.units {
		out = append(out, u)
	}
	slices.SortFunc(out, compareUnits)
	return out
}

// UnitsInRange returns the units whose bodies overlap the circle, ordered by id.
func (a *Arena) UnitsInRange(center Vec2, radius float64) []*Unit {
	var out []*Unit
	for _, u := range a.units {
		if u.Position.Distance(center) <= radius+u.Radius {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, compareUnits)
	return out
}

// SpawnFor returns the fountain of a side.
func (a *Arena) SpawnFor(team TeamID) Vec2 {
	switch team {
	case TeamBlue:
		return VecFromPoint(a.Record.BlueSpawn)
	case TeamPurple:
		return VecFromPoint(a.Record.PurpleSpawn)
	default:
		return VecFromPoint(a.Record.MiddleOfMap())
	}
}

// DeathDuration returns the respawn timer of a hero at level.
func (a *Arena) DeathDuration(level int) time.Duration {
	seconds := a.Record.Death.BaseSeconds + a.Record.Death.PerLevelSeconds*float64(max(level-1, 0))
	return time.Duration(seconds * float64(time.Second))
}

// OnSpawn places the map's turrets and neutral camps.
func (a *Arena) OnSpawn() error {
	registry := a.host.Content()
	for _, placement := range a.Record.Turrets {
		record, err := registry.Unit(placement.Unit)
		if err != nil {
			return fmt.Errorf("turret %s: %w", placement.Name, err)
		}
		team, err := ParseTeamID(placement.Team)
		if err != nil {
			return fmt.Errorf("turret %s: %w", placement.Name, err)
		}
		turret := NewTurret(a.host, placement.Name, record, VecFromPoint(placement.Position))
		if err := a.host.AddUnit(turret, team); err != nil {
			return err
		}
	}
	for _, camp := range a.Record.Camps {
		state := &campState{config: camp}
		if err := state.spawn(a.host); err != nil {
			return err
		}
		a.camps = append(a.camps, state)
	}
	return nil
}

// Turrets returns the turrets on the map ordered by id.
func (a *Arena) Turrets() []*Unit {
	var out []*Unit
	for _, u := range a.Units() {
		if u.Kind == KindTurret {
			out = append(out, u)
		}
	}
	return out
}

// OnStart greets the players.
func (a *Arena) OnStart() {
	a.Announce(proto.AnnounceWelcome)
}

// Announce broadcasts a map-wide announcement.
func (a *Arena) Announce(event proto.AnnounceEvent) {
	a.host.Send(&proto.Announce{MapID: a.Record.ID, Event: event}, proto.ChannelS2C, proto.FlagReliable)
}

// Update advances the units that belong to no team, then the spawners. A
// failing unit is reported to the host and the pass continues.
func (a *Arena) Update(delta time.Duration) {
	for _, u := range a.Units() {
		if u.team != nil {
			continue
		}
		if _, ok := a.units[u.ID]; !ok {
			continue
		}
		if err := UpdateUnit(u, delta); err != nil {
			a.host.ReportFault(err)
		}
	}
	now := a.host.GameTime()
	if err := a.waves.update(a, now); err != nil {
		a.host.ReportFault(err)
	}
	for _, camp := range a.camps {
		if err := camp.update(a.host, now); err != nil {
			a.host.ReportFault(err)
		}
	}
}

type waveSpawner struct {
	config    content.WaveConfig
	announced bool
	spawned   int
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (w *waveSpawner) update(a *Arena, now time.Duration) error {
	cfg := w.config
	if cfg.Unit == "" || cfg.Size <= 0 {
		return nil
	}
	if !w.announced && now >= seconds(cfg.AnnounceAt) {
		w.announced = true
		a.Announce(proto.AnnounceMinionsSpawnSoon)
	}
	if now < seconds(cfg.FirstAt) {
		return nil
	}
	due := 1
	if cfg.Interval > 0 {
		due += int(math.Floor((now - seconds(cfg.FirstAt)).Seconds() / cfg.Interval))
	}
	for w.spawned < due {
		// A wave counts as spawned even when it fails part way, so the
		// units already added are not added again next tick.
		first := w.spawned == 0
		w.spawned++
		if err := w.spawnWave(a); err != nil {
			return err
		}
		if first {
			a.Announce(proto.AnnounceMinionsSpawned)
		}
		if cfg.Interval <= 0 {
			break
		}
	}
	return nil
}

func (w *waveSpawner) spawnWave(a *Arena) error {
	record, err := a.host.Content().Unit(w.config.Unit)
	if err != nil {
		return fmt.Errorf("minion wave: %w", err)
	}
	for _, lane := range a.Record.Lanes {
		blue := make([]Vec2, len(lane.Waypoints))
		for i, p := range lane.Waypoints {
			blue[i] = VecFromPoint(p)
		}
		purple := slices.Clone(blue)
		slices.Reverse(purple)
		for i := 0; i < w.config.Size; i++ {
			if err := a.host.AddUnit(NewMinion(a.host, record, blue), TeamBlue); err != nil {
				return err
			}
			if err := a.host.AddUnit(NewMinion(a.host, record, purple), TeamPurple); err != nil {
				return err
			}
		}
	}
	return nil
}

type campState struct {
	config    content.Camp
	unit      *Unit
	respawnAt time.Duration
}

func (c *campState) spawn(host Host) error {
	record, err := host.Content().Unit(c.config.Unit)
	if err != nil {
		return fmt.Errorf("camp: %w", err)
	}
	u := NewNeutral(host, record, VecFromPoint(c.config.Position))
	if err := host.AddUnit(u, TeamNeutral); err != nil {
		return err
	}
	c.unit = u
	return nil
}

func (c *campState) update(host Host, now time.Duration) error {
	if c.unit != nil {
		if c.unit.alive {
			return nil
		}
		c.unit = nil
		c.respawnAt = now + seconds(c.config.Respawn)
	}
	if now < c.respawnAt {
		return nil
	}
	return c.spawn(host)
}
