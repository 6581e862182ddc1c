package world

import (
	"errors"
	"fmt"
	"time"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/logging"
)

// ErrUnitUpdateFault marks a recovered failure inside one unit's update.
var ErrUnitUpdateFault = errors.New("unit update fault")

// UnitFault carries the unit and the recovered panic value.
type UnitFault struct {
	UnitID netid.ID
	Value  any
}

func (f *UnitFault) Error() string {
	return fmt.Sprintf("%s: unit %d: %v", ErrUnitUpdateFault, f.UnitID, f.Value)
}

func (f *UnitFault) Unwrap() error {
	return ErrUnitUpdateFault
}

// Client is the outbound half of a connected player.
type Client interface {
	Send(msg proto.Message, ch proto.Channel, flags proto.Flags)
}

// Host is the match that owns the units. All methods are called from the
// simulation goroutine.
type Host interface {
	NextNetID() netid.ID
	Tick() uint64
	GameTime() time.Duration
	Content() *content.Registry
	Arena() *Arena
	Send(msg proto.Message, ch proto.Channel, flags proto.Flags)
	SendTeam(team TeamID, msg proto.Message, ch proto.Channel, flags proto.Flags)
	AddUnit(u *Unit, team TeamID) error
	DestroyUnit(u *Unit, notify bool)
	Publisher() logging.Publisher
	ReportFault(err error)
}

// UpdateUnit advances u by delta, converting a panic into a *UnitFault.
func UpdateUnit(u *Unit, delta time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnitFault{UnitID: u.ID, Value: r}
		}
	}()
	u.Update(delta)
	return nil
}

func tickOf(h Host) int32 {
	return int32(h.Tick())
}

func gameMillis(h Host) uint64 {
	ms := h.GameTime().Milliseconds()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}
