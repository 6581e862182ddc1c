package intake

import (
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/internal/sim"
	"arena/server/internal/telemetry"
	"arena/server/internal/world"
)

const (
	// RejectUnknownActor marks a message from a connection bound to no hero.
	RejectUnknownActor = "unknown_actor"
	// RejectInvalidCommand marks a decoded message the server does not act on.
	RejectInvalidCommand = "invalid_command"
	// RejectQueueClosed marks a message that could not be staged.
	RejectQueueClosed = "queue_closed"
)

// Game is the part of a match the intake drives. Every method except Invoke
// runs on the simulation goroutine.
type Game interface {
	Invoke(sim.Action) bool
	ClientReady(hero *world.Unit) error
	CharLoaded(hero *world.Unit)
	Move(hero *world.Unit, moveType proto.MoveType, position world.Vec2, targetID netid.ID)
	CastSpell(hero *world.Unit, slot int, position, end world.Vec2, targetID netid.ID) error
	Ping(hero *world.Unit, position world.Vec2, targetID netid.ID, kind proto.PingType)
	SetAutoAttack(hero *world.Unit, enabled bool)
	ReportFault(err error)
}

type CommandContext struct {
	Game   Game
	Logger telemetry.Logger
}

// StageClientCommand validates a decoded client message and queues the
// matching order for the next tick. It returns false and a reject reason when
// nothing was queued.
func StageClientCommand(ctx CommandContext, hero *world.Unit, msg proto.Message) (bool, string) {
	if hero == nil || hero.Hero == nil {
		return false, RejectUnknownActor
	}

	action := commandAction(ctx, hero, msg)
	if action == nil {
		return false, RejectInvalidCommand
	}
	if ctx.Game == nil || !ctx.Game.Invoke(action) {
		return false, RejectQueueClosed
	}
	return true, ""
}

func commandAction(ctx CommandContext, hero *world.Unit, msg proto.Message) sim.Action {
	g := ctx.Game
	switch m := msg.(type) {
	case *proto.ClientReady:
		return func() {
			if err := g.ClientReady(hero); err != nil {
				g.ReportFault(err)
			}
		}
	case *proto.CharLoaded:
		return func() { g.CharLoaded(hero) }
	case *proto.MoveRequest:
		if m.MoveType > proto.MoveStop || !m.Position.Finite() {
			return nil
		}
		return func() {
			g.Move(hero, m.MoveType, world.VecFromWire(m.Position), netid.ID(m.TargetNetID))
		}
	case *proto.CastSpellRequest:
		if m.IsSummoner || !m.Position.Finite() || !m.EndPosition.Finite() {
			return nil
		}
		return func() {
			err := g.CastSpell(hero, int(m.Slot), world.VecFromWire(m.Position), world.VecFromWire(m.EndPosition), netid.ID(m.TargetNetID))
			if err != nil && ctx.Logger != nil {
				ctx.Logger.Printf("cast from %s slot %d rejected: %v", hero.Hero.PlayerName, m.Slot, err)
			}
		}
	case *proto.AttentionPing:
		if !m.Position.Finite() {
			return nil
		}
		return func() {
			g.Ping(hero, world.VecFromWire(m.Position), netid.ID(m.TargetNetID), m.PingType)
		}
	case *proto.AutoAttackOption:
		return func() { g.SetAutoAttack(hero, m.Activated) }
	default:
		return nil
	}
}
