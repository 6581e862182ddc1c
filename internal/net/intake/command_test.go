package intake

import (
	"errors"
	"math"
	"testing"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
	"arena/server/internal/netid"
	"arena/server/internal/sim"
	"arena/server/internal/telemetry"
	"arena/server/internal/world"
)

type fakeGame struct {
	invokeOK bool
	staged   []sim.Action
	calls    []string
	moves    []proto.MoveType
	casts    []int
	castErr  error
	readyErr error
	faults   []error
	auto     *bool
}

func (f *fakeGame) Invoke(action sim.Action) bool {
	if !f.invokeOK {
		return false
	}
	f.staged = append(f.staged, action)
	return true
}

func (f *fakeGame) ClientReady(*world.Unit) error {
	f.calls = append(f.calls, "ready")
	return f.readyErr
}

func (f *fakeGame) CharLoaded(*world.Unit) { f.calls = append(f.calls, "loaded") }
func (f *fakeGame) ReportFault(err error)  { f.faults = append(f.faults, err) }

func (f *fakeGame) Move(_ *world.Unit, moveType proto.MoveType, _ world.Vec2, _ netid.ID) {
	f.calls = append(f.calls, "move")
	f.moves = append(f.moves, moveType)
}

func (f *fakeGame) CastSpell(_ *world.Unit, slot int, _, _ world.Vec2, _ netid.ID) error {
	f.calls = append(f.calls, "cast")
	f.casts = append(f.casts, slot)
	return f.castErr
}

func (f *fakeGame) Ping(*world.Unit, world.Vec2, netid.ID, proto.PingType) {
	f.calls = append(f.calls, "ping")
}

func (f *fakeGame) SetAutoAttack(_ *world.Unit, enabled bool) {
	f.calls = append(f.calls, "auto")
	f.auto = &enabled
}

func (f *fakeGame) run() {
	for _, action := range f.staged {
		action()
	}
	f.staged = nil
}

var (
	nan = float32(math.NaN())
	inf = float32(math.Inf(1))
)

func testHero() *world.Unit {
	return world.NewHero(nil, content.UnitRecord{Name: "Ezreal"}, content.RosterEntry{Name: "Alice"}, 1)
}

func TestStageClientCommandRoutesMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  proto.Message
		want string
	}{
		{name: "client ready", msg: &proto.ClientReady{}, want: "ready"},
		{name: "char loaded", msg: &proto.CharLoaded{}, want: "loaded"},
		{name: "move", msg: &proto.MoveRequest{MoveType: proto.MoveTo, Position: proto.Vec2{X: 1, Y: 2}}, want: "move"},
		{name: "cast", msg: &proto.CastSpellRequest{Slot: 2}, want: "cast"},
		{name: "ping", msg: &proto.AttentionPing{PingType: proto.PingDanger}, want: "ping"},
		{name: "auto attack", msg: &proto.AutoAttackOption{Activated: true}, want: "auto"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			game := &fakeGame{invokeOK: true}
			ok, reason := StageClientCommand(CommandContext{Game: game}, testHero(), tc.msg)
			if !ok {
				t.Fatalf("expected message staged, got reason %q", reason)
			}
			if len(game.calls) != 0 {
				t.Fatalf("expected nothing to run before the tick, got %v", game.calls)
			}
			game.run()
			if len(game.calls) != 1 || game.calls[0] != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, game.calls)
			}
		})
	}
}

func TestStageClientCommandRejects(t *testing.T) {
	tests := []struct {
		name     string
		hero     *world.Unit
		msg      proto.Message
		invokeOK bool
		want     string
	}{
		{name: "no hero", msg: &proto.ClientReady{}, invokeOK: true, want: RejectUnknownActor},
		{name: "outbound message", hero: testHero(), msg: &proto.StartGame{}, invokeOK: true, want: RejectInvalidCommand},
		{name: "bad move type", hero: testHero(), msg: &proto.MoveRequest{MoveType: proto.MoveStop + 1}, invokeOK: true, want: RejectInvalidCommand},
		{name: "summoner spell", hero: testHero(), msg: &proto.CastSpellRequest{IsSummoner: true}, invokeOK: true, want: RejectInvalidCommand},
		{name: "nan move target", hero: testHero(), msg: &proto.MoveRequest{MoveType: proto.MoveTo, Position: proto.Vec2{X: nan, Y: 1}}, invokeOK: true, want: RejectInvalidCommand},
		{name: "infinite move target", hero: testHero(), msg: &proto.MoveRequest{MoveType: proto.MoveTo, Position: proto.Vec2{X: 1, Y: inf}}, invokeOK: true, want: RejectInvalidCommand},
		{name: "nan cast position", hero: testHero(), msg: &proto.CastSpellRequest{Position: proto.Vec2{X: nan}}, invokeOK: true, want: RejectInvalidCommand},
		{name: "infinite cast end", hero: testHero(), msg: &proto.CastSpellRequest{EndPosition: proto.Vec2{Y: -inf}}, invokeOK: true, want: RejectInvalidCommand},
		{name: "nan ping", hero: testHero(), msg: &proto.AttentionPing{Position: proto.Vec2{Y: nan}}, invokeOK: true, want: RejectInvalidCommand},
		{name: "queue closed", hero: testHero(), msg: &proto.CharLoaded{}, want: RejectQueueClosed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			game := &fakeGame{invokeOK: tc.invokeOK}
			ok, reason := StageClientCommand(CommandContext{Game: game}, tc.hero, tc.msg)
			if ok {
				t.Fatalf("expected rejection")
			}
			if reason != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, reason)
			}
			if len(game.staged) != 0 {
				t.Fatalf("expected nothing staged, got %d", len(game.staged))
			}
		})
	}
}

func TestStagedErrorsAreReported(t *testing.T) {
	readyErr := errors.New("spawn failed")
	var logged []string
	game := &fakeGame{invokeOK: true, readyErr: readyErr, castErr: errors.New("on cooldown")}
	ctx := CommandContext{
		Game:   game,
		Logger: telemetry.LoggerFunc(func(format string, _ ...any) { logged = append(logged, format) }),
	}
	hero := testHero()

	StageClientCommand(ctx, hero, &proto.ClientReady{})
	StageClientCommand(ctx, hero, &proto.CastSpellRequest{Slot: 1})
	game.run()

	if len(game.faults) != 1 || !errors.Is(game.faults[0], readyErr) {
		t.Fatalf("expected ready failure reported, got %v", game.faults)
	}
	if len(logged) != 1 {
		t.Fatalf("expected rejected cast logged, got %v", logged)
	}
	if len(game.casts) != 1 || game.casts[0] != 1 {
		t.Fatalf("expected cast of slot 1, got %v", game.casts)
	}
}

func TestAutoAttackOptionCarriesFlag(t *testing.T) {
	game := &fakeGame{invokeOK: true}
	StageClientCommand(CommandContext{Game: game}, testHero(), &proto.AutoAttackOption{Activated: false})
	game.run()
	if game.auto == nil || *game.auto {
		t.Fatalf("expected auto attack disabled")
	}
}
