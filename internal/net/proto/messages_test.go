package proto

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"
)

func decodableSamples() []Message {
	return []Message{
		&ClientReady{},
		&CharLoaded{},
		&MoveRequest{MoveType: MoveAttackMove, Position: Vec2{X: 12.5, Y: -3}, TargetNetID: 0x40000001},
		&CastSpellRequest{Slot: 3, IsSummoner: true, Position: Vec2{X: 1, Y: 2}, EndPosition: Vec2{X: 3, Y: 4}, TargetNetID: 7},
		&AttentionPing{Position: Vec2{X: 100, Y: 200}, TargetNetID: 9, PingType: PingDanger},
		&AutoAttackOption{Activated: true},
		&GameTimer{Time: 10.5},
		&GameTimerUpdate{Time: 20},
		&StartSpawn{BotCountBlue: 1, BotCountPurple: 2},
		&EndSpawn{},
		&HeroSpawn{PlayerNo: -1, TeamID: 200, SkinID: 4, Name: "summoner", Model: "Ezreal"},
		&TurretSpawn{TurretNetID: 0xFF000001, Name: "Turret_T1_L_01"},
		&StartGame{EnablePause: true},
		&EnterVision{Position: Vec2{X: 1, Y: 1}, Destination: Vec2{X: 5, Y: 5}},
		&PlayerInfo{Summoner1: 1, Summoner2: math.MaxUint32},
		&SetHealth{Current: 420, Max: 600},
		&LevelUp{Level: 18, SkillPoints: 1},
		&DestroyClientMissile{},
		&ChampionDie{KillerNetID: 3, DeathDuration: 12.5},
		&ChampionDeathTimer{Remaining: 3},
		&ChampionRespawn{Position: Vec2{X: -5, Y: 8}},
		&UnitAnnounce{Event: AnnounceChampionKill, SourceNetID: 4, Assists: []uint32{5, 6, math.MaxUint32}},
		&Announce{MapID: 1, Event: AnnounceMinionsSpawned},
		&AttentionPingAnswer{Position: Vec2{X: 7, Y: 7}, TargetNetID: 2, PingType: PingAssist},
		&WaypointUpdate{Position: Vec2{X: 1, Y: 2}, Destination: Vec2{X: 3, Y: 4}, Speed: 325},
		&DebugMessage{Text: "hello arena"},
	}
}

func setHeader(m Message, netID uint32, tick int32) {
	m.header().NetID = netID
	if gm, ok := m.(gameMessage); ok {
		gm.gameHeader().Tick = tick
	}
}

func TestRoundTripPreservesEveryDecodableVariant(t *testing.T) {
	boundaries := []struct {
		name  string
		netID uint32
		tick  int32
	}{
		{name: "zero", netID: 0, tick: 0},
		{name: "max", netID: math.MaxUint32, tick: math.MaxInt32},
		{name: "min tick", netID: 1, tick: math.MinInt32},
		{name: "negative tick", netID: 0x40000000, tick: -1},
	}

	for _, sample := range decodableSamples() {
		for _, bound := range boundaries {
			desc, ok := Lookup(sample.Code())
			if !ok {
				t.Fatalf("sample %T not registered", sample)
			}
			t.Run(desc.Name+"/"+bound.name, func(t *testing.T) {
				setHeader(sample, bound.netID, bound.tick)
				data, err := Pack(sample)
				if err != nil {
					t.Fatalf("pack: %v", err)
				}
				decoded, err := Unpack(data)
				if err != nil {
					t.Fatalf("unpack: %v", err)
				}
				if !reflect.DeepEqual(sample, decoded) {
					t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", sample, decoded)
				}
			})
		}
	}
}

func TestPackWritesHeaderOnce(t *testing.T) {
	msg := &SetHealth{Current: 1, Max: 2}
	msg.NetID = 0x01020304
	msg.Tick = -2

	data, err := Pack(msg)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	want := []byte{
		byte(CodeSetHealth),
		0x04, 0x03, 0x02, 0x01,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x80, 0x3F,
		0x00, 0x00, 0x00, 0x40,
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("unexpected frame % x, want % x", data, want)
	}
}

func TestPackOmitsTickForPlainMessages(t *testing.T) {
	msg := &GameTimer{Time: 0}
	data, err := Pack(msg)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(data) != 1+4+4 {
		t.Fatalf("expected code+netid+float, got %d bytes", len(data))
	}
}

func TestOutboundOnlyMessages(t *testing.T) {
	stop := &StopAutoAttack{}
	stop.NetID = 42
	data, err := Pack(stop)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	want := []byte{byte(CodeStopAutoAttack), 42, 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(data, want) {
		t.Fatalf("unexpected frame % x, want % x", data, want)
	}

	for _, code := range []CommandCode{CodeStopAutoAttack, CodeSpawnProjectile} {
		if CanDecode(code) {
			t.Fatalf("expected 0x%02x to be outbound-only", uint8(code))
		}
	}

	_, err = Unpack(data)
	if !errors.Is(err, ErrOutboundOnly) {
		t.Fatalf("expected ErrOutboundOnly, got %v", err)
	}
	if errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("outbound-only failure must not be reported as malformed")
	}
}

func TestUnpackRejectsMalformedFrames(t *testing.T) {
	full, err := Pack(&CastSpellRequest{Slot: 1, Position: Vec2{X: 1, Y: 2}})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	cases := []struct {
		name    string
		data    []byte
		unknown bool
	}{
		{name: "empty", data: nil},
		{name: "unknown code", data: []byte{0x00, 0, 0, 0, 0}, unknown: true},
		{name: "short header", data: []byte{byte(CodeClientReady), 1, 2}},
		{name: "short payload", data: full[:len(full)-1]},
		{name: "missing tick", data: full[:5]},
		{name: "truncated string", data: []byte{byte(CodeDebugMessage), 0, 0, 0, 0, 5, 0, 'a'}},
		{name: "truncated list", data: []byte{byte(CodeUnitAnnounce), 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 2, 1, 0, 0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Unpack(tc.data)
			if !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("expected ErrMalformedMessage, got %v", err)
			}
			if tc.unknown && !errors.Is(err, ErrUnknownCommandCode) {
				t.Fatalf("expected ErrUnknownCommandCode, got %v", err)
			}
		})
	}
}

func TestUnpackToleratesTrailingBytes(t *testing.T) {
	data, err := Pack(&AutoAttackOption{Activated: true})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	data = append(data, 0xAA, 0xBB)
	msg, err := Unpack(data)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !msg.(*AutoAttackOption).Activated {
		t.Fatalf("expected activated flag to survive")
	}
}

func TestUnpackInboundEnforcesDirection(t *testing.T) {
	timer, _ := Pack(&GameTimer{Time: 1})
	if _, err := UnpackInbound(ChannelS2C, timer); !errors.Is(err, ErrUnexpectedDirection) {
		t.Fatalf("expected direction rejection, got %v", err)
	}

	move, _ := Pack(&MoveRequest{MoveType: MoveTo})
	if _, err := UnpackInbound(ChannelGameplay, move); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("expected channel mismatch rejection, got %v", err)
	}
	msg, err := UnpackInbound(ChannelC2S, move)
	if err != nil {
		t.Fatalf("unpack inbound: %v", err)
	}
	if _, ok := msg.(*MoveRequest); !ok {
		t.Fatalf("expected *MoveRequest, got %T", msg)
	}
}

func TestPackFailsOnOversizedFields(t *testing.T) {
	long := string(make([]byte, MaxStringLength+1))
	if _, err := Pack(&DebugMessage{Text: long}); err == nil {
		t.Fatalf("expected error for oversized string")
	}
	if _, err := Pack(&UnitAnnounce{Assists: make([]uint32, 256)}); err == nil {
		t.Fatalf("expected error for oversized assist list")
	}
}

func TestDescriptorTable(t *testing.T) {
	descs := Descriptors()
	if len(descs) != 28 {
		t.Fatalf("expected 28 registered messages, got %d", len(descs))
	}
	for i := 1; i < len(descs); i++ {
		if descs[i-1].Code >= descs[i].Code {
			t.Fatalf("descriptors not ordered by code at %d", i)
		}
	}
	d, ok := Lookup(CodeSpawnProjectile)
	if !ok || !d.Game || d.Decodable || d.Name != "SpawnProjectile" {
		t.Fatalf("unexpected SpawnProjectile descriptor %+v", d)
	}
	if d.Channel.DefaultFlags() != FlagReliable {
		t.Fatalf("expected reliable delivery for s2c")
	}
	if ChannelLowPriority.DefaultFlags().Reliable() {
		t.Fatalf("low priority must be unreliable")
	}
}
