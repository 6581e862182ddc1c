package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"arena/server/internal/content"
	"arena/server/internal/game"
	"arena/server/internal/net/proto"
	"arena/server/internal/scripts"
	"arena/server/logging"
	"arena/server/logging/lifecycle"
	loggingnetwork "arena/server/logging/network"
)

const (
	blueToken   = "blue-token"
	purpleToken = "purple-token"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *eventRecorder) Publish(_ context.Context, event logging.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) count(eventType logging.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, event := range r.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

type countingMetrics struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (m *countingMetrics) Add(key string, delta uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] += delta
}

func (m *countingMetrics) Store(key string, value uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *countingMetrics) get(key string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func newTestServer(t *testing.T) (*httptest.Server, *eventRecorder) {
	t.Helper()
	registry, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	cfg := game.DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	cfg.Roster = []content.RosterEntry{
		{Token: blueToken, Name: "Alice", Champion: "Ezreal", Team: "blue"},
		{Token: purpleToken, Name: "Bob", Champion: "Annie", Team: "purple"},
	}
	events := &eventRecorder{}
	match, err := game.New(cfg, game.Deps{Content: registry, Scripts: scripts.Default(), Publisher: events})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := match.Start(); err != nil {
		t.Fatalf("start game: %v", err)
	}
	t.Cleanup(match.Stop)

	handler := NewHandler(match, HandlerConfig{Publisher: events})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return srv, events
}

func websocketURL(t *testing.T, baseURL, token string) string {
	t.Helper()

	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.Path = "/ws"
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dial(t *testing.T, baseURL, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, baseURL, token), nil)
	if resp != nil {
		t.Cleanup(func() { resp.Body.Close() })
	}
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, msg proto.Message) {
	t.Helper()
	packed, err := proto.Pack(msg)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	frame := append([]byte{byte(msg.Channel())}, packed...)
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) (proto.Channel, proto.Message) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if messageType != websocket.BinaryMessage || len(data) < 2 {
		t.Fatalf("expected binary frame, got type %d len %d", messageType, len(data))
	}
	msg, err := proto.Unpack(data[1:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	return proto.Channel(data[0]), msg
}

func expectClosed(t *testing.T, conn *websocket.Conn) error {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandleRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleRejectsUnknownToken(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv.URL, "stranger")

	err := expectClosed(t, conn)
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestReadyPlayersReceiveSpawnSequence(t *testing.T) {
	srv, events := newTestServer(t)
	blue := dial(t, srv.URL, blueToken)
	purple := dial(t, srv.URL, purpleToken)
	waitFor(t, "sessions to open", func() bool { return events.count(loggingnetwork.EventSessionOpened) == 2 })

	sendFrame(t, blue, &proto.ClientReady{})
	sendFrame(t, purple, &proto.ClientReady{})

	for _, conn := range []*websocket.Conn{blue, purple} {
		ch, msg := readFrame(t, conn)
		if ch != proto.ChannelS2C {
			t.Fatalf("expected s2c channel, got %s", ch)
		}
		if msg.Code() != proto.CodeStartSpawn {
			t.Fatalf("expected start spawn first, got %#x", msg.Code())
		}
		var heroes int
		for msg.Code() != proto.CodeEndSpawn {
			_, msg = readFrame(t, conn)
			if msg.Code() == proto.CodeHeroSpawn {
				heroes++
			}
		}
		if heroes != 2 {
			t.Fatalf("expected 2 hero spawns, got %d", heroes)
		}
	}
}

func TestMalformedFrameDropsOnlyThatSession(t *testing.T) {
	srv, events := newTestServer(t)
	blue := dial(t, srv.URL, blueToken)
	purple := dial(t, srv.URL, purpleToken)
	waitFor(t, "sessions to open", func() bool { return events.count(loggingnetwork.EventSessionOpened) == 2 })

	if err := blue.WriteMessage(websocket.BinaryMessage, []byte{byte(proto.ChannelC2S), 0xFF, 0, 0}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := expectClosed(t, blue); err == nil {
		t.Fatalf("expected blue session closed")
	}
	waitFor(t, "malformed event", func() bool { return events.count(loggingnetwork.EventMalformedMessage) == 1 })
	waitFor(t, "session closed event", func() bool { return events.count(loggingnetwork.EventSessionClosed) == 1 })

	sendFrame(t, purple, &proto.AttentionPing{PingType: proto.PingDanger})
	_, msg := readFrame(t, purple)
	if msg.Code() != proto.CodeUnitAnnounce {
		t.Fatalf("expected purple to stay connected and hear blue leave, got %#x", msg.Code())
	}
}

func TestOutboundOnlyFrameIsIgnored(t *testing.T) {
	srv, events := newTestServer(t)
	blue := dial(t, srv.URL, blueToken)
	waitFor(t, "session to open", func() bool { return events.count(loggingnetwork.EventSessionOpened) == 1 })

	packed, err := proto.Pack(&proto.SpawnProjectile{})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if err := blue.WriteMessage(websocket.BinaryMessage, append([]byte{byte(proto.ChannelS2C)}, packed...)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "outbound-only event", func() bool { return events.count(loggingnetwork.EventOutboundOnly) == 1 })
	if events.count(loggingnetwork.EventSessionClosed) != 0 {
		t.Fatalf("expected session to stay open")
	}
}

func TestRejoinClosesPreviousSession(t *testing.T) {
	srv, events := newTestServer(t)
	first := dial(t, srv.URL, blueToken)
	waitFor(t, "session to open", func() bool { return events.count(loggingnetwork.EventSessionOpened) == 1 })

	dial(t, srv.URL, blueToken)

	err := expectClosed(t, first)
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Text != "closed by server" {
		t.Fatalf("expected server close of the first session, got %v", err)
	}
}

func TestJoinTimeoutLeavesHeroUnbound(t *testing.T) {
	registry, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	cfg := game.DefaultConfig()
	cfg.Roster = []content.RosterEntry{
		{Token: blueToken, Name: "Alice", Champion: "Ezreal", Team: "blue"},
		{Token: purpleToken, Name: "Bob", Champion: "Annie", Team: "purple"},
	}
	events := &eventRecorder{}
	match, err := game.New(cfg, game.Deps{Content: registry, Scripts: scripts.Default(), Publisher: events})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	handler := NewHandler(match, HandlerConfig{Publisher: events, JoinTimeout: 10 * time.Millisecond})
	session := newSession("s1", nil, 4, HandlerConfig{}, nil)

	// The loop is not running, so the join action waits past its deadline.
	if _, err := handler.join(context.Background(), blueToken, session); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected join deadline error, got %v", err)
	}
	match.Step(10 * time.Millisecond)

	blue := match.Players()[0]
	if blue.Hero.Client != nil {
		t.Fatalf("expected timed out session to stay unbound")
	}
	if session.hero != nil {
		t.Fatalf("expected session to carry no hero")
	}
	if events.count(lifecycle.EventPlayerJoined) != 0 {
		t.Fatalf("expected no join event")
	}
}

func TestSessionSendOverflow(t *testing.T) {
	tests := []struct {
		name       string
		flags      proto.Flags
		wantClosed bool
		wantMetric string
	}{
		{name: "unreliable is dropped", flags: proto.FlagUnsequenced, wantMetric: metricDroppedUnreliable},
		{name: "reliable closes the session", flags: proto.FlagReliable, wantClosed: true, wantMetric: metricReliableOverflow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			events := &eventRecorder{}
			metrics := &countingMetrics{values: make(map[string]uint64)}
			session := newSession("s1", nil, 1, HandlerConfig{Publisher: events, Metrics: metrics}, nil)

			session.Send(&proto.StartGame{}, proto.ChannelS2C, proto.FlagReliable)
			session.Send(&proto.StartGame{}, proto.ChannelS2C, tc.flags)

			select {
			case <-session.Done():
				if !tc.wantClosed {
					t.Fatalf("expected session to stay open")
				}
				if session.Reason() != "send buffer overflow" {
					t.Fatalf("unexpected close reason %q", session.Reason())
				}
			default:
				if tc.wantClosed {
					t.Fatalf("expected session closed")
				}
			}
			if got := metrics.get(tc.wantMetric); got != 1 {
				t.Fatalf("expected %s 1, got %d", tc.wantMetric, got)
			}
			if events.count(loggingnetwork.EventSendOverflow) != 1 {
				t.Fatalf("expected overflow event")
			}
			if len(session.outbound) != 1 {
				t.Fatalf("expected first frame kept, got %d", len(session.outbound))
			}
		})
	}
}

func TestSessionFramesCarryChannel(t *testing.T) {
	session := newSession("s1", nil, 4, HandlerConfig{}, nil)
	session.Send(&proto.GameTimer{Time: 3}, proto.ChannelS2C, proto.FlagReliable)

	frame := <-session.outbound
	if proto.Channel(frame[0]) != proto.ChannelS2C {
		t.Fatalf("expected s2c channel byte, got %d", frame[0])
	}
	msg, err := proto.Unpack(frame[1:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	timer, ok := msg.(*proto.GameTimer)
	if !ok || timer.Time != 3 {
		t.Fatalf("unexpected message %#v", msg)
	}

	session.Close()
	session.Send(&proto.GameTimer{Time: 4}, proto.ChannelS2C, proto.FlagReliable)
	if len(session.outbound) != 0 {
		t.Fatalf("expected closed session to ignore sends")
	}
}
