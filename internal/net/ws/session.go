package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"arena/server/internal/net/intake"
	"arena/server/internal/net/proto"
	"arena/server/internal/telemetry"
	"arena/server/internal/world"
	"arena/server/logging"
	loggingnetwork "arena/server/logging/network"
)

const (
	metricDroppedUnreliable = "ws_unreliable_dropped_total"
	metricReliableOverflow  = "ws_reliable_overflow_total"
	metricMalformedFrames   = "ws_malformed_frames_total"
)

// errSessionClosed ends the pumps once the session is closed locally.
var errSessionClosed = errors.New("session closed")

// Session is one websocket connection bound to a hero. Send is safe from the
// simulation goroutine; the pumps own the connection.
type Session struct {
	id        string
	conn      *websocket.Conn
	outbound  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	reason    atomic.Pointer[string]

	publisher    logging.Publisher
	metrics      telemetry.Metrics
	tick         func() uint64
	writeTimeout time.Duration
	hero         *world.Unit
}

func newSession(id string, conn *websocket.Conn, buffer int, cfg HandlerConfig, tick func() uint64) *Session {
	if buffer < 1 {
		buffer = 1
	}
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Session{
		id:           id,
		conn:         conn,
		outbound:     make(chan []byte, buffer),
		closed:       make(chan struct{}),
		publisher:    cfg.Publisher,
		metrics:      cfg.Metrics,
		tick:         tick,
		writeTimeout: cfg.WriteTimeout,
	}
}

// ID is the session's random identifier.
func (s *Session) ID() string {
	return s.id
}

// Send frames msg for the client. A reliable message that does not fit the
// buffer closes the session; an unreliable one is dropped.
func (s *Session) Send(msg proto.Message, ch proto.Channel, flags proto.Flags) {
	select {
	case <-s.closed:
		return
	default:
	}
	packed, err := proto.Pack(msg)
	if err != nil {
		return
	}
	frame := make([]byte, 0, len(packed)+1)
	frame = append(frame, byte(ch))
	frame = append(frame, packed...)

	select {
	case s.outbound <- frame:
		return
	default:
	}

	reliable := flags.Reliable()
	loggingnetwork.SendOverflow(context.Background(), s.publisher, s.tick(), s.actor(), loggingnetwork.OverflowPayload{
		SessionID: s.id,
		Code:      uint8(msg.Code()),
		Reliable:  reliable,
	}, nil)
	if !reliable {
		s.addMetric(metricDroppedUnreliable)
		return
	}
	s.addMetric(metricReliableOverflow)
	s.closeWith("send buffer overflow")
}

// Close ends the session. It is idempotent.
func (s *Session) Close() error {
	s.closeWith("closed by server")
	return nil
}

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

func (s *Session) closeWith(reason string) {
	s.closeOnce.Do(func() {
		s.reason.Store(&reason)
		close(s.closed)
	})
}

// Reason reports why the session was closed locally, if it was.
func (s *Session) Reason() string {
	if r := s.reason.Load(); r != nil {
		return *r
	}
	return ""
}

func (s *Session) actor() logging.EntityRef {
	if s.hero != nil {
		return s.hero.Ref()
	}
	return logging.EntityRef{ID: s.id, Kind: logging.EntityKindSession}
}

func (s *Session) addMetric(key string) {
	if s.metrics != nil {
		s.metrics.Add(key, 1)
	}
}

// writePump drains the outbound buffer onto the connection until the
// session closes or ctx ends.
func (s *Session) writePump(ctx context.Context) error {
	defer s.conn.Close()
	for {
		select {
		case frame := <-s.outbound:
			if err := s.write(websocket.BinaryMessage, frame); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-s.closed:
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, s.Reason())
			_ = s.write(websocket.CloseMessage, message)
			return errSessionClosed
		case <-ctx.Done():
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = s.write(websocket.CloseMessage, message)
			return nil
		}
	}
}

func (s *Session) write(messageType int, data []byte) error {
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	return s.conn.WriteMessage(messageType, data)
}

// readPump decodes client frames and stages them on the match. A malformed
// frame drops the connection.
func (s *Session) readPump(cmd intake.CommandContext, logger telemetry.Logger) error {
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if len(data) < 2 {
			return s.malformed(0, data, fmt.Errorf("%w: short frame", proto.ErrMalformedMessage))
		}
		ch := proto.Channel(data[0])
		msg, err := proto.UnpackInbound(ch, data[1:])
		if errors.Is(err, proto.ErrOutboundOnly) {
			loggingnetwork.OutboundOnly(context.Background(), s.publisher, s.tick(), s.actor(), s.messagePayload(ch, data, err), nil)
			continue
		}
		if err != nil {
			return s.malformed(ch, data, err)
		}
		if ok, reason := intake.StageClientCommand(cmd, s.hero, msg); !ok && logger != nil {
			logger.Printf("session %s: message 0x%02x rejected: %s", s.id, uint8(msg.Code()), reason)
		}
	}
}

func (s *Session) malformed(ch proto.Channel, data []byte, err error) error {
	s.addMetric(metricMalformedFrames)
	loggingnetwork.MalformedMessage(context.Background(), s.publisher, s.tick(), s.actor(), s.messagePayload(ch, data, err), nil)
	return err
}

func (s *Session) messagePayload(ch proto.Channel, data []byte, err error) loggingnetwork.MessagePayload {
	payload := loggingnetwork.MessagePayload{
		SessionID: s.id,
		Channel:   uint8(ch),
		Length:    len(data),
		Error:     err.Error(),
	}
	if len(data) > 1 {
		payload.Code = data[1]
	}
	return payload
}
