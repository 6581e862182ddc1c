package ws

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"arena/server/internal/net/intake"
	"arena/server/internal/telemetry"
	"arena/server/internal/world"
	"arena/server/logging"
	loggingnetwork "arena/server/logging/network"
)

const (
	// DefaultSendBuffer is the number of frames queued per session.
	DefaultSendBuffer = 512
	// DefaultJoinTimeout bounds the wait for the match to bind a session.
	DefaultJoinTimeout = 5 * time.Second
	// DefaultWriteTimeout bounds a single frame write.
	DefaultWriteTimeout = 10 * time.Second
)

// Match is the part of a running game the transport needs.
type Match interface {
	intake.Game
	Call(ctx context.Context, fn func()) error
	Join(token string, client world.Client) (*world.Unit, error)
	Disconnect(hero *world.Unit, client world.Client, reason string)
	Tick() uint64
}

type HandlerConfig struct {
	Logger       telemetry.Logger
	Publisher    logging.Publisher
	Metrics      telemetry.Metrics
	SendBuffer   int
	JoinTimeout  time.Duration
	WriteTimeout time.Duration
	// CheckOrigin overrides the upgrader's origin check. Nil accepts every
	// origin.
	CheckOrigin func(r *nethttp.Request) bool
}

// Handler upgrades /ws requests and runs one session per connection.
type Handler struct {
	match    Match
	cfg      HandlerConfig
	logger   telemetry.Logger
	upgrader websocket.Upgrader
	active   atomic.Int64
}

func NewHandler(match Match, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultJoinTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *nethttp.Request) bool {
			return true
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return &Handler{
		match:    match,
		cfg:      cfg,
		logger:   logger,
		upgrader: upgrader,
	}
}

// Active reports the number of open sessions.
func (h *Handler) Active() int {
	return int(h.active.Load())
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		nethttp.Error(w, "missing token", nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		h.logger.Printf("session id: %v", err)
		conn.Close()
		return
	}
	session := newSession(id, conn, h.cfg.SendBuffer, h.cfg, h.match.Tick)

	hero, err := h.join(r.Context(), token, session)
	if err != nil {
		h.logger.Printf("session %s rejected: %v", id, err)
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown player")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	h.active.Add(1)
	defer h.active.Add(-1)
	loggingnetwork.SessionOpened(context.Background(), h.cfg.Publisher, h.match.Tick(), hero.Ref(), loggingnetwork.SessionPayload{
		SessionID: id,
		Remote:    r.RemoteAddr,
	}, nil)

	reason := h.serve(session)

	h.match.Invoke(func() {
		h.match.Disconnect(hero, session, reason)
	})
	loggingnetwork.SessionClosed(context.Background(), h.cfg.Publisher, h.match.Tick(), hero.Ref(), loggingnetwork.SessionPayload{
		SessionID: id,
		Remote:    r.RemoteAddr,
		Reason:    reason,
	}, nil)
}

// join binds the session to the token's hero on the simulation goroutine. A
// join that outlives its deadline never leaves the hero bound to the session.
func (h *Handler) join(ctx context.Context, token string, session *Session) (*world.Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.JoinTimeout)
	defer cancel()

	var hero *world.Unit
	var joinErr error
	err := h.match.Call(ctx, func() {
		if err := ctx.Err(); err != nil {
			joinErr = err
			return
		}
		hero, joinErr = h.match.Join(token, session)
		session.hero = hero
	})
	if err != nil {
		// Runs after the join action, so hero is only read on the
		// simulation goroutine.
		h.match.Invoke(func() {
			if hero != nil {
				h.match.Disconnect(hero, session, "join timeout")
			}
		})
		return nil, fmt.Errorf("join: %w", err)
	}
	if joinErr != nil {
		return nil, joinErr
	}
	return hero, nil
}

// serve runs the reader and writer pumps until either ends and reports why
// the session finished.
func (h *Handler) serve(session *Session) string {
	group, ctx := errgroup.WithContext(context.Background())
	cmd := intake.CommandContext{Game: h.match, Logger: h.logger}

	group.Go(func() error {
		return session.readPump(cmd, h.logger)
	})
	group.Go(func() error {
		return session.writePump(ctx)
	})

	err := group.Wait()
	if reason := session.Reason(); reason != "" {
		return reason
	}
	session.closeWith("connection closed")
	switch {
	case err == nil, errors.Is(err, errSessionClosed):
		return "client closed"
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		return "client closed"
	default:
		return err.Error()
	}
}
