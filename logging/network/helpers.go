package network

import (
	"context"

	"arena/server/logging"
)

const (
	// EventSessionOpened is emitted when a client connection is accepted.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a client connection ends.
	EventSessionClosed logging.EventType = "network.session_closed"
	// EventMalformedMessage is emitted when a client frame cannot be decoded.
	EventMalformedMessage logging.EventType = "network.malformed_message"
	// EventOutboundOnly is emitted when a client sends a code the server never decodes.
	EventOutboundOnly logging.EventType = "network.outbound_only"
	// EventSendOverflow is emitted when a client's send buffer is full.
	EventSendOverflow logging.EventType = "network.send_overflow"
)

// SessionPayload describes one client connection.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
	Remote    string `json:"remote,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// MessagePayload describes a rejected frame.
type MessagePayload struct {
	SessionID string `json:"sessionId"`
	Channel   uint8  `json:"channel"`
	Code      uint8  `json:"code"`
	Length    int    `json:"length"`
	Error     string `json:"error"`
}

// OverflowPayload describes a message that did not fit the send buffer.
type OverflowPayload struct {
	SessionID string `json:"sessionId"`
	Code      uint8  `json:"code"`
	Reliable  bool   `json:"reliable"`
}

// SessionOpened publishes an info event for a new connection.
func SessionOpened(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionPayload, extra map[string]any) {
	publish(ctx, pub, EventSessionOpened, logging.SeverityInfo, tick, actor, payload, extra)
}

// SessionClosed publishes an info event when a connection ends.
func SessionClosed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SessionPayload, extra map[string]any) {
	publish(ctx, pub, EventSessionClosed, logging.SeverityInfo, tick, actor, payload, extra)
}

// MalformedMessage publishes a warning for an undecodable frame. The session is dropped.
func MalformedMessage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventMalformedMessage, logging.SeverityWarn, tick, actor, payload, extra)
}

// OutboundOnly publishes a warning for a frame whose type has no inbound decoder.
func OutboundOnly(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MessagePayload, extra map[string]any) {
	publish(ctx, pub, EventOutboundOnly, logging.SeverityWarn, tick, actor, payload, extra)
}

// SendOverflow publishes a warning when a send buffer overflows.
func SendOverflow(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload OverflowPayload, extra map[string]any) {
	publish(ctx, pub, EventSendOverflow, logging.SeverityWarn, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
