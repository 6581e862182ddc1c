package proto

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

var (
	// ErrMalformedMessage marks frames that cannot be decoded. The owning
	// connection is dropped; other connections are unaffected.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownCommandCode marks frames whose command code is not in the
	// catalog. It matches ErrMalformedMessage under errors.Is.
	ErrUnknownCommandCode = fmt.Errorf("%w: unknown command code", ErrMalformedMessage)
	// ErrUnexpectedDirection marks server-to-client codes received inbound.
	ErrUnexpectedDirection = fmt.Errorf("%w: unexpected direction", ErrMalformedMessage)
	// ErrOutboundOnly marks message types that have no inbound decoder. It is
	// an expected failure and does not match ErrMalformedMessage.
	ErrOutboundOnly = errors.New("message type is outbound-only")
)

// CommandCode identifies a wire message type.
type CommandCode uint8

// Direction describes which peer may originate a channel's traffic.
type Direction uint8

const (
	DirectionBoth Direction = iota
	DirectionClientToServer
	DirectionServerToClient
)

// Channel is the delivery class of a message.
type Channel uint8

const (
	ChannelHandshake     Channel = 0
	ChannelC2S           Channel = 1
	ChannelGameplay      Channel = 2
	ChannelS2C           Channel = 3
	ChannelLowPriority   Channel = 4
	ChannelCommunication Channel = 5
	ChannelLoadingScreen Channel = 7
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelHandshake, ChannelC2S, ChannelGameplay, ChannelS2C,
		ChannelLowPriority, ChannelCommunication, ChannelLoadingScreen:
		return true
	}
	return false
}

// Direction reports which peer originates traffic on c.
func (c Channel) Direction() Direction {
	switch c {
	case ChannelC2S:
		return DirectionClientToServer
	case ChannelGameplay, ChannelS2C, ChannelLowPriority, ChannelLoadingScreen:
		return DirectionServerToClient
	default:
		return DirectionBoth
	}
}

// DefaultFlags maps a channel onto transport delivery flags.
func (c Channel) DefaultFlags() Flags {
	if c == ChannelLowPriority {
		return FlagUnsequenced
	}
	return FlagReliable
}

func (c Channel) String() string {
	switch c {
	case ChannelHandshake:
		return "handshake"
	case ChannelC2S:
		return "c2s"
	case ChannelGameplay:
		return "gameplay"
	case ChannelS2C:
		return "s2c"
	case ChannelLowPriority:
		return "low_priority"
	case ChannelCommunication:
		return "communication"
	case ChannelLoadingScreen:
		return "loading_screen"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Flags are transport delivery flags.
type Flags uint8

const (
	FlagNone        Flags = 0
	FlagReliable    Flags = 1 << 0
	FlagUnsequenced Flags = 1 << 1
)

// Reliable reports whether the message must not be dropped.
func (f Flags) Reliable() bool {
	return f&FlagReliable != 0
}

// Header is the part of the frame shared by every message. NetID is the
// source object, or zero when the message has none.
type Header struct {
	NetID uint32
}

func (h *Header) header() *Header { return h }

// GameHeader extends Header with the tick a time-correlated event belongs to.
type GameHeader struct {
	Header
	Tick int32
}

func (h *GameHeader) gameHeader() *GameHeader { return h }

// HeaderFor builds a header sourced from netID.
func HeaderFor(netID uint32) Header {
	return Header{NetID: netID}
}

// GameHeaderFor builds a game header sourced from netID at tick.
func GameHeaderFor(netID uint32, tick int32) GameHeader {
	return GameHeader{Header: Header{NetID: netID}, Tick: tick}
}

// Message is implemented by every catalog type. Payload code only; the
// header is framed once by Pack and Unpack.
type Message interface {
	Code() CommandCode
	Channel() Channel
	Serialize(w *Writer)
	header() *Header
}

// Decoder is implemented by message types that support inbound decoding.
type Decoder interface {
	Deserialize(r *Reader) error
}

type gameMessage interface {
	gameHeader() *GameHeader
}

// Descriptor describes one catalog entry.
type Descriptor struct {
	Code      CommandCode
	Name      string
	Channel   Channel
	Game      bool
	Decodable bool

	factory func() Message
}

// New allocates an empty message of the described type.
func (d Descriptor) New() Message {
	return d.factory()
}

var descriptors = map[CommandCode]Descriptor{}

func register(factories ...func() Message) {
	for _, factory := range factories {
		sample := factory()
		code := sample.Code()
		if existing, dup := descriptors[code]; dup {
			panic(fmt.Sprintf("proto: command code 0x%02x registered by %s and %T", uint8(code), existing.Name, sample))
		}
		_, game := sample.(gameMessage)
		_, decodable := sample.(Decoder)
		descriptors[code] = Descriptor{
			Code:      code,
			Name:      strings.TrimPrefix(fmt.Sprintf("%T", sample), "*proto."),
			Channel:   sample.Channel(),
			Game:      game,
			Decodable: decodable,
			factory:   factory,
		}
	}
}

// Lookup returns the descriptor registered for code.
func Lookup(code CommandCode) (Descriptor, bool) {
	d, ok := descriptors[code]
	return d, ok
}

// CanDecode reports whether code is known and supports inbound decoding.
func CanDecode(code CommandCode) bool {
	d, ok := descriptors[code]
	return ok && d.Decodable
}

// Descriptors returns the catalog ordered by command code.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// SourceOf returns the source network id carried by m.
func SourceOf(m Message) uint32 {
	if m == nil {
		return 0
	}
	return m.header().NetID
}

// Pack frames m: command code, source id, tick for game messages, payload.
func Pack(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.New("pack: nil message")
	}
	w := NewWriter(16)
	w.WriteUint8(uint8(m.Code()))
	w.WriteUint32(m.header().NetID)
	if gm, ok := m.(gameMessage); ok {
		w.WriteInt32(gm.gameHeader().Tick)
	}
	m.Serialize(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("pack 0x%02x: %w", uint8(m.Code()), err)
	}
	return w.Bytes(), nil
}

// Unpack decodes a framed message of any decodable type.
func Unpack(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedMessage)
	}
	code := CommandCode(data[0])
	desc, ok := descriptors[code]
	if !ok {
		return nil, fmt.Errorf("%w 0x%02x", ErrUnknownCommandCode, uint8(code))
	}
	if !desc.Decodable {
		return nil, fmt.Errorf("%w: %s", ErrOutboundOnly, desc.Name)
	}
	return decode(desc, data[1:])
}

// UnpackInbound decodes a frame received from a client on channel ch.
// Server-to-client codes and channel mismatches are rejected as malformed.
func UnpackInbound(ch Channel, data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedMessage)
	}
	code := CommandCode(data[0])
	desc, ok := descriptors[code]
	if !ok {
		return nil, fmt.Errorf("%w 0x%02x", ErrUnknownCommandCode, uint8(code))
	}
	if !desc.Decodable {
		return nil, fmt.Errorf("%w: %s", ErrOutboundOnly, desc.Name)
	}
	if desc.Channel.Direction() == DirectionServerToClient {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedDirection, desc.Name)
	}
	if ch != desc.Channel {
		return nil, fmt.Errorf("%w: %s expected on %s, got %s", ErrMalformedMessage, desc.Name, desc.Channel, ch)
	}
	return decode(desc, data[1:])
}

func decode(desc Descriptor, payload []byte) (Message, error) {
	m := desc.New()
	r := NewReader(payload)
	m.header().NetID = r.ReadUint32()
	if gm, ok := m.(gameMessage); ok {
		gm.gameHeader().Tick = r.ReadInt32()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s header: %w", desc.Name, err)
	}
	if err := m.(Decoder).Deserialize(r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", desc.Name, err)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", desc.Name, err)
	}
	return m, nil
}
