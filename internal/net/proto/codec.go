package proto

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxStringLength bounds string payloads to their uint16 length prefix.
const MaxStringLength = math.MaxUint16

// Vec2 is a planar wire vector.
type Vec2 struct {
	X float32
	Y float32
}

// Finite reports whether neither component is NaN or infinite.
func (v Vec2) Finite() bool {
	return finite(v.X) && finite(v.Y)
}

func finite(f float32) bool {
	x := float64(f)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Vec3 is a spatial wire vector.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// Writer appends little-endian primitives to a growing buffer. The first
// encoding failure is sticky and reported by Err.
type Writer struct {
	buf []byte
	err error
}

// NewWriter constructs a writer with the provided initial capacity.
func NewWriter(capacity int) *Writer {
	if capacity < 0 {
		capacity = 0
	}
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports the number of encoded bytes.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Err reports the first encoding failure.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteVec2(v Vec2) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
}

func (w *Writer) WriteVec3(v Vec3) {
	w.WriteFloat32(v.X)
	w.WriteFloat32(v.Y)
	w.WriteFloat32(v.Z)
}

// WriteString writes a uint16 byte length followed by the raw bytes.
func (w *Writer) WriteString(s string) {
	if len(s) > MaxStringLength {
		w.fail(fmt.Errorf("string of %d bytes exceeds %d", len(s), MaxStringLength))
		return
	}
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteCount writes a uint8 element count, failing when n does not fit.
func (w *Writer) WriteCount(n int) {
	if n < 0 || n > math.MaxUint8 {
		w.fail(fmt.Errorf("element count %d out of range", n))
		return
	}
	w.WriteUint8(uint8(n))
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Reader consumes little-endian primitives. Reading past the end records a
// sticky ErrMalformedMessage and yields zero values from then on.
type Reader struct {
	data []byte
	off  int
	err  error
}

// NewReader wraps data for decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err reports the first decoding failure.
func (r *Reader) Err() error {
	return r.err
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.Remaining() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedMessage, n, r.off, r.Remaining())
		return nil
	}
	chunk := r.data[r.off : r.off+n]
	r.off += n
	return chunk
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

func (r *Reader) ReadVec2() Vec2 {
	return Vec2{X: r.ReadFloat32(), Y: r.ReadFloat32()}
}

func (r *Reader) ReadVec3() Vec3 {
	return Vec3{X: r.ReadFloat32(), Y: r.ReadFloat32(), Z: r.ReadFloat32()}
}

func (r *Reader) ReadString() string {
	n := int(r.ReadUint16())
	b := r.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

func (r *Reader) ReadCount() int {
	return int(r.ReadUint8())
}
