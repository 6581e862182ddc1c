package world

import (
	"math"

	"arena/server/internal/content"
	"arena/server/internal/net/proto"
)

// Vec2 is a planar position or direction in map units.
type Vec2 struct {
	X float64
	Y float64
}

// VecFromPoint converts a content coordinate.
func VecFromPoint(p content.Point) Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// VecFromWire converts a wire vector.
func VecFromWire(v proto.Vec2) Vec2 {
	return Vec2{X: float64(v.X), Y: float64(v.Y)}
}

// Wire converts v for encoding.
func (v Vec2) Wire() proto.Vec2 {
	return proto.Vec2{X: float32(v.X), Y: float32(v.Y)}
}

// Wire3 converts v for encoding with a zero height.
func (v Vec2) Wire3() proto.Vec3 {
	return proto.Vec3{X: float32(v.X), Z: float32(v.Y)}
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{X: v.X * f, Y: v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }

// Distance returns the euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Normalize returns the unit vector along v, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	length := v.Len()
	if length == 0 {
		return Vec2{}
	}
	return v.Scale(1 / length)
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	lengthSq := ab.Dot(ab)
	if lengthSq == 0 {
		return p.Distance(a)
	}
	t := Clamp(p.Sub(a).Dot(ab)/lengthSq, 0, 1)
	return p.Distance(a.Add(ab.Scale(t)))
}

// Clamp limits value to the range [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MoveToward advances from toward to by at most step and reports whether the
// destination was reached.
func MoveToward(from, to Vec2, step float64) (Vec2, bool) {
	offset := to.Sub(from)
	distance := offset.Len()
	if distance <= step || distance == 0 {
		return to, true
	}
	return from.Add(offset.Scale(step / distance)), false
}
