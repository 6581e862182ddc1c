package combat

import (
	"math"

	"arena/server/internal/world"
)

// Shape decides whether a unit lies inside an effect area.
type Shape interface {
	Contains(u *world.Unit) bool
	Name() string
}

// Cone spreads from Apex toward End. Its reach is the apex-to-end distance
// and HalfAngle is in radians.
type Cone struct {
	Apex      world.Vec2
	End       world.Vec2
	HalfAngle float64
}

func (Cone) Name() string { return "cone" }

// Contains tests the unit centre against the cone's angle and its body
// against the cone's reach.
func (c Cone) Contains(u *world.Unit) bool {
	axis := c.End.Sub(c.Apex)
	reach := axis.Len()
	offset := u.Position.Sub(c.Apex)
	distance := offset.Len()
	if distance > reach+u.Radius {
		return false
	}
	if distance == 0 {
		return true
	}
	if reach == 0 {
		return false
	}
	cos := world.Clamp(offset.Dot(axis)/(distance*reach), -1, 1)
	return math.Acos(cos) <= c.HalfAngle
}

// Line is a segment of the given Width, as swept by a skillshot.
type Line struct {
	Start world.Vec2
	End   world.Vec2
	Width float64
}

func (Line) Name() string { return "line" }

func (l Line) Contains(u *world.Unit) bool {
	return world.DistanceToSegment(u.Position, l.Start, l.End) <= l.Width/2+u.Radius
}

// LineFrom builds a line from start along direction for length.
func LineFrom(start, direction world.Vec2, length, width float64) Line {
	return Line{Start: start, End: start.Add(direction.Normalize().Scale(length)), Width: width}
}

// Single matches exactly one unit.
type Single struct {
	Target *world.Unit
}

func (Single) Name() string { return "single" }

func (s Single) Contains(u *world.Unit) bool {
	return s.Target != nil && u == s.Target
}

// Circle matches units whose bodies overlap a disc.
type Circle struct {
	Center world.Vec2
	Radius float64
}

func (Circle) Name() string { return "circle" }

func (c Circle) Contains(u *world.Unit) bool {
	return u.Position.Distance(c.Center) <= c.Radius+u.Radius
}
