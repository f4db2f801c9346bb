// Package galaxy generates the deterministic contents of the asteroid field
// and traces laser shots across its grid.
package galaxy

import (
	"fmt"
	"strings"
)

// Point is a cell on the unbounded world grid
type Point struct {
	X, Y int32
}

// Add returns p shifted by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Less orders points by X, then Y
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// MapElement is the kind of object spawned on a cell
type MapElement uint8

const (
	Asteroid MapElement = iota
	FuelPod
)

func (e MapElement) String() string {
	switch e {
	case Asteroid:
		return "asteroid"
	case FuelPod:
		return "fuel_pod"
	default:
		return fmt.Sprintf("element(%d)", uint8(e))
	}
}

// Direction is one of the eight compass directions a ship can aim at
type Direction uint32

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// unit step per direction, indexed by ordinal
var steps = [...]Point{
	North:     {0, 1},
	NorthEast: {1, 1},
	East:      {1, 0},
	SouthEast: {1, -1},
	South:     {0, -1},
	SouthWest: {-1, -1},
	West:      {-1, 0},
	NorthWest: {-1, 1},
}

var directionNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Valid reports whether d is one of the eight known ordinals
func (d Direction) Valid() bool {
	return d < Direction(len(steps))
}

// Step returns the unit vector for d
func (d Direction) Step() (Point, error) {
	if !d.Valid() {
		return Point{}, fmt.Errorf("%w: %d", ErrUnknownDirection, uint32(d))
	}
	return steps[d], nil
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint32(d))
	}
	return directionNames[d]
}

// ParseDirection accepts compass names ("N", "ne", ...)
func ParseDirection(s string) (Direction, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}
