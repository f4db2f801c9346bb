package galaxy

import (
	"errors"
	"testing"
)

func equalRay(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLaserEast(t *testing.T) {
	ray, err := LaserCollisions(Point{5, 5}, East, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{5, 5}, {6, 5}, {7, 5}, {8, 5}}
	if !equalRay(ray, want) {
		t.Errorf("expected %v, got %v", want, ray)
	}
}

func TestLaserNorthEast(t *testing.T) {
	ray, err := LaserCollisions(Point{0, 0}, NorthEast, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Point{{0, 0}, {1, 1}, {2, 2}}
	if !equalRay(ray, want) {
		t.Errorf("expected %v, got %v", want, ray)
	}
}

func TestLaserAllDirections(t *testing.T) {
	ends := map[Direction]Point{
		North:     {10, 12},
		NorthEast: {12, 12},
		East:      {12, 10},
		SouthEast: {12, 8},
		South:     {10, 8},
		SouthWest: {8, 8},
		West:      {8, 10},
		NorthWest: {8, 12},
	}
	for d, end := range ends {
		ray, err := LaserCollisions(Point{10, 10}, d, 2)
		if err != nil {
			t.Fatalf("%v: %v", d, err)
		}
		if len(ray) != 3 {
			t.Fatalf("%v: expected 3 cells, got %d", d, len(ray))
		}
		if ray[0] != (Point{10, 10}) || ray[2] != end {
			t.Errorf("%v: expected ray ending at %v, got %v", d, end, ray)
		}
	}
}

func TestLaserZeroRange(t *testing.T) {
	ray, err := LaserCollisions(Point{-4, 7}, SouthWest, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equalRay(ray, []Point{{-4, 7}}) {
		t.Errorf("expected origin only, got %v", ray)
	}
}

func TestLaserUnknownDirection(t *testing.T) {
	ray, err := LaserCollisions(Point{1, 1}, Direction(8), 1)
	if !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
	if ray != nil {
		t.Errorf("expected no partial ray, got %v", ray)
	}
}

func TestLaserNegativeRange(t *testing.T) {
	_, err := LaserCollisions(Point{}, East, -1)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("ne")
	if err != nil || d != NorthEast {
		t.Errorf("expected NE, got %v %v", d, err)
	}
	if _, err := ParseDirection("up"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
	if West.String() != "W" {
		t.Errorf("expected W, got %s", West)
	}
}
