package galaxy

import (
	"slices"
)

// Params are the world-wide generation parameters
type Params struct {
	Seed       int32
	Size       int32
	AstDensity uint32 // asteroid draws per region
	PodDensity uint32 // fuel pod draws per region
}

// Validate rejects parameters that cannot describe a region
func (p Params) Validate() error {
	if p.Size <= 0 {
		return &ConfigError{Key: RangeKey, Reason: "must be positive"}
	}
	return nil
}

// RegionMap holds the sparse contents of one region
type RegionMap map[Point]MapElement

// Points returns the occupied cells ordered by X, then Y
func (m RegionMap) Points() []Point {
	pts := make([]Point, 0, len(m))
	for p := range m {
		pts = append(pts, p)
	}
	slices.SortFunc(pts, func(a, b Point) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return pts
}

// Count returns how many cells hold kind
func (m RegionMap) Count(kind MapElement) int {
	n := 0
	for _, e := range m {
		if e == kind {
			n++
		}
	}
	return n
}

// ExpiryFunc reports whether a cell has already been consumed
type ExpiryFunc func(Point) bool

// Populate draws the contents of the region centered at center. All
// asteroid draws happen before fuel pod draws, so a fuel pod replaces an
// asteroid drawn on the same cell. Expired cells are skipped but still
// consume their draw.
func Populate(center Point, params Params, isExpired ExpiryFunc) (RegionMap, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if isExpired == nil {
		isExpired = func(Point) bool { return false }
	}

	rng := newFieldRNG(regionSeed(center, params.Seed))
	half := params.Size / 2
	draw := func() Point {
		x := rng.intInclusive(center.X-half, center.X+half)
		y := rng.intInclusive(center.Y-half, center.Y+half)
		return Point{X: x, Y: y}
	}

	m := make(RegionMap)
	for i := uint32(0); i < params.AstDensity; i++ {
		p := draw()
		if !isExpired(p) {
			m[p] = Asteroid
		}
	}
	for i := uint32(0); i < params.PodDensity; i++ {
		p := draw()
		if !isExpired(p) {
			m[p] = FuelPod
		}
	}
	return m, nil
}
