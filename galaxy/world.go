package galaxy

import (
	"context"
	"errors"
	"fmt"
)

// World answers field queries using parameters and expiry markers kept in
// a Storage. It holds no other state and is safe for concurrent use when
// the store is.
type World struct {
	store Storage
}

// NewWorld creates a World backed by store
func NewWorld(store Storage) *World {
	return &World{store: store}
}

// Params loads the current generation parameters
func (w *World) Params(ctx context.Context) (Params, error) {
	return LoadParams(ctx, w.store)
}

// CalcCenter returns the center of the region containing p
func (w *World) CalcCenter(ctx context.Context, p Point) (Point, error) {
	params, err := w.Params(ctx)
	if err != nil {
		return Point{}, err
	}
	return CalcCenter(p, params.Size)
}

// BuildRangeMap populates the region centered at center
func (w *World) BuildRangeMap(ctx context.Context, center Point) (RegionMap, error) {
	params, err := w.Params(ctx)
	if err != nil {
		return nil, err
	}
	return w.populate(ctx, center, params)
}

// populate runs Populate with expiry read from the store. The first store
// error aborts the whole build.
func (w *World) populate(ctx context.Context, center Point, params Params) (RegionMap, error) {
	var storeErr error
	isExpired := func(p Point) bool {
		if storeErr != nil {
			return false
		}
		ok, err := w.store.Has(ctx, ExpiredKey(p))
		if err != nil {
			storeErr = err
			return false
		}
		return ok
	}
	m, err := Populate(center, params, isExpired)
	if err != nil {
		return nil, err
	}
	if storeErr != nil {
		return nil, fmt.Errorf("read expiry for region %s: %w", center, storeErr)
	}
	return m, nil
}

// Region maps p to its region and populates it
func (w *World) Region(ctx context.Context, p Point) (Region, error) {
	params, err := w.Params(ctx)
	if err != nil {
		return Region{}, err
	}
	return w.region(ctx, p, params)
}

func (w *World) region(ctx context.Context, p Point, params Params) (Region, error) {
	center, err := CalcCenter(p, params.Size)
	if err != nil {
		return Region{}, err
	}
	m, err := w.populate(ctx, center, params)
	if err != nil {
		return Region{}, err
	}
	return Region{Center: center, Size: params.Size, Elements: m}, nil
}

// LaserCollisions traces a shot; it needs no stored state
func (w *World) LaserCollisions(origin Point, dir Direction, rng int32) ([]Point, error) {
	return LaserCollisions(origin, dir, rng)
}

// Hit is an occupied cell on a laser's path
type Hit struct {
	Point   Point
	Element MapElement
	Step    int
}

// Shot is a traced laser with the objects it crosses, in ray order
type Shot struct {
	Ray  []Point
	Hits []Hit
}

// FireLaser traces a shot and intersects it with the contents of every
// region whose draw window it crosses. Each region is built once per shot.
func (w *World) FireLaser(ctx context.Context, origin Point, dir Direction, rng int32) (Shot, error) {
	ray, err := LaserCollisions(origin, dir, rng)
	if err != nil {
		return Shot{}, err
	}
	params, err := w.Params(ctx)
	if err != nil {
		return Shot{}, err
	}

	regions := make(map[Point]RegionMap)
	shot := Shot{Ray: ray}
	for i, cell := range ray {
		center, ok, err := DrawCenter(cell, params.Size)
		if err != nil {
			return Shot{}, err
		}
		if !ok {
			continue
		}
		m, ok := regions[center]
		if !ok {
			m, err = w.populate(ctx, center, params)
			if err != nil {
				return Shot{}, err
			}
			regions[center] = m
		}
		if e, ok := m[cell]; ok {
			shot.Hits = append(shot.Hits, Hit{Point: cell, Element: e, Step: i})
		}
	}
	return shot, nil
}

// Collect consumes whatever occupies p and marks the cell expired so it is
// never generated again.
func (w *World) Collect(ctx context.Context, p Point) (MapElement, error) {
	expirer, ok := w.store.(Expirer)
	if !ok {
		return 0, ErrReadOnly
	}
	params, err := w.Params(ctx)
	if err != nil {
		return 0, err
	}
	center, ok, err := DrawCenter(p, params.Size)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w at %s", ErrNothingThere, p)
	}
	m, err := w.populate(ctx, center, params)
	if err != nil {
		return 0, err
	}
	e, ok := m[p]
	if !ok {
		return 0, fmt.Errorf("%w at %s", ErrNothingThere, p)
	}
	marked, err := expirer.Expire(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("expire %s: %w", p, err)
	}
	if !marked {
		// lost a race with another collector
		return 0, fmt.Errorf("%w at %s", ErrNothingThere, p)
	}
	return e, nil
}

// IsUserError reports whether err was caused by the caller's input rather
// than by configuration or storage.
func IsUserError(err error) bool {
	return errors.Is(err, ErrUnknownDirection) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrNothingThere)
}
