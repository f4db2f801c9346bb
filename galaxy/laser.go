package galaxy

import "fmt"

// LaserCollisions returns the cells a shot fired from origin passes
// through, origin first, rng+1 cells in total.
func LaserCollisions(origin Point, dir Direction, rng int32) ([]Point, error) {
	step, err := dir.Step()
	if err != nil {
		return nil, err
	}
	if rng < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRange, rng)
	}

	ray := make([]Point, 0, int(rng)+1)
	// loop exits on equality so rng == MaxInt32 terminates
	cell := origin
	for n := int32(0); ; n++ {
		ray = append(ray, cell)
		if n == rng {
			break
		}
		cell = cell.Add(step)
	}
	return ray, nil
}
