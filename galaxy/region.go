package galaxy

// Calc maps a coordinate to the center of the band of width size that
// contains it. The div > rem branch keeps negative coordinates from
// collapsing onto the band at zero; it is not a floor division.
func Calc(x, size int32) (int32, error) {
	if size <= 0 {
		return 0, &ConfigError{Key: RangeKey, Reason: "must be positive"}
	}
	div := x / size
	rem := x % size

	if div > rem {
		return (size+1)*(div-1) + size/2, nil
	}
	return (size+1)*div + size/2, nil
}

// CalcCenter applies Calc to both axes of p
func CalcCenter(p Point, size int32) (Point, error) {
	x, err := Calc(p.X, size)
	if err != nil {
		return Point{}, err
	}
	y, err := Calc(p.Y, size)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// Region is one populated square of the field
type Region struct {
	Center   Point
	Size     int32
	Elements RegionMap
}

// Bounds returns the inclusive corners cells can be drawn from
func (r Region) Bounds() (min, max Point) {
	half := r.Size / 2
	return Point{X: r.Center.X - half, Y: r.Center.Y - half},
		Point{X: r.Center.X + half, Y: r.Center.Y + half}
}

// Contains reports whether p lies inside the drawable square
func (r Region) Contains(p Point) bool {
	min, max := r.Bounds()
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

// DrawCenter returns the center of the region whose draw window holds p.
// Windows are spaced size+1 apart, so for an odd size some cells lie
// between windows; ok is false for those.
func DrawCenter(p Point, size int32) (center Point, ok bool, err error) {
	if size <= 0 {
		return Point{}, false, &ConfigError{Key: RangeKey, Reason: "must be positive"}
	}
	x, okX := drawAxis(p.X, size)
	y, okY := drawAxis(p.Y, size)
	return Point{X: x, Y: y}, okX && okY, nil
}

func drawAxis(v, size int32) (int32, bool) {
	stride := int64(size) + 1
	half := int64(size / 2)
	k := int64(v) / stride
	if int64(v)%stride < 0 {
		k--
	}
	c := k*stride + half
	return int32(c), int64(v) <= c+half
}
