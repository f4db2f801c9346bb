package galaxy

import "math/bits"

// fieldRNG is xoshiro128++ seeded through SplitMix64. Region contents are
// defined by its output, so the algorithm and the sampler below must not
// change without regenerating every world.
type fieldRNG struct {
	s [4]uint32
}

const splitMixGamma = 0x9e3779b97f4a7c15

func splitMix64(state *uint64) uint64 {
	*state += splitMixGamma
	z := *state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func newFieldRNG(seed uint64) *fieldRNG {
	r := &fieldRNG{}
	for i := 0; i < 2; i++ {
		z := splitMix64(&seed)
		r.s[2*i] = uint32(z)
		r.s[2*i+1] = uint32(z >> 32)
	}
	if r.s == [4]uint32{} {
		// xoshiro cannot leave the all-zero state
		return newFieldRNG(0)
	}
	return r
}

func (r *fieldRNG) next() uint32 {
	s := &r.s
	result := bits.RotateLeft32(s[0]+s[3], 7) + s[0]

	t := s[1] << 9
	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft32(s[3], 11)

	return result
}

// intInclusive draws uniformly from [low, high] using widening multiply
// with a conservative rejection zone.
func (r *fieldRNG) intInclusive(low, high int32) int32 {
	span := uint32(high-low) + 1
	if span == 0 {
		return int32(r.next())
	}
	zone := (span << bits.LeadingZeros32(span)) - 1
	for {
		hi, lo := bits.Mul32(r.next(), span)
		if lo <= zone {
			return low + int32(hi)
		}
	}
}

// regionSeed ties a region's sequence to its center and the world seed.
// The multiply-add wraps at 32 bits and is sign-extended on widening.
func regionSeed(center Point, seed int32) uint64 {
	return uint64(int64(center.X*seed + center.Y))
}
