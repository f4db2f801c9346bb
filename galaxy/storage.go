package galaxy

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// KeyKind distinguishes the values kept in world storage
type KeyKind uint8

const (
	KeyRange KeyKind = iota + 1
	KeySeed
	KeyAstDensity
	KeyPodDensity
	KeyExpired
)

// DataKey addresses one value in world storage. Point is only meaningful
// for KeyExpired.
type DataKey struct {
	Kind  KeyKind
	Point Point
}

var (
	RangeKey      = DataKey{Kind: KeyRange}
	SeedKey       = DataKey{Kind: KeySeed}
	AstDensityKey = DataKey{Kind: KeyAstDensity}
	PodDensityKey = DataKey{Kind: KeyPodDensity}
)

// ExpiredKey addresses the expiry marker of p
func ExpiredKey(p Point) DataKey {
	return DataKey{Kind: KeyExpired, Point: p}
}

func (k DataKey) String() string {
	switch k.Kind {
	case KeyRange:
		return "range"
	case KeySeed:
		return "seed"
	case KeyAstDensity:
		return "ast_density"
	case KeyPodDensity:
		return "pod_density"
	case KeyExpired:
		return fmt.Sprintf("expired:%d:%d", k.Point.X, k.Point.Y)
	default:
		return fmt.Sprintf("key(%d)", k.Kind)
	}
}

// Storage is the read side of the world's key-value state
type Storage interface {
	Get(ctx context.Context, key DataKey) (int64, bool, error)
	Has(ctx context.Context, key DataKey) (bool, error)
}

// Writer stores world parameters
type Writer interface {
	Set(ctx context.Context, key DataKey, value int64) error
}

// Expirer records consumed cells. Expire reports whether p was newly marked.
type Expirer interface {
	Expire(ctx context.Context, p Point) (bool, error)
}

// LoadParams reads the generation parameters from store. Every parameter
// must be present; there are no defaults.
func LoadParams(ctx context.Context, store Storage) (Params, error) {
	get := func(key DataKey) (int64, error) {
		v, ok, err := store.Get(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			return 0, &ConfigError{Key: key, Reason: "is not set"}
		}
		return v, nil
	}

	var p Params
	size, err := get(RangeKey)
	if err != nil {
		return Params{}, err
	}
	if size <= 0 || size > math.MaxInt32 {
		return Params{}, &ConfigError{Key: RangeKey, Reason: "must be positive"}
	}
	p.Size = int32(size)

	seed, err := get(SeedKey)
	if err != nil {
		return Params{}, err
	}
	// only the low 32 bits take part in seed derivation
	p.Seed = int32(seed)

	for _, d := range []struct {
		key DataKey
		dst *uint32
	}{
		{AstDensityKey, &p.AstDensity},
		{PodDensityKey, &p.PodDensity},
	} {
		v, err := get(d.key)
		if err != nil {
			return Params{}, err
		}
		if v < 0 || v > math.MaxUint32 {
			return Params{}, &ConfigError{Key: d.key, Reason: "out of range"}
		}
		*d.dst = uint32(v)
	}
	return p, nil
}

// StoreParams writes p into store, skipping keys that already hold a value
// unless overwrite is set. It returns the parameters now in effect.
func StoreParams(ctx context.Context, store interface {
	Storage
	Writer
}, p Params, overwrite bool) (Params, error) {
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	values := []struct {
		key DataKey
		v   int64
	}{
		{RangeKey, int64(p.Size)},
		{SeedKey, int64(p.Seed)},
		{AstDensityKey, int64(p.AstDensity)},
		{PodDensityKey, int64(p.PodDensity)},
	}
	for _, kv := range values {
		if !overwrite {
			ok, err := store.Has(ctx, kv.key)
			if err != nil {
				return Params{}, fmt.Errorf("check %s: %w", kv.key, err)
			}
			if ok {
				continue
			}
		}
		if err := store.Set(ctx, kv.key, kv.v); err != nil {
			return Params{}, fmt.Errorf("write %s: %w", kv.key, err)
		}
	}
	return LoadParams(ctx, store)
}

// MemoryStore keeps world state in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	values  map[DataKey]int64
	expired map[Point]struct{}
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[DataKey]int64),
		expired: make(map[Point]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, key DataKey) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key.Kind == KeyExpired {
		_, ok := s.expired[key.Point]
		if ok {
			return 1, true, nil
		}
		return 0, false, nil
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Has(ctx context.Context, key DataKey) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *MemoryStore) Set(_ context.Context, key DataKey, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.Kind == KeyExpired {
		s.expired[key.Point] = struct{}{}
		return nil
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, p Point) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expired[p]; ok {
		return false, nil
	}
	s.expired[p] = struct{}{}
	return true, nil
}
