package galaxy

import (
	"context"
	"errors"
	"maps"
	"testing"
)

func newTestWorld(t *testing.T) (*World, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	if _, err := StoreParams(context.Background(), store, fieldParams, false); err != nil {
		t.Fatalf("store params: %v", err)
	}
	return NewWorld(store), store
}

type brokenStore struct {
	*MemoryStore
	err error
}

func (s brokenStore) Has(ctx context.Context, key DataKey) (bool, error) {
	if key.Kind == KeyExpired {
		return false, s.err
	}
	return s.MemoryStore.Has(ctx, key)
}

func TestLoadParamsRequiresEveryKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, RangeKey, 16)
	store.Set(ctx, SeedKey, 7)
	store.Set(ctx, AstDensityKey, 6)

	_, err := LoadParams(ctx, store)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Key != PodDensityKey {
		t.Fatalf("expected missing pod density, got %v", err)
	}

	store.Set(ctx, PodDensityKey, 2)
	p, err := LoadParams(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if p != fieldParams {
		t.Errorf("expected %+v, got %+v", fieldParams, p)
	}
}

func TestLoadParamsRejectsZeroRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, RangeKey, 0)
	store.Set(ctx, SeedKey, 7)
	store.Set(ctx, AstDensityKey, 6)
	store.Set(ctx, PodDensityKey, 2)

	w := NewWorld(store)
	if _, err := w.CalcCenter(ctx, Point{1, 1}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
	store.Set(ctx, RangeKey, 16)
	store.Set(ctx, AstDensityKey, -1)
	if _, err := w.BuildRangeMap(ctx, Point{8, 8}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error for negative density, got %v", err)
	}
}

func TestStoreParamsKeepsExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Set(ctx, SeedKey, 99)

	p, err := StoreParams(ctx, store, fieldParams, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.Seed != 99 || p.Size != 16 {
		t.Errorf("expected stored seed to survive, got %+v", p)
	}

	p, _ = StoreParams(ctx, store, fieldParams, true)
	if p.Seed != 7 {
		t.Errorf("expected overwrite, got %+v", p)
	}
}

func TestWorldBuildRangeMapMatchesPopulate(t *testing.T) {
	w, _ := newTestWorld(t)
	ctx := context.Background()

	center, err := w.CalcCenter(ctx, Point{20, 30})
	if err != nil {
		t.Fatal(err)
	}
	if center != (Point{25, 25}) {
		t.Fatalf("expected center (25,25), got %v", center)
	}
	got, err := w.BuildRangeMap(ctx, center)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Populate(center, fieldParams, nil)
	if !maps.Equal(got, want) {
		t.Errorf("world map %v differs from %v", got, want)
	}
}

func TestWorldStoreErrorAborts(t *testing.T) {
	ctx := context.Background()
	_, mem := newTestWorld(t)
	boom := errors.New("disk gone")
	w := NewWorld(brokenStore{MemoryStore: mem, err: boom})

	m, err := w.BuildRangeMap(ctx, Point{25, 25})
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
	if m != nil {
		t.Errorf("expected no map on error, got %v", m)
	}
}

func TestWorldCollectExpires(t *testing.T) {
	w, _ := newTestWorld(t)
	ctx := context.Background()

	e, err := w.Collect(ctx, Point{17, 21})
	if err != nil {
		t.Fatal(err)
	}
	if e != FuelPod {
		t.Errorf("expected fuel pod, got %v", e)
	}

	m, _ := w.BuildRangeMap(ctx, Point{25, 25})
	if _, ok := m[Point{17, 21}]; ok {
		t.Error("collected cell should not be generated again")
	}
	if len(m) != 6 {
		t.Errorf("expected 6 remaining entries, got %d", len(m))
	}

	if _, err := w.Collect(ctx, Point{17, 21}); !errors.Is(err, ErrNothingThere) {
		t.Errorf("expected ErrNothingThere on second collect, got %v", err)
	}
	if _, err := w.Collect(ctx, Point{25, 25}); !errors.Is(err, ErrNothingThere) {
		t.Errorf("expected ErrNothingThere on empty cell, got %v", err)
	}
}

type readOnlyStore struct{ Storage }

func TestWorldCollectNeedsExpirer(t *testing.T) {
	_, mem := newTestWorld(t)
	w := NewWorld(readOnlyStore{mem})
	if _, err := w.Collect(context.Background(), Point{17, 21}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestWorldFireLaser(t *testing.T) {
	w, _ := newTestWorld(t)
	shot, err := w.FireLaser(context.Background(), Point{17, 25}, East, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(shot.Ray) != 11 {
		t.Errorf("expected 11 ray cells, got %d", len(shot.Ray))
	}
	if len(shot.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %v", shot.Hits)
	}
	h := shot.Hits[0]
	if h.Point != (Point{23, 25}) || h.Element != FuelPod || h.Step != 6 {
		t.Errorf("unexpected hit %+v", h)
	}
}

func TestWorldFireLaserUnknownDirection(t *testing.T) {
	w, _ := newTestWorld(t)
	shot, err := w.FireLaser(context.Background(), Point{}, Direction(11), 3)
	if !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("expected ErrUnknownDirection, got %v", err)
	}
	if shot.Ray != nil || shot.Hits != nil {
		t.Errorf("expected empty shot, got %+v", shot)
	}
	if !IsUserError(err) {
		t.Error("unknown direction should be a user error")
	}
}

func TestWorldFarRegions(t *testing.T) {
	w, _ := newTestWorld(t)
	ctx := context.Background()

	region, err := w.Region(ctx, Point{1708, 1708})
	if err != nil {
		t.Fatal(err)
	}
	if region.Center != (Point{1793, 1793}) || len(region.Elements) != 8 {
		t.Fatalf("unexpected region %v with %d elements", region.Center, len(region.Elements))
	}

	shot, err := w.FireLaser(ctx, Point{1795, 1792}, South, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []Hit{
		{Point: Point{1795, 1792}, Element: Asteroid, Step: 0},
		{Point: Point{1795, 1787}, Element: Asteroid, Step: 5},
	}
	if len(shot.Hits) != len(want) {
		t.Fatalf("expected %v, got %v", want, shot.Hits)
	}
	for i := range want {
		if shot.Hits[i] != want[i] {
			t.Errorf("hit %d: expected %+v, got %+v", i, want[i], shot.Hits[i])
		}
	}

	e, err := w.Collect(ctx, Point{1800, 1785})
	if err != nil || e != FuelPod {
		t.Errorf("expected fuel pod at (1800,1785), got %v %v", e, err)
	}

	e, err = w.Collect(ctx, Point{-2124, -518})
	if err != nil || e != FuelPod {
		t.Errorf("expected fuel pod at (-2124,-518), got %v %v", e, err)
	}
}

func TestWorldScannedObjectsAreReachable(t *testing.T) {
	w, _ := newTestWorld(t)
	ctx := context.Background()

	for x := int32(-3000); x <= 3000; x += 17 {
		region, err := w.Region(ctx, Point{x, x / 3})
		if err != nil {
			t.Fatal(err)
		}
		for p, kind := range region.Elements {
			shot, err := w.FireLaser(ctx, p, East, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(shot.Hits) != 1 || shot.Hits[0].Element != kind {
				t.Fatalf("laser at %v missed %v: %+v", p, kind, shot.Hits)
			}
			e, err := w.Collect(ctx, p)
			if err != nil || e != kind {
				t.Fatalf("collect %v: expected %v, got %v %v", p, kind, e, err)
			}
		}
	}
}
