package main

import (
	"context"
	"testing"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

func TestDBWorldSettings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if ok, err := db.Has(ctx, galaxy.SeedKey); err != nil || ok {
		t.Fatalf("fresh db should have no seed, got %v %v", ok, err)
	}
	if err := db.Set(ctx, galaxy.SeedKey, -42); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Set(ctx, galaxy.SeedKey, 99); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := db.Get(ctx, galaxy.SeedKey)
	if err != nil || !ok || v != 99 {
		t.Errorf("expected seed 99, got %d %v %v", v, ok, err)
	}
}

func TestDBExpire(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := galaxy.Point{X: -3, Y: 7}

	if ok, _ := db.Has(ctx, galaxy.ExpiredKey(p)); ok {
		t.Fatal("cell should not start expired")
	}
	marked, err := db.Expire(ctx, p)
	if err != nil || !marked {
		t.Fatalf("first expire should mark the cell, got %v %v", marked, err)
	}
	marked, err = db.Expire(ctx, p)
	if err != nil || marked {
		t.Errorf("second expire should report already marked, got %v %v", marked, err)
	}
	if ok, _ := db.Has(ctx, galaxy.ExpiredKey(p)); !ok {
		t.Error("cell should be expired")
	}
	if ok, _ := db.Has(ctx, galaxy.ExpiredKey(galaxy.Point{X: 7, Y: -3})); ok {
		t.Error("mirrored cell should not be expired")
	}
}

func TestDBCollectedCount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := db.CreatePilot("Juno", "x")
	if err != nil {
		t.Fatal(err)
	}
	other, _ := db.CreatePilot("Metis", "x")

	db.RecordCollect(ctx, id, galaxy.Point{X: 1, Y: 1}, galaxy.Asteroid)
	db.RecordCollect(ctx, id, galaxy.Point{X: 2, Y: 2}, galaxy.FuelPod)
	db.RecordCollect(ctx, id, galaxy.Point{X: 4, Y: 2}, galaxy.FuelPod)
	db.RecordCollect(ctx, other, galaxy.Point{X: 3, Y: 3}, galaxy.Asteroid)

	n, err := db.CollectedCount(ctx, id)
	if err != nil || n != 3 {
		t.Errorf("expected 3 collected, got %d %v", n, err)
	}
	kinds, err := db.CollectedByKind(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if kinds["asteroid"] != 1 || kinds["fuel_pod"] != 2 {
		t.Errorf("unexpected breakdown %v", kinds)
	}
}

func TestDBBacksWorld(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := galaxy.StoreParams(ctx, db, testParams, false); err != nil {
		t.Fatal(err)
	}
	w := galaxy.NewWorld(db)

	m, err := w.BuildRangeMap(ctx, galaxy.Point{X: 25, Y: 25})
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 7 {
		t.Fatalf("expected 7 elements, got %d", len(m))
	}

	e, err := w.Collect(ctx, galaxy.Point{X: 18, Y: 33})
	if err != nil || e != galaxy.Asteroid {
		t.Fatalf("expected to collect an asteroid, got %v %v", e, err)
	}
	m, _ = w.BuildRangeMap(ctx, galaxy.Point{X: 25, Y: 25})
	if _, ok := m[galaxy.Point{X: 18, Y: 33}]; ok || len(m) != 6 {
		t.Errorf("collected asteroid should be gone, got %v", m)
	}
}

func TestDBSettings(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("missing"); v != "" {
		t.Errorf("expected empty setting, got %q", v)
	}
	db.SetSetting("k", "a")
	db.SetSetting("k", "b")
	if v := db.GetSetting("k"); v != "b" {
		t.Errorf("expected b, got %q", v)
	}
}
