package main

import (
	"errors"
	"testing"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CLIENT_DIR", t.TempDir())
	t.Setenv("WORLD_SEED", "-5")
	t.Setenv("WORLD_RANGE", "32")
	t.Setenv("WORLD_AST_DENSITY", "12")
	t.Setenv("LASER_RANGE", "20")
	t.Setenv("CORS_ORIGINS", "https://a.test,https://b.test")

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.World.Params()
	if p.Seed != -5 || p.Size != 32 || p.AstDensity != 12 || p.PodDensity != 2 {
		t.Errorf("unexpected world params %+v", p)
	}
	if cfg.LaserRange != 20 {
		t.Errorf("expected laser range 20, got %d", cfg.LaserRange)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	t.Setenv("CLIENT_DIR", t.TempDir())
	t.Setenv("ADDR", ":7000")
	t.Setenv("DB_PATH", "env.db")

	cfg, err := LoadConfig([]string{"-addr", ":9090", "-db", "flag.db", "-reset-world"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || cfg.DBPath != "flag.db" {
		t.Errorf("flags should win, got %q %q", cfg.Addr, cfg.DBPath)
	}
	if !cfg.World.Reset {
		t.Error("expected reset-world")
	}
}

func TestLoadConfigRejectsEmptyRegion(t *testing.T) {
	t.Setenv("CLIENT_DIR", t.TempDir())
	t.Setenv("WORLD_RANGE", "0")

	_, err := LoadConfig(nil)
	if !errors.Is(err, galaxy.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadConfigBadFlag(t *testing.T) {
	t.Setenv("CLIENT_DIR", t.TempDir())
	if _, err := LoadConfig([]string{"-warp"}); err == nil {
		t.Error("unknown flag should fail")
	}
}
