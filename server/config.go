package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

// Config holds server settings read from .env, the environment and flags
type Config struct {
	Addr        string   `env:"ADDR" envDefault:":8080"`
	ClientDir   string   `env:"CLIENT_DIR"`
	DBPath      string   `env:"DB_PATH" envDefault:"asteroids.db"`
	RedisURL    string   `env:"REDIS_URL"`
	RedisPrefix string   `env:"REDIS_PREFIX" envDefault:"asteroids:"`
	PublicURL   string   `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LaserRange  int32    `env:"LASER_RANGE" envDefault:"8"` // longest shot a client may request

	World WorldConfig `envPrefix:"WORLD_"`
}

// WorldConfig is written into world storage on first start. Values already
// stored win unless Reset is set, so a running world keeps its seed.
type WorldConfig struct {
	Seed       int32  `env:"SEED" envDefault:"1337"`
	Range      int32  `env:"RANGE" envDefault:"16"`
	AstDensity uint32 `env:"AST_DENSITY" envDefault:"6"` // 6 asteroids per 16x16 region
	PodDensity uint32 `env:"POD_DENSITY" envDefault:"2"` // 2 fuel pods per 16x16 region
	Reset      bool   `env:"RESET"`
}

// Params converts to generation parameters
func (w WorldConfig) Params() galaxy.Params {
	return galaxy.Params{
		Seed:       w.Seed,
		Size:       w.Range,
		AstDensity: w.AstDensity,
		PodDensity: w.PodDensity,
	}
}

// LoadConfig reads configuration; args are command-line flags without the
// program name.
func LoadConfig(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("could not read .env: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fset.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to client directory (default: ../client)")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fset.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for world state (optional)")
	fset.BoolVar(&cfg.World.Reset, "reset-world", cfg.World.Reset, "Overwrite stored world parameters")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ClientDir == "" {
		cfg.ClientDir = defaultClientDir()
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultClientDir() string {
	exe, _ := os.Executable()
	dir := filepath.Join(filepath.Dir(exe), "..", "client")
	// Fallback for development
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../client"
	}
	return dir
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.LaserRange < 0 {
		return fmt.Errorf("LASER_RANGE must not be negative")
	}
	return c.World.Params().Validate()
}
