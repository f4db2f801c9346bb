package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salammuloh/fca00c-asteroids/galaxy"
)

// worldStore is what a backend must offer to host the field
type worldStore interface {
	galaxy.Storage
	galaxy.Writer
	galaxy.Expirer
}

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	var store worldStore = db
	if cfg.RedisURL != "" {
		rs, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rs.Close()
		store = rs
	}

	params, err := galaxy.StoreParams(ctx, store, cfg.World.Params(), cfg.World.Reset)
	if err != nil {
		log.Fatalf("world parameters: %v", err)
	}
	log.Printf("world: range=%d seed=%d asteroids=%d fuel pods=%d",
		params.Size, params.Seed, params.AstDensity, params.PodDensity)

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	hub := NewHub(galaxy.NewWorld(store), db, analytics, cfg.LaserRange)
	go hub.Run()

	handler := SetupRoutes(hub, cfg)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: handler}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		log.Printf("Serving client files from %s", cfg.ClientDir)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)
}
