package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/config"
	"github.com/amirkhadim36-creator/reelpress/internal/feed"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/orchestrator"
	"github.com/amirkhadim36-creator/reelpress/internal/server"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
	"github.com/amirkhadim36-creator/reelpress/internal/synth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load or create configuration
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			// First run - create default config
			cfg = config.Default()
			if err := cfg.Save(); err != nil {
				log.Printf("Warning: could not save default config: %v", err)
			} else {
				path, _ := config.ConfigPath()
				log.Printf("Created default config at: %s", path)
			}
		} else {
			log.Printf("Warning: could not load config: %v (using defaults)", err)
			cfg = config.Default()
		}
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	postStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open post store: %v", err)
	}
	defer postStore.Close()

	catalogClient := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.ImageBaseURL)

	synthesizer, err := synth.New(cfg.Synthesis, cfg.Narration, cfg.Clips)
	if err != nil {
		log.Fatalf("Failed to initialize synthesizer: %v", err)
	}

	state := feedstate.New()

	controller := feed.NewController(state, catalogClient, postStore, cfg.Feed.PrependCap,
		time.Duration(cfg.Feed.SearchDebounceMS)*time.Millisecond)
	defer controller.Close()

	orch := orchestrator.New(state, catalogClient, postStore, synthesizer, orchestrator.Options{
		PublishDelay: time.Duration(cfg.Autopilot.PublishDelayMilli) * time.Millisecond,
		Interval:     time.Duration(cfg.Autopilot.IntervalSeconds) * time.Second,
		SampleRate:   cfg.Narration.SampleRate,
	})
	defer orch.Close()

	srv, err := server.New(state, controller, orch, catalogClient)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Warm the view: posts, first catalog page, trending topics.
	if err := controller.Refresh(context.Background()); err != nil {
		log.Printf("Warning: initial refresh incomplete: %v", err)
	}

	if cfg.Server.OpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := browser.OpenURL("http://" + cfg.Server.Addr); err != nil {
				log.Printf("Failed to open browser: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Addr)
	}()

	log.Println("reelpress starting...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
