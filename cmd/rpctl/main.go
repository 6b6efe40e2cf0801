// Command rpctl is a dev CLI for reelpress maintenance and debugging tasks.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/browser"

	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/config"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/orchestrator"
	"github.com/amirkhadim36-creator/reelpress/internal/store"
	"github.com/amirkhadim36-creator/reelpress/internal/synth"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "gen":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rpctl gen <catalog-id>")
			os.Exit(1)
		}
		runGen(os.Args[2])
	case "open":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rpctl open <config|cache>")
			os.Exit(1)
		}
		runOpen(os.Args[2])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: rpctl <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  gen <catalog-id>  Generate a review for one catalog entry")
	fmt.Println("  open config       Open config file in default editor")
	fmt.Println("  open cache        Open cache directory in file explorer")
}

func runGen(idArg string) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		log.Fatalf("Invalid catalog id %q: %v", idArg, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	details, err := catalogClient.Details(ctx, id)
	if err != nil {
		log.Fatalf("Detail lookup failed: %v", err)
	}

	orch := orchestrator.New(feedstate.New(), catalogClient, postStore, synthesizer, orchestrator.Options{})
	defer orch.Close()

	title := details.Title
	if title == "" {
		title = fmt.Sprintf("catalog entry %d", id)
	}

	post, err := orch.GenerateFor(ctx, &catalog.Movie{
		ID:           id,
		Title:        title,
		BackdropPath: details.BackdropPath,
		PosterPath:   details.PosterPath,
	})
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	fmt.Printf("Published %q (post id %s)\n", post.Title, post.ID)
}

func runOpen(what string) {
	var path string
	var err error

	switch what {
	case "config":
		path, err = config.ConfigPath()
	case "cache":
		path, err = config.CacheDir()
	default:
		fmt.Printf("Unknown target: %s\n", what)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
}
