// Package main provides a tool to load an angel catalog seed file into the
// database without running the server.
//
// Usage:
//
//	DB_PATH=~/AngelArchive/data/db go run ./cmd/seed -seed catalog.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/angelarchive/archive-server/internal/catalog"
	"github.com/angelarchive/archive-server/internal/store"
)

var seedPath = flag.String("seed", "", "Path to the catalog seed JSON file")

func main() {
	flag.Parse()

	if *seedPath == "" {
		log.Fatal("-seed is required")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/AngelArchive/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	seed, err := catalog.LoadSeed(*seedPath)
	if err != nil {
		log.Fatalf("Invalid seed file: %v", err)
	}

	loader := catalog.NewLoader(s, nil)
	if err := loader.Apply(ctx, seed); err != nil {
		log.Fatalf("Failed to apply seed: %v", err)
	}

	fmt.Printf("Catalog loaded: %d series, %d angels\n", len(seed.Series), len(seed.Angels))
}
