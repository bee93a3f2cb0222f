// Package main provides a read-only inspection tool for an Angel Archive
// database directory.
//
// Usage:
//
//	DB_PATH=~/AngelArchive/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/angelarchive/archive-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/AngelArchive/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	users := 0
	angels := 0
	series := 0
	records := 0
	sessions := 0

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.Contains(key, "idx:"):
				// Secondary index keys carry no payload worth counting.
			case strings.HasPrefix(key, "user:"):
				users++
			case strings.HasPrefix(key, "angel:"):
				angels++
			case strings.HasPrefix(key, "series:"):
				series++
			case strings.HasPrefix(key, "record:"):
				records++
			case strings.HasPrefix(key, "session:"):
				sessions++
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Printf("Users:    %d\n", users)
	fmt.Printf("Series:   %d\n", series)
	fmt.Printf("Angels:   %d\n", angels)
	fmt.Printf("Records:  %d\n", records)
	fmt.Printf("Sessions: %d\n", sessions)
	fmt.Println()

	// Show a few angels so a broken seed is easy to spot.
	shown := 0
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("angel:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid() && shown < 5; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var angel domain.Angel
				if err := json.Unmarshal(val, &angel); err != nil {
					return err
				}
				fmt.Printf("Angel: %s (#%d, series %s)\n", angel.Name, angel.CardNumber, angel.SeriesID)
				shown++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Angel listing failed: %v", err)
	}
}
