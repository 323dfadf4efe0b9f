package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"telemetry-hub/internal/db"

	"github.com/spf13/pflag"
)

// Bulk-upserts metadata entries into one scope. The file is a JSON object
// keyed by original key:
//
//	{"temp": {"label": "Temperature", "unit": "C", "description": "...", "category": "sensor"}}

type entry struct {
	Label       string `json:"label"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var categories = map[string]bool{
	db.CategorySensor:    true,
	db.CategoryStatus:    true,
	db.CategoryTechnical: true,
	db.CategoryOther:     true,
}

func main() {
	connString := pflag.String("conn", os.Getenv("HUB_POSTGRES_CONN_STRING"), "postgres connection string")
	scope := pflag.String("scope", db.SystemScope, "user id to import into, or system for the shared scope")
	file := pflag.String("file", "metadata.json", "metadata JSON file")
	pflag.Parse()

	raw, err := os.ReadFile(*file)
	if err != nil {
		panic(fmt.Errorf("failed to read %s: %w", *file, err))
	}
	var entries map[string]entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		panic(fmt.Errorf("failed to decode %s: %w", *file, err))
	}

	ctx := context.Background()
	store, err := db.Init(ctx, db.Config{ConnString: *connString})
	if err != nil {
		panic(err)
	}
	defer store.Close()

	imported := 0
	for key, e := range entries {
		category := strings.ToLower(e.Category)
		if !categories[category] {
			category = db.CategoryOther
		}
		label := e.Label
		if label == "" {
			label = key
		}
		err := store.UpsertMetadata(ctx, db.MetadataEntry{
			UserID:      *scope,
			OriginalKey: key,
			Label:       label,
			Unit:        e.Unit,
			Description: e.Description,
			Category:    category,
		})
		if err != nil {
			fmt.Printf("failed to import %s: %v\n", key, err)
			continue
		}
		imported++
	}
	fmt.Printf("Imported %d of %d entries into scope %q\n", imported, len(entries), *scope)
}
