// Command seed-templates loads the predefined device profile templates into
// the database. It is idempotent: when any templates already exist it exits
// without changes.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"profiled/internal/adapters/repository"
	"profiled/internal/config"
	"profiled/internal/core/domain"
)

func main() {
	cfg := config.MustLoad()

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	repo := repository.NewPostgresRepository(db)
	ctx := context.Background()

	existing, err := repo.CountTemplates(ctx)
	if err != nil {
		log.Fatalf("failed to count templates: %v", err)
	}
	if existing > 0 {
		fmt.Printf("Templates already exist (%d found). Skipping seeding.\n", existing)
		return
	}

	now := time.Now().UTC()
	for _, t := range seedTemplates() {
		t.ID = uuid.New().String()
		t.CreatedAt = now
		t.UpdatedAt = now
		if err := repo.CreateTemplate(ctx, &t); err != nil {
			log.Fatalf("failed to seed template %q: %v", t.Name, err)
		}
		fmt.Printf("  - %s (%s)\n", t.Name, t.Version)
	}
	fmt.Println("Seeding complete.")
}

func seedTemplates() []domain.Template {
	return []domain.Template{
		{
			Name:        "Chrome Desktop (Latest)",
			Description: "Latest Chrome browser on Windows desktop",
			Version:     "Chrome 120",
			Data: map[string]any{
				"name":          "Chrome Desktop Profile",
				"device_type":   "desktop",
				"window_width":  1920,
				"window_height": 1080,
				"user_agent":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"country":       "us",
				"custom_headers": []any{
					map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.9"},
					map[string]any{"name": "Accept-Encoding", "value": "gzip, deflate, br"},
					map[string]any{"name": "Accept", "value": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"},
				},
				"extras": map[string]any{
					"browser": "chrome",
					"os":      "windows",
					"version": "120.0.0.0",
				},
			},
		},
		{
			Name:        "Safari Mobile (iOS 17)",
			Description: "Safari browser on iPhone with iOS 17",
			Version:     "iOS 17",
			Data: map[string]any{
				"name":          "Safari Mobile Profile",
				"device_type":   "mobile",
				"window_width":  375,
				"window_height": 667,
				"user_agent":    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
				"country":       "us",
				"custom_headers": []any{
					map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.9"},
					map[string]any{"name": "Accept-Encoding", "value": "gzip, deflate, br"},
					map[string]any{"name": "Accept", "value": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
				},
				"extras": map[string]any{
					"browser": "safari",
					"os":      "ios",
					"version": "17.0",
					"device":  "iphone",
				},
			},
		},
		{
			Name:        "Firefox Desktop (Latest)",
			Description: "Latest Firefox browser on Linux desktop",
			Version:     "Firefox 121",
			Data: map[string]any{
				"name":          "Firefox Desktop Profile",
				"device_type":   "desktop",
				"window_width":  1920,
				"window_height": 1080,
				"user_agent":    "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
				"country":       "us",
				"custom_headers": []any{
					map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.5"},
					map[string]any{"name": "Accept-Encoding", "value": "gzip, deflate, br"},
					map[string]any{"name": "Accept", "value": "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"},
				},
				"extras": map[string]any{
					"browser": "firefox",
					"os":      "linux",
					"version": "121.0",
				},
			},
		},
		{
			Name:        "Chrome Mobile (Android 14)",
			Description: "Chrome browser on Android 14 device",
			Version:     "Android 14",
			Data: map[string]any{
				"name":          "Chrome Mobile Profile",
				"device_type":   "mobile",
				"window_width":  412,
				"window_height": 915,
				"user_agent":    "Mozilla/5.0 (Linux; Android 14; SM-G998B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
				"country":       "us",
				"custom_headers": []any{
					map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.9"},
					map[string]any{"name": "Accept-Encoding", "value": "gzip, deflate, br"},
					map[string]any{"name": "Accept", "value": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"},
				},
				"extras": map[string]any{
					"browser": "chrome",
					"os":      "android",
					"version": "14",
					"device":  "samsung_galaxy",
				},
			},
		},
		{
			Name:        "Edge Desktop (Latest)",
			Description: "Latest Microsoft Edge browser on Windows desktop",
			Version:     "Edge 120",
			Data: map[string]any{
				"name":          "Edge Desktop Profile",
				"device_type":   "desktop",
				"window_width":  1920,
				"window_height": 1080,
				"user_agent":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
				"country":       "us",
				"custom_headers": []any{
					map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.9"},
					map[string]any{"name": "Accept-Encoding", "value": "gzip, deflate, br"},
					map[string]any{"name": "Accept", "value": "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"},
				},
				"extras": map[string]any{
					"browser": "edge",
					"os":      "windows",
					"version": "120.0.0.0",
				},
			},
		},
	}
}
