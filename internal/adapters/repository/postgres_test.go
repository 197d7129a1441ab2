package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"profiled/internal/core/domain"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("profiled_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		t.Fatalf("failed to open db: %s", err)
	}

	schema, err := os.ReadFile(filepath.Join(".", "schema.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %s", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %s", err)
	}

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func newOwner(t *testing.T, repo *PostgresRepository) string {
	t.Helper()
	now := time.Now().UTC()
	owner := &domain.Owner{ID: uuid.New().String(), Email: uuid.New().String() + "@test.local", Active: true}
	owner.CreatedAt = now
	owner.UpdatedAt = now
	if err := repo.CreateOwner(context.Background(), owner); err != nil {
		t.Fatalf("failed to create owner: %s", err)
	}
	return owner.ID
}

func newProfile(owner, name string) *domain.Profile {
	now := time.Now().UTC()
	country := "us"
	p := &domain.Profile{
		ID:            uuid.New().String(),
		OwnerID:       owner,
		Name:          name,
		DeviceType:    domain.DeviceDesktop,
		WindowWidth:   1920,
		WindowHeight:  1080,
		UserAgent:     "Mozilla/5.0",
		Country:       &country,
		CustomHeaders: []domain.CustomHeader{{Name: "Accept", Value: "*/*"}},
		Extras:        map[string]any{"k": "v"},
		Version:       1,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

func TestPostgresRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPostgresRepository(db)
	ctx := context.Background()

	t.Run("profile round trip", func(t *testing.T) {
		owner := newOwner(t, repo)
		p := newProfile(owner, "Round Trip")
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %s", err)
		}

		got, err := repo.GetByID(ctx, owner, p.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %s", err)
		}
		if got == nil || got.Name != "Round Trip" || got.Version != 1 {
			t.Fatalf("unexpected profile: %+v", got)
		}
		if len(got.CustomHeaders) != 1 || got.CustomHeaders[0].Name != "Accept" {
			t.Errorf("headers not preserved: %+v", got.CustomHeaders)
		}
		if got.Extras["k"] != "v" {
			t.Errorf("extras not preserved: %+v", got.Extras)
		}
	})

	t.Run("cross owner reads nothing", func(t *testing.T) {
		ownerA := newOwner(t, repo)
		ownerB := newOwner(t, repo)
		p := newProfile(ownerA, "Private")
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %s", err)
		}

		got, err := repo.GetByID(ctx, ownerB, p.ID)
		if err != nil || got != nil {
			t.Errorf("expected nil for foreign owner, got %+v, %v", got, err)
		}
	})

	t.Run("name uniqueness is case-insensitive per owner", func(t *testing.T) {
		owner := newOwner(t, repo)
		if err := repo.Create(ctx, newProfile(owner, "Chrome")); err != nil {
			t.Fatalf("Create failed: %s", err)
		}

		err := repo.Create(ctx, newProfile(owner, "CHROME"))
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			t.Errorf("expected conflict, got %v", err)
		}

		// A different owner may reuse the name.
		other := newOwner(t, repo)
		if err := repo.Create(ctx, newProfile(other, "chrome")); err != nil {
			t.Errorf("name must be free for another owner: %v", err)
		}
	})

	t.Run("conditional update CAS", func(t *testing.T) {
		owner := newOwner(t, repo)
		p := newProfile(owner, "Versioned")
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %s", err)
		}

		p.Name = "Versioned v2"
		p.UpdatedAt = time.Now().UTC()
		matched, err := repo.Update(ctx, p, 1)
		if err != nil || !matched {
			t.Fatalf("expected first swap to win: %v %v", matched, err)
		}

		// The same expected version cannot win twice.
		matched, err = repo.Update(ctx, p, 1)
		if err != nil || matched {
			t.Fatalf("expected second swap to lose: %v %v", matched, err)
		}

		got, err := repo.GetByID(ctx, owner, p.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %s", err)
		}
		if got.Version != 2 || got.Name != "Versioned v2" {
			t.Errorf("unexpected state after CAS: %+v", got)
		}
	})

	t.Run("soft delete frees the name", func(t *testing.T) {
		owner := newOwner(t, repo)
		p := newProfile(owner, "Reusable")
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %s", err)
		}

		found, err := repo.SoftDelete(ctx, owner, p.ID)
		if err != nil || !found {
			t.Fatalf("SoftDelete failed: %v %v", found, err)
		}

		// Deleted rows are invisible to reads and repeat deletes.
		if got, _ := repo.GetByID(ctx, owner, p.ID); got != nil {
			t.Errorf("deleted profile still readable: %+v", got)
		}
		if found, _ := repo.SoftDelete(ctx, owner, p.ID); found {
			t.Error("second delete must not match")
		}

		// The name is reusable once the old row is inactive.
		if err := repo.Create(ctx, newProfile(owner, "reusable")); err != nil {
			t.Errorf("name must be free after soft delete: %v", err)
		}
	})

	t.Run("list is scoped ordered and counted", func(t *testing.T) {
		owner := newOwner(t, repo)
		first := newProfile(owner, "First")
		if err := repo.Create(ctx, first); err != nil {
			t.Fatal(err)
		}
		second := newProfile(owner, "Second")
		second.CreatedAt = second.CreatedAt.Add(time.Second)
		second.UpdatedAt = second.UpdatedAt.Add(time.Second)
		if err := repo.Create(ctx, second); err != nil {
			t.Fatal(err)
		}

		profiles, total, err := repo.List(ctx, owner, 10, 0)
		if err != nil {
			t.Fatalf("List failed: %s", err)
		}
		if total != 2 || len(profiles) != 2 {
			t.Fatalf("unexpected counts: total=%d len=%d", total, len(profiles))
		}
		if profiles[0].Name != "Second" {
			t.Errorf("expected most recently updated first, got %s", profiles[0].Name)
		}

		page, total, err := repo.List(ctx, owner, 1, 1)
		if err != nil || total != 2 || len(page) != 1 {
			t.Errorf("unexpected page: total=%d len=%d err=%v", total, len(page), err)
		}
	})

	t.Run("api keys and owners", func(t *testing.T) {
		owner := newOwner(t, repo)
		key := &domain.APIKey{
			ID:        uuid.New().String(),
			OwnerID:   owner,
			KeyHash:   domain.HashAPIKey("dpk_integration", "pepper"),
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateAPIKey(ctx, key); err != nil {
			t.Fatalf("CreateAPIKey failed: %s", err)
		}

		got, err := repo.GetAPIKeyByHash(ctx, key.KeyHash)
		if err != nil || got == nil || got.OwnerID != owner {
			t.Fatalf("unexpected key: %+v, %v", got, err)
		}
		if got.LastUsedAt != nil {
			t.Error("new key must have no last_used_at")
		}

		if err := repo.TouchAPIKey(ctx, key.ID); err != nil {
			t.Fatalf("TouchAPIKey failed: %s", err)
		}
		got, _ = repo.GetAPIKeyByHash(ctx, key.KeyHash)
		if got.LastUsedAt == nil {
			t.Error("expected last_used_at after touch")
		}

		if err := repo.DeleteAPIKey(ctx, key.ID); err != nil {
			t.Fatalf("DeleteAPIKey failed: %s", err)
		}
		if got, _ := repo.GetAPIKeyByHash(ctx, key.KeyHash); got != nil {
			t.Error("revoked key must not resolve")
		}
	})

	t.Run("templates", func(t *testing.T) {
		now := time.Now().UTC()
		tpl := &domain.Template{
			ID:          uuid.New().String(),
			Name:        "Integration Template",
			Description: "test",
			Version:     "v1",
			Data:        map[string]any{"name": "X", "device_type": "desktop"},
		}
		tpl.CreatedAt = now
		tpl.UpdatedAt = now
		if err := repo.CreateTemplate(ctx, tpl); err != nil {
			t.Fatalf("CreateTemplate failed: %s", err)
		}

		count, err := repo.CountTemplates(ctx)
		if err != nil || count < 1 {
			t.Fatalf("unexpected count: %d, %v", count, err)
		}

		got, err := repo.GetTemplateByID(ctx, tpl.ID)
		if err != nil || got == nil || got.Data["device_type"] != "desktop" {
			t.Fatalf("unexpected template: %+v, %v", got, err)
		}

		if missing, _ := repo.GetTemplateByID(ctx, uuid.New().String()); missing != nil {
			t.Error("expected nil for unknown template")
		}
	})
}
