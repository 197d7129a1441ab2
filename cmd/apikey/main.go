package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"profiled/internal/adapters/repository"
	"profiled/internal/config"
	"profiled/internal/core/domain"
)

func main() {
	createCmd := flag.NewFlagSet("create", flag.ExitOnError)
	createEmail := createCmd.String("email", "", "Owner email (created on first use)")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listEmail := listCmd.String("email", "", "Owner email")

	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeID := revokeCmd.String("id", "", "API key UUID to revoke")

	if len(os.Args) < 2 {
		fmt.Println("expected 'create', 'list' or 'revoke' subcommands")
		os.Exit(1)
	}

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

	switch os.Args[1] {
	case "create":
		if err := createCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("failed to parse create flags: %v", err)
		}
		generateKey(repo, *createEmail, cfg.Auth.Pepper)
	case "list":
		if err := listCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("failed to parse list flags: %v", err)
		}
		listKeys(repo, *listEmail)
	case "revoke":
		if err := revokeCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("failed to parse revoke flags: %v", err)
		}
		revokeKey(repo, *revokeID)
	default:
		fmt.Println("expected 'create', 'list' or 'revoke' subcommands")
		os.Exit(1)
	}
}

// getOrCreateOwner resolves an owner by email, creating one on first use.
func getOrCreateOwner(repo *repository.PostgresRepository, email string) *domain.Owner {
	if email == "" {
		log.Fatal("-email is required")
	}

	ctx := context.Background()
	owner, err := repo.GetOwnerByEmail(ctx, email)
	if err != nil {
		log.Fatalf("failed to look up owner: %v", err)
	}
	if owner != nil {
		return owner
	}

	now := time.Now().UTC()
	owner = &domain.Owner{
		ID:     uuid.New().String(),
		Email:  email,
		Active: true,
	}
	owner.CreatedAt = now
	owner.UpdatedAt = now
	if err := repo.CreateOwner(ctx, owner); err != nil {
		log.Fatalf("failed to create owner: %v", err)
	}
	fmt.Printf("Created owner %s for %s\n", owner.ID, email)
	return owner
}

func generateKey(repo *repository.PostgresRepository, email, pepper string) {
	owner := getOrCreateOwner(repo, email)

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		log.Fatal(err)
	}
	keyString := "dpk_" + hex.EncodeToString(raw)

	apiKey := &domain.APIKey{
		ID:        uuid.New().String(),
		OwnerID:   owner.ID,
		KeyHash:   domain.HashAPIKey(keyString, pepper),
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateAPIKey(context.Background(), apiKey); err != nil {
		log.Fatalf("failed to save API key: %v", err)
	}

	fmt.Printf("API Key Created Successfully!\n")
	fmt.Printf("---------------------------\n")
	fmt.Printf("ID:      %s\n", apiKey.ID)
	fmt.Printf("Owner:   %s (%s)\n", owner.ID, owner.Email)
	fmt.Printf("VALUE:   %s\n", keyString)
	fmt.Printf("---------------------------\n")
	fmt.Printf("CAUTION: This is the only time the key will be shown.\n")
}

func listKeys(repo *repository.PostgresRepository, email string) {
	if email == "" {
		log.Fatal("-email is required")
	}

	ctx := context.Background()
	owner, err := repo.GetOwnerByEmail(ctx, email)
	if err != nil {
		log.Fatal(err)
	}
	if owner == nil {
		log.Fatalf("no owner with email %s", email)
	}

	keys, err := repo.ListAPIKeys(ctx, owner.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("API keys for %s\n", email)
	fmt.Printf("%-36s %-25s %-25s\n", "ID", "Created", "Last Used")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format(time.RFC3339)
		}
		fmt.Printf("%-36s %-25s %-25s\n", k.ID, k.CreatedAt.Format(time.RFC3339), lastUsed)
	}
}

func revokeKey(repo *repository.PostgresRepository, id string) {
	if id == "" {
		log.Fatal("-id is required for revocation")
	}
	if err := repo.DeleteAPIKey(context.Background(), id); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("API key %s revoked (deleted)\n", id)
}
