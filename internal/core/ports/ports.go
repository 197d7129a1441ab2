// Package ports defines the interfaces between the core services and their
// adapters.
package ports

import (
	"context"
	"time"

	"profiled/internal/core/domain"
)

// ProfileRepository persists device profiles. Every query is owner-scoped;
// lookups return (nil, nil) when no active row matches, never an error.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Profile, error)
	// List returns active profiles ordered by updated_at descending, plus the
	// total active count for the owner.
	List(ctx context.Context, ownerID string, limit, offset int) ([]domain.Profile, int, error)
	// Update persists the merged profile state with a single conditional
	// write: the row must still be active and at expectedVersion, and the
	// version is incremented in the same statement. Returns false when no row
	// matched.
	Update(ctx context.Context, profile *domain.Profile, expectedVersion int) (bool, error)
	// SoftDelete marks an active owner-matched profile deleted. Returns
	// whether a row was found. The version is not incremented.
	SoftDelete(ctx context.Context, ownerID, id string) (bool, error)
	// NameExists reports whether an active profile with the given name
	// (case-insensitive) exists for the owner, excluding excludeID when
	// non-empty.
	NameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error)
	Ping(ctx context.Context) error
}

// TemplateRepository reads the immutable template catalog. Create and Count
// exist only for the out-of-band seeding command.
type TemplateRepository interface {
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	GetTemplateByID(ctx context.Context, id string) (*domain.Template, error)
	CreateTemplate(ctx context.Context, template *domain.Template) error
	CountTemplates(ctx context.Context) (int, error)
}

// AuthRepository persists owners and their API credentials.
type AuthRepository interface {
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)
	TouchAPIKey(ctx context.Context, id string) error
	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	ListAPIKeys(ctx context.Context, ownerID string) ([]domain.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, error)
	CreateOwner(ctx context.Context, owner *domain.Owner) error
}

// TemplateCache is an optional read-through cache in front of the template
// catalog.
type TemplateCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Ping(ctx context.Context) error
}

// Encryptor transforms secret header values around persistence. The default
// implementation is a passthrough; a real cipher can be substituted without
// touching calling code.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ProfileService is the owner-scoped profile lifecycle.
type ProfileService interface {
	Create(ctx context.Context, ownerID string, in domain.ProfileCreate) (*domain.Profile, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Profile, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]domain.Profile, int, error)
	Update(ctx context.Context, ownerID, id string, in domain.ProfileUpdate, expectedVersion int) (*domain.Profile, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TemplateService reads the catalog and materializes profiles from it.
type TemplateService interface {
	List(ctx context.Context) ([]domain.Template, error)
	Get(ctx context.Context, id string) (*domain.Template, error)
	Materialize(ctx context.Context, ownerID, templateID string, overrides domain.TemplateOverrides) (*domain.Profile, error)
}
