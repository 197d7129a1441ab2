// Package services implements the core business operations over the
// repository ports.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"profiled/internal/core/domain"
	"profiled/internal/core/ports"
)

type profileService struct {
	repo      ports.ProfileRepository
	encryptor ports.Encryptor
}

// NewProfileService creates the owner-scoped profile lifecycle service.
func NewProfileService(repo ports.ProfileRepository, encryptor ports.Encryptor) ports.ProfileService {
	return &profileService{repo: repo, encryptor: encryptor}
}

func (s *profileService) Create(ctx context.Context, ownerID string, in domain.ProfileCreate) (*domain.Profile, error) {
	if err := domain.ValidateProfileCreate(&in); err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the partial unique index remains the
	// authority if a concurrent create slips between check and insert.
	exists, err := s.repo.NameExists(ctx, ownerID, in.Name, "")
	if err != nil {
		return nil, fmt.Errorf("checking profile name: %w", err)
	}
	if exists {
		return nil, &domain.ConflictError{Name: in.Name}
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          in.Name,
		DeviceType:    in.DeviceType,
		WindowWidth:   in.WindowWidth,
		WindowHeight:  in.WindowHeight,
		UserAgent:     in.UserAgent,
		Country:       in.Country,
		CustomHeaders: in.CustomHeaders,
		Extras:        in.Extras,
		Version:       1,
	}
	if profile.CustomHeaders == nil {
		profile.CustomHeaders = []domain.CustomHeader{}
	}
	if profile.Extras == nil {
		profile.Extras = map[string]any{}
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	stored := *profile
	stored.CustomHeaders, err = s.sealHeaders(profile.CustomHeaders)
	if err != nil {
		return nil, fmt.Errorf("sealing secret headers: %w", err)
	}
	if err := s.repo.Create(ctx, &stored); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, ownerID, id string) (*domain.Profile, error) {
	profile, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	if profile.CustomHeaders, err = s.openHeaders(profile.CustomHeaders); err != nil {
		return nil, fmt.Errorf("opening secret headers: %w", err)
	}
	return profile, nil
}

func (s *profileService) List(ctx context.Context, ownerID string, limit, offset int) ([]domain.Profile, int, error) {
	profiles, total, err := s.repo.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing profiles: %w", err)
	}
	for i := range profiles {
		if profiles[i].CustomHeaders, err = s.openHeaders(profiles[i].CustomHeaders); err != nil {
			return nil, 0, fmt.Errorf("opening secret headers: %w", err)
		}
	}
	return profiles, total, nil
}

func (s *profileService) Update(ctx context.Context, ownerID, id string, in domain.ProfileUpdate, expectedVersion int) (*domain.Profile, error) {
	current, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil && *in.Name != current.Name {
		exists, err := s.repo.NameExists(ctx, ownerID, *in.Name, id)
		if err != nil {
			return nil, fmt.Errorf("checking profile name: %w", err)
		}
		if exists {
			return nil, &domain.ConflictError{Name: *in.Name}
		}
	}

	// Cross-field constraints are re-checked on the merged state, not on the
	// partial payload in isolation.
	merged := in.Apply(*current)
	candidate := domain.ProfileCreate{
		Name:          merged.Name,
		DeviceType:    merged.DeviceType,
		WindowWidth:   merged.WindowWidth,
		WindowHeight:  merged.WindowHeight,
		UserAgent:     merged.UserAgent,
		Country:       merged.Country,
		CustomHeaders: merged.CustomHeaders,
		Extras:        merged.Extras,
	}
	if err := domain.ValidateProfileCreate(&candidate); err != nil {
		return nil, err
	}
	merged.Country = candidate.Country
	merged.UpdatedAt = time.Now().UTC()

	stored := merged
	if stored.CustomHeaders, err = s.sealHeaders(merged.CustomHeaders); err != nil {
		return nil, fmt.Errorf("sealing secret headers: %w", err)
	}

	// Compare-and-swap: the version check and increment happen inside one
	// conditional UPDATE, so two racing updates against the same expected
	// version cannot both succeed.
	matched, err := s.repo.Update(ctx, &stored, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !matched {
		fresh, err := s.repo.GetByID(ctx, ownerID, id)
		if err != nil {
			return nil, fmt.Errorf("reloading profile: %w", err)
		}
		if fresh == nil {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.VersionConflictError{Current: fresh.Version}
	}

	merged.Version = expectedVersion + 1
	return &merged, nil
}

func (s *profileService) Delete(ctx context.Context, ownerID, id string) error {
	found, err := s.repo.SoftDelete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// sealHeaders encrypts the values of headers flagged secret before they are
// persisted. The input slice is not modified.
func (s *profileService) sealHeaders(headers []domain.CustomHeader) ([]domain.CustomHeader, error) {
	return s.transformHeaders(headers, s.encryptor.Encrypt)
}

// openHeaders reverses sealHeaders on read.
func (s *profileService) openHeaders(headers []domain.CustomHeader) ([]domain.CustomHeader, error) {
	return s.transformHeaders(headers, s.encryptor.Decrypt)
}

func (s *profileService) transformHeaders(headers []domain.CustomHeader, fn func(string) (string, error)) ([]domain.CustomHeader, error) {
	out := make([]domain.CustomHeader, len(headers))
	copy(out, headers)
	for i := range out {
		if !out[i].Secret {
			continue
		}
		v, err := fn(out[i].Value)
		if err != nil {
			return nil, err
		}
		out[i].Value = v
	}
	return out, nil
}
