package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"profiled/internal/core/domain"
)

// MockProfileRepo implements ports.ProfileRepository for testing.
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Profile, error) {
	args := m.Called(ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]domain.Profile, int, error) {
	args := m.Called(ownerID, limit, offset)
	return args.Get(0).([]domain.Profile), args.Int(1), args.Error(2)
}

func (m *MockProfileRepo) Update(ctx context.Context, profile *domain.Profile, expectedVersion int) (bool, error) {
	args := m.Called(profile, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepo) SoftDelete(ctx context.Context, ownerID, id string) (bool, error) {
	args := m.Called(ownerID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepo) NameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error) {
	args := m.Called(ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// MockTemplateRepo implements ports.TemplateRepository for testing.
type MockTemplateRepo struct {
	mock.Mock
}

func (m *MockTemplateRepo) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	args := m.Called()
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockTemplateRepo) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Template), args.Error(1)
}

func (m *MockTemplateRepo) CreateTemplate(ctx context.Context, template *domain.Template) error {
	args := m.Called(template)
	return args.Error(0)
}

func (m *MockTemplateRepo) CountTemplates(ctx context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// MockAuthRepo implements ports.AuthRepository for testing.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAuthRepo) TouchAPIKey(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAuthRepo) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockAuthRepo) ListAPIKeys(ctx context.Context, ownerID string) ([]domain.APIKey, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *MockAuthRepo) DeleteAPIKey(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockAuthRepo) GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockAuthRepo) CreateOwner(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(owner)
	return args.Error(0)
}
