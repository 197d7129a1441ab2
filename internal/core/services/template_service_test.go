package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"profiled/internal/core/domain"
	"profiled/internal/testutil"
)

// capturingProfiles records creation payloads without touching storage.
type capturingProfiles struct {
	created []domain.ProfileCreate
	err     error
}

func (c *capturingProfiles) Create(_ context.Context, ownerID string, in domain.ProfileCreate) (*domain.Profile, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, in)
	p := &domain.Profile{
		ID:           "created-1",
		OwnerID:      ownerID,
		Name:         in.Name,
		DeviceType:   in.DeviceType,
		WindowWidth:  in.WindowWidth,
		WindowHeight: in.WindowHeight,
		UserAgent:    in.UserAgent,
		Country:      in.Country,
		Version:      1,
	}
	return p, nil
}

func (c *capturingProfiles) Get(context.Context, string, string) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (c *capturingProfiles) List(context.Context, string, int, int) ([]domain.Profile, int, error) {
	return nil, 0, nil
}

func (c *capturingProfiles) Update(context.Context, string, string, domain.ProfileUpdate, int) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (c *capturingProfiles) Delete(context.Context, string, string) error { return nil }

func chromeTemplate() *domain.Template {
	return &domain.Template{
		ID:   "tpl-1",
		Name: "Chrome Desktop (Latest)",
		Data: map[string]any{
			"name":          "Chrome Desktop Profile",
			"device_type":   "desktop",
			"window_width":  1920,
			"window_height": 1080,
			"user_agent":    "Mozilla/5.0 Chrome/120.0.0.0",
			"country":       "us",
			"custom_headers": []any{
				map[string]any{"name": "Accept-Language", "value": "en-US,en;q=0.9"},
			},
			"extras": map[string]any{"browser": "chrome"},
		},
	}
}

func TestTemplateService_List_CachesCatalog(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	cache := testutil.NewMockCache()
	svc := NewTemplateService(repo, &capturingProfiles{}, cache)

	repo.On("ListTemplates").Return([]domain.Template{*chromeTemplate()}, nil).Once()

	ctx := context.Background()
	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)

	require.Equal(t, 1, cache.Hits)
	repo.AssertExpectations(t)
}

func TestTemplateService_List_NoCacheConfigured(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	svc := NewTemplateService(repo, &capturingProfiles{}, nil)

	repo.On("ListTemplates").Return([]domain.Template{}, nil)

	_, err := svc.List(context.Background())
	require.NoError(t, err)
}

func TestTemplateService_Get_NotFound(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	svc := NewTemplateService(repo, &capturingProfiles{}, nil)

	repo.On("GetTemplateByID", "missing").Return(nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateService_Materialize(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	profiles := &capturingProfiles{}
	svc := NewTemplateService(repo, profiles, nil)

	repo.On("GetTemplateByID", "tpl-1").Return(chromeTemplate(), nil)

	name := "My Chrome"
	country := "de"
	got, err := svc.Materialize(context.Background(), "owner-1", "tpl-1", domain.TemplateOverrides{
		Name:    &name,
		Country: &country,
	})
	require.NoError(t, err)
	require.Equal(t, "My Chrome", got.Name)

	require.Len(t, profiles.created, 1)
	in := profiles.created[0]
	require.Equal(t, "My Chrome", in.Name)
	require.Equal(t, "de", *in.Country)
	// Fields without overrides come from the template.
	require.Equal(t, domain.DeviceDesktop, in.DeviceType)
	require.Equal(t, 1920, in.WindowWidth)
	require.Len(t, in.CustomHeaders, 1)
}

func TestTemplateService_Materialize_HeaderOverrideReplacesWhole(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	profiles := &capturingProfiles{}
	svc := NewTemplateService(repo, profiles, nil)

	repo.On("GetTemplateByID", "tpl-1").Return(chromeTemplate(), nil)

	_, err := svc.Materialize(context.Background(), "owner-1", "tpl-1", domain.TemplateOverrides{
		CustomHeaders: []domain.CustomHeader{{Name: "X-Only", Value: "1"}},
	})
	require.NoError(t, err)

	in := profiles.created[0]
	require.Len(t, in.CustomHeaders, 1)
	require.Equal(t, "X-Only", in.CustomHeaders[0].Name)
}

func TestTemplateService_Materialize_FillsDefaults(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	profiles := &capturingProfiles{}
	svc := NewTemplateService(repo, profiles, nil)

	// An old catalog snapshot that predates most profile fields.
	repo.On("GetTemplateByID", "tpl-min").Return(&domain.Template{
		ID:   "tpl-min",
		Name: "Minimal",
		Data: map[string]any{"name": "Minimal Profile"},
	}, nil)

	_, err := svc.Materialize(context.Background(), "owner-1", "tpl-min", domain.TemplateOverrides{})
	require.NoError(t, err)

	in := profiles.created[0]
	require.Equal(t, domain.DeviceDesktop, in.DeviceType)
	require.Equal(t, 1920, in.WindowWidth)
	require.Equal(t, 1080, in.WindowHeight)
	require.Equal(t, "us", *in.Country)
	require.NotEmpty(t, in.UserAgent)
}

func TestTemplateService_Materialize_UnknownTemplate(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	svc := NewTemplateService(repo, &capturingProfiles{}, nil)

	repo.On("GetTemplateByID", "missing").Return(nil, nil)

	_, err := svc.Materialize(context.Background(), "owner-1", "missing", domain.TemplateOverrides{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateService_Materialize_MalformedPayload(t *testing.T) {
	repo := new(testutil.MockTemplateRepo)
	svc := NewTemplateService(repo, &capturingProfiles{}, nil)

	repo.On("GetTemplateByID", "tpl-bad").Return(&domain.Template{
		ID:   "tpl-bad",
		Name: "Broken",
		Data: map[string]any{"name": "X", "window_width": "wide"},
	}, nil)

	_, err := svc.Materialize(context.Background(), "owner-1", "tpl-bad", domain.TemplateOverrides{})
	verrs, ok := domain.AsValidationErrors(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	require.Equal(t, "data", verrs[0].Field)
}
