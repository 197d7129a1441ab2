package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"profiled/internal/core/domain"
	"profiled/internal/core/ports"
	"profiled/internal/infrastructure/metrics"
)

const (
	templateCacheTTL     = 5 * time.Minute
	templateListCacheKey = "templates:all"
)

// Defaults applied to template payloads that predate currently-required
// profile fields, so older catalog snapshots stay creatable as the schema
// grows.
var templateDefaults = map[string]any{
	"device_type":    string(domain.DeviceDesktop),
	"window_width":   1920,
	"window_height":  1080,
	"user_agent":     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"country":        "us",
	"custom_headers": []any{},
	"extras":         map[string]any{},
}

type templateService struct {
	repo     ports.TemplateRepository
	profiles ports.ProfileService
	cache    ports.TemplateCache // nil when Redis is not configured
}

// NewTemplateService creates the template catalog service. cache may be nil.
func NewTemplateService(repo ports.TemplateRepository, profiles ports.ProfileService, cache ports.TemplateCache) ports.TemplateService {
	return &templateService{repo: repo, profiles: profiles, cache: cache}
}

func (s *templateService) List(ctx context.Context) ([]domain.Template, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, templateListCacheKey); ok {
			var templates []domain.Template
			if err := json.Unmarshal(data, &templates); err == nil {
				metrics.TemplateCacheOperations.WithLabelValues("hit").Inc()
				return templates, nil
			}
		}
		metrics.TemplateCacheOperations.WithLabelValues("miss").Inc()
	}

	templates, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(templates); err == nil {
			s.cache.Set(ctx, templateListCacheKey, data, templateCacheTTL)
		}
	}
	return templates, nil
}

func (s *templateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	cacheKey := "templates:id:" + id
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, cacheKey); ok {
			var template domain.Template
			if err := json.Unmarshal(data, &template); err == nil {
				metrics.TemplateCacheOperations.WithLabelValues("hit").Inc()
				return &template, nil
			}
		}
		metrics.TemplateCacheOperations.WithLabelValues("miss").Inc()
	}

	template, err := s.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if template == nil {
		return nil, domain.ErrNotFound
	}

	if s.cache != nil {
		if data, err := json.Marshal(template); err == nil {
			s.cache.Set(ctx, cacheKey, data, templateCacheTTL)
		}
	}
	return template, nil
}

// Materialize overlays the overrides onto a copy of the template's payload,
// fills in defaults for fields the snapshot predates, and hands the result to
// profile creation under the same validation and uniqueness rules as a direct
// create.
func (s *templateService) Materialize(ctx context.Context, ownerID, templateID string, overrides domain.TemplateOverrides) (*domain.Profile, error) {
	template, err := s.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	data := make(map[string]any, len(template.Data))
	for k, v := range template.Data {
		data[k] = v
	}

	if overrides.Name != nil {
		data["name"] = *overrides.Name
	}
	if overrides.Country != nil {
		data["country"] = *overrides.Country
	}
	if overrides.CustomHeaders != nil {
		// Header overrides replace the template's list whole, never merge.
		data["custom_headers"] = overrides.CustomHeaders
	}
	if overrides.Extras != nil {
		data["extras"] = overrides.Extras
	}

	for field, def := range templateDefaults {
		if _, ok := data[field]; !ok {
			data[field] = def
		}
	}

	in, err := profileCreateFromData(data)
	if err != nil {
		return nil, domain.ValidationErrors{{Field: "data", Message: err.Error()}}
	}
	return s.profiles.Create(ctx, ownerID, in)
}

// profileCreateFromData decodes a template payload map into a creation
// request via a JSON round trip, which applies the same field names and type
// coercion as the HTTP layer.
func profileCreateFromData(data map[string]any) (domain.ProfileCreate, error) {
	var in domain.ProfileCreate
	raw, err := json.Marshal(data)
	if err != nil {
		return in, fmt.Errorf("encoding template payload: %w", err)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, fmt.Errorf("template payload does not form a valid profile: %w", err)
	}
	return in, nil
}
