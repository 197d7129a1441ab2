package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profiled/internal/core/domain"
	"profiled/internal/core/ports"
)

// APIHandler handles HTTP requests for profile and template management.
type APIHandler struct {
	profiles  ports.ProfileService
	templates ports.TemplateService
	repo      ports.ProfileRepository
	authRepo  ports.AuthRepository
	cache     ports.TemplateCache // nil when Redis is not configured
	pepper    string

	defaultLimit int
	maxLimit     int
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(profiles ports.ProfileService, templates ports.TemplateService,
	repo ports.ProfileRepository, authRepo ports.AuthRepository, cache ports.TemplateCache,
	pepper string, defaultLimit, maxLimit int) *APIHandler {
	return &APIHandler{
		profiles:     profiles,
		templates:    templates,
		repo:         repo,
		authRepo:     authRepo,
		cache:        cache,
		pepper:       pepper,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)

	// Protected routes (scoped by owner_id from the auth key)
	auth := AuthMiddleware(h.authRepo, h.pepper)

	mux.Handle("GET /api/v1/device-profiles", auth(http.HandlerFunc(h.ListProfiles)))
	mux.Handle("POST /api/v1/device-profiles", auth(http.HandlerFunc(h.CreateProfile)))
	mux.Handle("GET /api/v1/device-profiles/{id}", auth(http.HandlerFunc(h.GetProfile)))
	mux.Handle("PATCH /api/v1/device-profiles/{id}", auth(http.HandlerFunc(h.UpdateProfile)))
	mux.Handle("DELETE /api/v1/device-profiles/{id}", auth(http.HandlerFunc(h.DeleteProfile)))

	mux.Handle("GET /api/v1/templates", auth(http.HandlerFunc(h.ListTemplates)))
	mux.Handle("GET /api/v1/templates/{id}", auth(http.HandlerFunc(h.GetTemplate)))
	mux.Handle("POST /api/v1/templates/{id}/create-profile", auth(http.HandlerFunc(h.CreateFromTemplate)))
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck reports the state of the storage backends.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)

	if err := h.repo.Ping(r.Context()); err != nil {
		status = "DEGRADED"
		details["database"] = err.Error()
	} else {
		details["database"] = "OK"
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "DEGRADED"
			details["cache"] = err.Error()
		} else {
			details["cache"] = "OK"
		}
	}

	code := http.StatusOK
	if status == "DEGRADED" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, map[string]any{"status": status, "details": details})
}

func (h *APIHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	var in domain.ProfileCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Bad Request", "malformed request body: "+err.Error())
		return
	}

	profile, err := h.profiles.Create(r.Context(), ownerID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/device-profiles/"+profile.ID)
	w.Header().Set("ETag", FormatETag(profile.Version))
	WriteJSON(w, http.StatusCreated, profile)
}

func (h *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	profile, err := h.profiles.Get(r.Context(), ownerID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("ETag", FormatETag(profile.Version))
	WriteJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	limit, offset, err := parsePage(r, h.defaultLimit, h.maxLimit)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	profiles, total, err := h.profiles.List(r.Context(), ownerID, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setLinkHeader(w, r, limit, offset, total)
	WriteJSON(w, http.StatusOK, Page{
		Items:  profiles,
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Count:  len(profiles),
	})
}

// UpdateProfile applies a partial update gated by the If-Match concurrency
// token. A stale token yields 412 with the current version in the detail so
// the client can re-fetch and retry.
func (h *APIHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	ifMatch := r.Header.Get("If-Match")
	if ifMatch == "" {
		WriteProblem(w, r, http.StatusPreconditionRequired, "Precondition Required",
			"If-Match header is required for updates")
		return
	}
	expected, err := ParseIfMatch(ifMatch)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var in domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Bad Request", "malformed request body: "+err.Error())
		return
	}

	profile, err := h.profiles.Update(r.Context(), ownerID, r.PathValue("id"), in, expected)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("ETag", FormatETag(profile.Version))
	WriteJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	if err := h.profiles.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parsePage(r, h.defaultLimit, h.maxLimit)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	templates, err := h.templates.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The catalog is small and already in memory; page it here.
	total := len(templates)
	page := templates[min(offset, total):min(offset+limit, total)]

	setLinkHeader(w, r, limit, offset, total)
	WriteJSON(w, http.StatusOK, Page{
		Items:  page,
		Limit:  limit,
		Offset: offset,
		Total:  total,
		Count:  len(page),
	})
}

func (h *APIHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.templates.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, template)
}

// CreateFromTemplate materializes a profile from a catalog template, applying
// the caller's overrides before the usual creation rules run.
func (h *APIHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := OwnerID(r)
	if !ok {
		WriteProblem(w, r, http.StatusUnauthorized, "Unauthorized", "missing owner context")
		return
	}

	var overrides domain.TemplateOverrides
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
			WriteProblem(w, r, http.StatusBadRequest, "Bad Request", "malformed request body: "+err.Error())
			return
		}
	}

	profile, err := h.templates.Materialize(r.Context(), ownerID, r.PathValue("id"), overrides)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/device-profiles/"+profile.ID)
	w.Header().Set("ETag", FormatETag(profile.Version))
	WriteJSON(w, http.StatusCreated, profile)
}
