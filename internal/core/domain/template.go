package domain

// Template is an immutable, globally visible snapshot of a profile-like
// payload used to seed new profiles. Templates are created only by the
// out-of-band seeding command and never mutated through the API.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Data        map[string]any `json:"data"`
	Version     string         `json:"version,omitempty"` // free-text label, e.g. "Chrome 120"
	Timestamps
}

// TemplateOverrides are the fields a caller may overlay onto a template's
// data when materializing a profile. Nil fields keep the template's value;
// a non-nil CustomHeaders slice replaces the template's header list whole.
type TemplateOverrides struct {
	Name          *string        `json:"name,omitempty"`
	Country       *string        `json:"country,omitempty"`
	CustomHeaders []CustomHeader `json:"custom_headers,omitempty"`
	Extras        map[string]any `json:"extras,omitempty"`
}
