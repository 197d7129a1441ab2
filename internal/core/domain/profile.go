// Package domain contains the core business entities and rules for profiled.
package domain

import (
	"time"
)

// DeviceType represents the class of device a profile emulates.
type DeviceType string

const (
	// DeviceDesktop is a desktop browser profile.
	DeviceDesktop DeviceType = "desktop"
	// DeviceMobile is a mobile browser profile.
	DeviceMobile DeviceType = "mobile"
)

// CustomHeader is a single request header carried by a profile. Order and
// duplicates are preserved as supplied by the client.
type CustomHeader struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}

// Timestamps tracks creation and last-modification times.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SoftDelete marks a record as logically removed without dropping the row.
type SoftDelete struct {
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the record has not been soft-deleted.
func (s SoftDelete) Active() bool {
	return s.DeletedAt == nil
}

// Profile is a device profile: the viewport, user agent, headers and locale
// used to parameterize scraping requests. Profiles are exclusively owned by
// one owner and carry a version counter for conditional updates.
type Profile struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Name          string         `json:"name"`
	DeviceType    DeviceType     `json:"device_type"`
	WindowWidth   int            `json:"window_width"`
	WindowHeight  int            `json:"window_height"`
	UserAgent     string         `json:"user_agent"`
	Country       *string        `json:"country,omitempty"`
	CustomHeaders []CustomHeader `json:"custom_headers"`
	Extras        map[string]any `json:"extras"`
	Version       int            `json:"version"`
	Timestamps
	SoftDelete
}

// ProfileCreate is a complete profile creation payload.
type ProfileCreate struct {
	Name          string         `json:"name"`
	DeviceType    DeviceType     `json:"device_type"`
	WindowWidth   int            `json:"window_width"`
	WindowHeight  int            `json:"window_height"`
	UserAgent     string         `json:"user_agent"`
	Country       *string        `json:"country,omitempty"`
	CustomHeaders []CustomHeader `json:"custom_headers"`
	Extras        map[string]any `json:"extras"`
}

// ProfileUpdate is a partial update. Nil fields are left untouched; a non-nil
// CustomHeaders slice fully replaces the stored list.
type ProfileUpdate struct {
	Name          *string        `json:"name,omitempty"`
	DeviceType    *DeviceType    `json:"device_type,omitempty"`
	WindowWidth   *int           `json:"window_width,omitempty"`
	WindowHeight  *int           `json:"window_height,omitempty"`
	UserAgent     *string        `json:"user_agent,omitempty"`
	Country       *string        `json:"country,omitempty"`
	CustomHeaders []CustomHeader `json:"custom_headers,omitempty"`
	Extras        map[string]any `json:"extras,omitempty"`
}

// Apply overlays the set fields of the update onto a copy of the profile and
// returns the merged result. The receiver is not modified.
func (u ProfileUpdate) Apply(p Profile) Profile {
	merged := p
	if u.Name != nil {
		merged.Name = *u.Name
	}
	if u.DeviceType != nil {
		merged.DeviceType = *u.DeviceType
	}
	if u.WindowWidth != nil {
		merged.WindowWidth = *u.WindowWidth
	}
	if u.WindowHeight != nil {
		merged.WindowHeight = *u.WindowHeight
	}
	if u.UserAgent != nil {
		merged.UserAgent = *u.UserAgent
	}
	if u.Country != nil {
		merged.Country = u.Country
	}
	if u.CustomHeaders != nil {
		merged.CustomHeaders = u.CustomHeaders
	}
	if u.Extras != nil {
		merged.Extras = u.Extras
	}
	return merged
}
