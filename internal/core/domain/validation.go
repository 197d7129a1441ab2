package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// WindowMin and WindowMax bound viewport dimensions for any device.
	WindowMin = 100
	WindowMax = 10000
	// MobileWindowMax caps each mobile viewport dimension.
	MobileWindowMax = 2000
	// MobileMaxAspectRatio caps landscape mobile width/height; the check is
	// strict, so a ratio of exactly 3 passes.
	MobileMaxAspectRatio = 3.0

	maxNameLen      = 255
	maxUserAgentLen = 1000
)

// forbiddenHeaders are header names a profile may never carry: hop-by-hop
// headers and headers controlled by the transport.
var forbiddenHeaders = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailers":            {},
	"transfer-encoding":   {},
	"upgrade":             {},
	"host":                {},
	"content-length":      {},
	"content-encoding":    {},
	"content-range":       {},
	"content-type":        {},
}

// ValidateCustomHeaders checks every header name against the forbidden set,
// case-insensitively and with surrounding whitespace ignored. The list itself
// is left untouched: order and duplicate names are allowed and preserved.
func ValidateCustomHeaders(headers []CustomHeader) ValidationErrors {
	var errs ValidationErrors
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h.Name))
		if name == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("custom_headers[%d].name", i),
				Message: "header name must not be empty",
			})
			continue
		}
		if _, forbidden := forbiddenHeaders[name]; forbidden {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("custom_headers[%d].name", i),
				Message: fmt.Sprintf("forbidden header: %s", name),
			})
		}
	}
	return errs
}

// ValidateCountry normalizes a country code to lowercase and checks that it
// is exactly two ASCII letters and an assigned ISO 3166-1 alpha-2 code.
// Returns the normalized code.
func ValidateCountry(country string) (string, error) {
	code := strings.ToLower(country)
	if len(code) != 2 {
		return "", fmt.Errorf("country code must be exactly 2 characters")
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return "", fmt.Errorf("country code must contain only letters")
		}
	}
	if !IsISOCountry(code) {
		return "", fmt.Errorf("unknown country code: %s", code)
	}
	return code, nil
}

// ValidateWindowSize checks viewport bounds and the mobile cross-field
// constraints: mobile viewports are capped at 2000 per dimension, and a
// landscape mobile viewport may not exceed a 3:1 width/height ratio.
func ValidateWindowSize(width, height int, deviceType DeviceType) ValidationErrors {
	var errs ValidationErrors
	if width < WindowMin || width > WindowMax {
		errs = append(errs, FieldError{
			Field:   "window_width",
			Message: fmt.Sprintf("window width must be between %d and %d pixels", WindowMin, WindowMax),
		})
	}
	if height < WindowMin || height > WindowMax {
		errs = append(errs, FieldError{
			Field:   "window_height",
			Message: fmt.Sprintf("window height must be between %d and %d pixels", WindowMin, WindowMax),
		})
	}
	if len(errs) > 0 || deviceType != DeviceMobile {
		return errs
	}
	if width > MobileWindowMax {
		errs = append(errs, FieldError{
			Field:   "window_width",
			Message: "mobile devices should not have ultra-wide viewports",
		})
	}
	if height > MobileWindowMax {
		errs = append(errs, FieldError{
			Field:   "window_height",
			Message: "mobile devices should not have ultra-wide viewports",
		})
	}
	if width > height && float64(width)/float64(height) > MobileMaxAspectRatio {
		errs = append(errs, FieldError{
			Field:   "window_width",
			Message: "mobile devices should not have ultra-wide aspect ratios",
		})
	}
	return errs
}

// ValidateProfileCreate runs the full validation pipeline over a complete
// candidate payload, collecting every violation. The same pipeline covers
// direct creation, the merged state of a partial update, and materialized
// template payloads. The country code is normalized in place on success.
func ValidateProfileCreate(in *ProfileCreate) error {
	var errs ValidationErrors

	if in.Name == "" || utf8.RuneCountInString(in.Name) > maxNameLen {
		errs = append(errs, FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name must be between 1 and %d characters", maxNameLen),
		})
	}
	if in.DeviceType != DeviceDesktop && in.DeviceType != DeviceMobile {
		errs = append(errs, FieldError{
			Field:   "device_type",
			Message: "device type must be desktop or mobile",
		})
	}
	if in.UserAgent == "" || utf8.RuneCountInString(in.UserAgent) > maxUserAgentLen {
		errs = append(errs, FieldError{
			Field:   "user_agent",
			Message: fmt.Sprintf("user agent must be between 1 and %d characters", maxUserAgentLen),
		})
	}
	if in.Country != nil {
		code, err := ValidateCountry(*in.Country)
		if err != nil {
			errs = append(errs, FieldError{Field: "country", Message: err.Error()})
		} else {
			in.Country = &code
		}
	}
	errs = append(errs, ValidateWindowSize(in.WindowWidth, in.WindowHeight, in.DeviceType)...)
	errs = append(errs, ValidateCustomHeaders(in.CustomHeaders)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}
