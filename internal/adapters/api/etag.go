package api

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatETag renders a profile version as a weak entity tag. Weak because
// the token tracks the version counter, not the byte representation.
func FormatETag(version int) string {
	return fmt.Sprintf(`W/"%d"`, version)
}

// ParseIfMatch extracts the expected version from an If-Match header value.
// Accepts W/"3", "3" and bare 3. Returns an error for anything else,
// including "*".
func ParseIfMatch(value string) (int, error) {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "W/")
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}
	version, err := strconv.Atoi(v)
	if err != nil || version < 1 {
		return 0, fmt.Errorf("malformed If-Match value %q", value)
	}
	return version, nil
}
