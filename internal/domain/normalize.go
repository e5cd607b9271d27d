package domain

import "strings"

// defaultScheme is prepended to inputs lacking an explicit scheme.
const defaultScheme = "https://"

// NormalizeURL trims free-form input and prepends a secure scheme when the
// input does not already carry one. No further validation happens here;
// malformed input is passed through and any rejection surfaces via the
// insert-failure path.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	if strings.Contains(trimmed, "://") {
		return trimmed
	}
	return defaultScheme + trimmed
}
