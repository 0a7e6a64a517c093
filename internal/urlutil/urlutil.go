// Package urlutil corrects the malformed URL patterns that show up in
// ASF DOAP descriptors before any network call is attempted.
package urlutil

import "strings"

// Normalize cleans a URL string, fixing known transcription defects.
// It never fails: unrecognized input passes through unchanged, and the
// empty string maps to the empty string.
//
// Known defects handled:
//   - "ihttp://..."  stray leading character before the scheme
//   - "https//..."   missing colon after the scheme
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}

	if strings.HasPrefix(u, "ihttp") {
		u = "http" + u[5:]
	}

	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}

	if strings.HasPrefix(u, "https//") {
		u = "https://" + u[7:]
	}

	return u
}

// IsAbsolute reports whether a normalized URL carries an http(s) scheme
func IsAbsolute(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
