package httpclient

import (
	"net/http"
	"strings"
)

var authFailureMarkers = []string{"token", "expired", "signature", "invalid"}

// IsAuthFailure decides whether a response means the session token is no
// longer valid. Every 401 qualifies. A 403 qualifies only when a
// top-level code, error or message string mentions the token, expiry,
// signature or invalidity; other 403s are ordinary permission errors.
func IsAuthFailure(status int, body []byte) bool {
	switch status {
	case http.StatusUnauthorized:
		return true
	case http.StatusForbidden:
		fields := topLevelStrings(body)
		for _, key := range []string{"code", "error", "message"} {
			v := strings.ToLower(fields[key])
			if v == "" {
				continue
			}
			for _, marker := range authFailureMarkers {
				if strings.Contains(v, marker) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
