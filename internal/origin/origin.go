// Package origin compares browser origins.
package origin

import (
	"errors"
	"net/url"
	"strings"
)

var ErrIncomplete = errors.New("origin must include scheme and host")

// Normalize lower-cases scheme and host and drops any path, so origins can
// be compared as strings. An empty input yields "" and no error.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrIncomplete
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), nil
}
