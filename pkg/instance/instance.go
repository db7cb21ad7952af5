// Package instance names the running process for log correlation.
package instance

import (
	"os"
	"strings"
)

// envVars are checked in order; DYNO is set by Heroku-style platforms.
var envVars = []string{"COMMISSARY_INSTANCE_ID", "DYNO", "HOSTNAME"}

// GetID returns the first non-empty instance identifier, falling back to the
// host name and finally to fallback.
func GetID(fallback string) string {
	for _, key := range envVars {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
