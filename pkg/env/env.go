package env

import (
	"os"
	"strings"
)

const prefix = "MIXBAR_"

// Get returns MIXBAR_<key>, then the bare key, then fallback. Process-level
// knobs read before config loads (log format, instance id) go through here.
func Get(key, fallback string) string {
	if !strings.HasPrefix(key, prefix) {
		if val := strings.TrimSpace(os.Getenv(prefix + key)); val != "" {
			return val
		}
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
