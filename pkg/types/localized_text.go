package types

import "strings"

// DefaultLocale is used when a requested translation is missing.
const DefaultLocale = "en"

// LocalizedText maps a locale tag (en, es, ...) to a translated string.
type LocalizedText map[string]string

// Get returns the translation for locale, falling back to DefaultLocale and
// then to any non-empty translation so labels are never blank when data exists.
func (t LocalizedText) Get(locale string) string {
	if len(t) == 0 {
		return ""
	}
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale != "" {
		if v := strings.TrimSpace(t[locale]); v != "" {
			return v
		}
		if idx := strings.IndexAny(locale, "-_"); idx > 0 {
			if v := strings.TrimSpace(t[locale[:idx]]); v != "" {
				return v
			}
		}
	}
	if v := strings.TrimSpace(t[DefaultLocale]); v != "" {
		return v
	}
	best := ""
	for key, v := range t {
		if strings.TrimSpace(v) == "" {
			continue
		}
		// deterministic pick across map iteration order
		if best == "" || key < best {
			best = key
		}
	}
	if best == "" {
		return ""
	}
	return strings.TrimSpace(t[best])
}
