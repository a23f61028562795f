// Package i18n resolves bilingual (FR/EN) labels for catalog entities.
// Language is always an explicit parameter; there is no ambient request
// language state anywhere in the codebase.
package i18n

import "strings"

// Lang is a normalized language tag. Only the primary subtag matters.
type Lang string

const (
	French  Lang = "fr"
	English Lang = "en"
)

// Parse normalizes a raw language tag or Accept-Language header value.
// Any tag whose primary subtag starts with "en" maps to English; everything
// else, including the empty string, maps to French.
func Parse(raw string) Lang {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return French
	}
	// Accept-Language may carry a list: "en-US,en;q=0.9,fr;q=0.8".
	if i := strings.IndexAny(raw, ",;"); i >= 0 {
		raw = raw[:i]
	}
	if strings.HasPrefix(raw, "en") {
		return English
	}
	return French
}

// Pick returns the label matching lang, falling back to whichever of the
// pair is non-empty. Deterministic and side-effect free.
func Pick(lang Lang, fr, en string) string {
	if lang == English {
		if en != "" {
			return en
		}
		return fr
	}
	if fr != "" {
		return fr
	}
	return en
}
