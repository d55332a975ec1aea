package secrets

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

const maskRule = "preserveEnds(2,2)"

// MaskValue returns a log-safe rendition of a secret value.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(maskRule, value); err == nil && masked != value {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// MaskEntries returns a masked copy of the cache entries keyed by name, for
// diagnostics output.
func MaskEntries(entries []Entry) map[string]any {
	if len(entries) == 0 {
		return nil
	}
	masked := make(map[string]any, len(entries))
	for _, entry := range entries {
		masked[entry.Name] = map[string]any{
			"value":       MaskValue(entry.Value),
			"resolved_at": entry.ResolvedAt,
		}
	}
	return masked
}
