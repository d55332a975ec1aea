package blob

import (
	"strconv"
	"strings"
	"time"
)

// SanitizeName replaces every character outside [A-Za-z0-9.] with '_'.
func SanitizeName(original string) string {
	var b strings.Builder
	b.Grow(len(original))
	for _, r := range original {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// BlobName builds the stored object name: <epochMillis>-<sanitized original>.
func BlobName(original string, now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + SanitizeName(original)
}
