package secrets

import "strings"

const (
	// ReferencePrefix marks a configuration value as a pointer into the secret store.
	ReferencePrefix = "@Provider("
	// KeyVaultPrefix is accepted as an alias of ReferencePrefix.
	KeyVaultPrefix = "@Microsoft.KeyVault("

	secretURIKey    = "SecretUri="
	secretsSegment  = "/secrets/"
	referenceScheme = "https://"
)

var referencePrefixes = []string{ReferencePrefix, KeyVaultPrefix}

// IsReference reports whether raw uses a secret reference prefix. Anything
// else is a literal credential.
func IsReference(raw string) bool {
	_, ok := trimPrefix(raw)
	return ok
}

// ParseReference extracts the secret name from
// @Provider(SecretUri=https://<vault>/secrets/<name>/<version>).
// A malformed reference yields ok=false.
func ParseReference(raw string) (string, bool) {
	body, ok := trimPrefix(raw)
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(body, secretURIKey) {
		return "", false
	}
	uri := strings.TrimPrefix(body, secretURIKey)
	if !strings.HasPrefix(uri, referenceScheme) {
		return "", false
	}
	rest := strings.TrimPrefix(uri, referenceScheme)
	idx := strings.Index(rest, secretsSegment)
	if idx <= 0 {
		// no vault host
		return "", false
	}
	tail := rest[idx+len(secretsSegment):]
	end := strings.IndexByte(tail, '/')
	if end <= 0 {
		return "", false
	}
	name := tail[:end]
	if strings.ContainsAny(name, "?#) ") {
		return "", false
	}
	return name, true
}

func trimPrefix(raw string) (string, bool) {
	for _, prefix := range referencePrefixes {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimPrefix(raw, prefix), true
		}
	}
	return "", false
}
