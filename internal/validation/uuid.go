package validation

import "regexp"

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsCanonicalUUIDv4 reports whether s is a lowercase 8-4-4-4-12 version 4 UUID
// with the RFC 4122 variant.
func IsCanonicalUUIDv4(s string) bool {
	return uuidV4Pattern.MatchString(s)
}
