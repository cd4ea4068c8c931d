// Package normalize canonicalizes user-supplied identifiers before they
// reach storage or comparisons.
package normalize

import "strings"

// Email canonicalizes an email address: surrounding whitespace is trimmed
// and the address is lower-cased. The users collection has a unique index
// on the result, so every write and lookup must go through here.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
