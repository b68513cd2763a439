// Package sanitize strips markup from user supplied plain text.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// The strict policy removes every element and attribute; it is safe for
// concurrent use once built.
var policy = bluemonday.StrictPolicy()

const maxPasses = 8

// Text removes HTML from s and trims surrounding whitespace. Entities are
// decoded so "Tom & Jerry" survives unchanged, and the policy runs again on
// the decoded text until it is stable, so entity-encoded markup is removed too.
// Input that does not settle within maxPasses is returned in escaped form.
func Text(s string) string {
	for range maxPasses {
		cleaned := policy.Sanitize(s)
		decoded := html.UnescapeString(cleaned)
		if decoded == s {
			return strings.TrimSpace(decoded)
		}
		if policy.Sanitize(decoded) == cleaned {
			return strings.TrimSpace(decoded)
		}
		s = decoded
	}
	return strings.TrimSpace(policy.Sanitize(s))
}
