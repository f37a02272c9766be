// internal/app/system/sanitize/sanitize.go
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy strips all HTML. User-supplied text (bios, descriptions, comment
// bodies) is stored and served as plain text; the client renders it as such.
var policy = bluemonday.StrictPolicy()

// Text removes any HTML markup from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
