// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/stratagroups/internal/app/system/htmlsanitize"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name strips markup, collapses internal whitespace and trims a display name.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(htmlsanitize.PlainText(s)), " ")
}
