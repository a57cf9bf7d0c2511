package awsprisma

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// MapSeverity converts a Prisma policy severity into a finding severity.
// "informational" becomes Info; every other value is capitalized (first
// letter upper case, the rest lower case). Values outside the canonical set
// are passed through, not rejected.
func MapSeverity(raw string) schemas.Severity {
	if raw == "informational" {
		return schemas.SeverityInfo
	}
	return schemas.Severity(capitalize(raw))
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return strings.ToLower(s)
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
