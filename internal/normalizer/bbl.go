// Package normalizer canonicalizes raw parcel identifiers into digit-only
// BBL keys suitable for lookup and joining.
package normalizer

import (
	"regexp"
	"strings"
)

// MinKeyDigits is the minimum digit count a canonical key needs before it is
// worth a remote lookup. A full BBL is 10 digits; 9 tolerates a stripped
// leading zero.
const MinKeyDigits = 9

var nonDigit = regexp.MustCompile(`\D`)

// CleanBBL converts a raw cell value into its canonical digit-only form.
// Spreadsheets frequently hand numeric identifiers over as "1001990025.0",
// so everything from the first decimal point on is truncated, never rounded.
// The result may be empty or short; CleanBBL never rejects input.
func CleanBBL(raw string) string {
	s := raw
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}

	return nonDigit.ReplaceAllString(s, "")
}

// ValidKey reports whether a canonical key is long enough to look up.
func ValidKey(key string) bool {
	return len(key) >= MinKeyDigits
}
