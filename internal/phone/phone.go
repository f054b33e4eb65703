// Package phone converts user-supplied phone numbers into the
// country-code-prefixed subscriber format the payment gateway expects,
// e.g. "0712 345 678" becomes "254712345678".
package phone

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmpty is returned when the input contains no characters after
// whitespace is stripped.
var ErrEmpty = errors.New("phone: empty number")

// Normalize strips all whitespace, drops a leading "+", and replaces a
// leading national trunk "0" with the 254 country code. Anything else is
// passed through unchanged; digit-count validation is left to the gateway,
// which is the real authority on what it will accept.
func Normalize(raw string) (string, error) {
	trimmed := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if trimmed == "" {
		return "", ErrEmpty
	}

	switch {
	case strings.HasPrefix(trimmed, "+"):
		return trimmed[1:], nil
	case strings.HasPrefix(trimmed, "0"):
		return "254" + trimmed[1:], nil
	}
	return trimmed, nil
}
