package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidPhone is returned when a phone number cannot be normalized to the
// Uzbek format.
var ErrInvalidPhone = errors.New("invalid phone number format, expected +998 XX XXX XX XX")

// NormalizePhone validates an Uzbek phone number and returns it in the
// canonical display form "+998 XX XXX XX XX". All non-digit characters are
// stripped first; a bare 9-digit local number gets the 998 country code
// prefixed. The result must contain exactly 12 digits starting with 998.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if !strings.HasPrefix(digits, "998") {
		if len(digits) == 9 { // e.g. 90 123 45 67
			digits = "998" + digits
		} else {
			return "", ErrInvalidPhone
		}
	}
	if len(digits) != 12 {
		return "", ErrInvalidPhone
	}

	return fmt.Sprintf("+%s %s %s %s %s",
		digits[0:3], digits[3:5], digits[5:8], digits[8:10], digits[10:12]), nil
}
