package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned for numbers that cannot be canonicalized to a
// US E.164 number.
var ErrInvalidPhone = errors.New("invalid phone number: expected a US number")

// NormalizePhone canonicalizes raw phone input to E.164 (+1XXXXXXXXXX).
// Punctuation is ignored, so "555-555-5555", "(555) 555-5555" and
// "+1 555 555 5555" all produce the same key. The result is used as the
// unique registration key, so every lookup and insert must go through this
// function. Non-US numbers are rejected.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	switch d := digits.String(); {
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && strings.HasPrefix(d, "1"):
		return "+" + d, nil
	default:
		return "", ErrInvalidPhone
	}
}
