package form

import (
	"fmt"
	"regexp"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[\d\s-]{10,}$`)
	numericPattern = regexp.MustCompile(`^\d+$`)
	decimalPattern = regexp.MustCompile(`^\d*\.?\d*$`)
	urlPattern     = regexp.MustCompile(`^https?://.+\..+`)
	zipPattern     = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Common rules with their default messages.
var (
	NonEmpty = Required("This field is required")
	Email    = Pattern(emailPattern, "Invalid email address")
	Phone    = Pattern(phonePattern, "Invalid phone number")
	Numeric  = Pattern(numericPattern, "Must be a number")
	Decimal  = Pattern(decimalPattern, "Must be a decimal number")
	URL      = Pattern(urlPattern, "Invalid URL")
	ZipCode  = Pattern(zipPattern, "Valid ZIP code is required")
)

// AtLeastChars requires at least n characters.
func AtLeastChars(n int) Rule {
	return MinLength(n, fmt.Sprintf("Must be at least %d characters", n))
}

// AtMostChars allows at most n characters.
func AtMostChars(n int) Rule {
	return MaxLength(n, fmt.Sprintf("Must be no more than %d characters", n))
}

// WithMessage returns a copy of r reporting message instead of its own.
// Custom and All rules keep the messages of the functions and rules they
// wrap.
func (r Rule) WithMessage(message string) Rule {
	r.Message = message
	return r
}
