package utils

import (
	"regexp"
	"strings"
)

var (
	nonDigitPattern      = regexp.MustCompile(`\D`)
	mobilePattern        = regexp.MustCompile(`09\d{9}`)
	routeCodePrefix      = regexp.MustCompile(`^[A-Z]\s`)
	repeatedSpacePattern = regexp.MustCompile(`\s+`)
)

// Digits strips every non-digit character
func Digits(value string) string {
	return nonDigitPattern.ReplaceAllString(value, "")
}

// ExtractMobile returns the first Philippine mobile number ("09" + 9 digits)
// found in the digits of value, or "" when there is none.
func ExtractMobile(value string) string {
	return mobilePattern.FindString(Digits(value))
}

// CleanDriverName drops the single route-code letter sheets put in front of
// driver names ("A Juan Cruz" -> "Juan Cruz") and trims the rest.
func CleanDriverName(name string) string {
	if routeCodePrefix.MatchString(name) {
		return strings.TrimSpace(name[2:])
	}
	return strings.TrimSpace(name)
}

// JoinName joins name parts with single spaces, skipping empty parts
func JoinName(parts ...string) string {
	joined := strings.Join(parts, " ")
	return strings.TrimSpace(repeatedSpacePattern.ReplaceAllString(joined, " "))
}

// ToE164 converts local and dashed country-code numbers for message delivery:
// "63-9171234567" -> "+639171234567", "09171234567" -> "+639171234567".
func ToE164(number string) string {
	n := strings.TrimSpace(number)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "+") {
		return "+" + Digits(n)
	}
	if country, rest, ok := strings.Cut(n, "-"); ok && len(Digits(country)) <= 3 && !strings.HasPrefix(country, "0") {
		return "+" + Digits(country) + Digits(rest)
	}
	digits := Digits(n)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		return "+63" + digits[1:]
	}
	return "+" + digits
}
