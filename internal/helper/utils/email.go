package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail canonicalizes an address before storage and lookup so
// equivalent addresses collide to one record. Policy: lowercase + trim, and
// for Gmail-hosted domains the dots in the local part are stripped because
// Gmail ignores them. This is the single place the policy lives.
func NormalizeEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return normalized
	}

	local, domain := normalized[:at], normalized[at+1:]
	if domain == "gmail.com" || domain == "googlemail.com" {
		local = strings.ReplaceAll(local, ".", "")
		return local + "@" + domain
	}
	return normalized
}

func EmailsEquivalent(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
