package utils

import (
	"strings"
	"unicode"
)

// Client phone numbers are stored in E.164 shape: optional +, then digits.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone drops spaces, dashes and brackets, keeping a leading +.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	plus := strings.HasPrefix(phone, "+")
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if plus && digits != "" {
		return "+" + digits
	}
	return digits
}

// IsValidEmail accepts local@domain.tld with a non-empty local part.
func IsValidEmail(email string) bool {
	local, domain, ok := strings.Cut(NormalizeEmail(email), "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

func IsValidPhone(phone string) bool {
	n := len(strings.TrimPrefix(NormalizePhone(phone), "+"))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// ContainsFold is the chat-list name filter: case-insensitive, with the
// query trimmed. An empty query matches every name.
func ContainsFold(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(strings.TrimSpace(query)))
}
