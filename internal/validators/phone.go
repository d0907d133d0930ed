package validators

import (
	"strings"
	"unicode"
)

// NormalizePhone strips formatting and prefixes countryCode when the number
// carries only area code and subscriber. It returns false when the result
// cannot be a mobile number.
func NormalizePhone(raw, countryCode string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")

	// DDD + número (10 ou 11 dígitos)
	if len(digits) == 10 || len(digits) == 11 {
		digits = countryCode + digits
	}

	if len(digits) < 12 || len(digits) > 15 {
		return "", false
	}
	return digits, true
}

// WhatsAppAddress formats an already normalized number for the messaging API.
func WhatsAppAddress(normalized string) string {
	return "whatsapp:+" + normalized
}
