package payment

import "strings"

const maxCardDigits = 16

// FormatCardNumber normalizes card number input for display: non-digits
// are stripped, the digits are capped at 16 and grouped into runs of four
// joined by single spaces. Grouping is presentation only; validity is the
// digit-count check in Card.Valid.
func FormatCardNumber(input string) string {
	digits := stripNonDigits(input)
	if len(digits) > maxCardDigits {
		digits = digits[:maxCardDigits]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// FormatExpiry normalizes expiry input to MM/YY: non-digits are stripped,
// input is capped at four digits, and a slash is inserted after the second
// digit once at least two are present.
func FormatExpiry(input string) string {
	digits := stripNonDigits(input)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) < 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

func validExpiry(s string) bool {
	digits := stripNonDigits(s)
	if len(digits) != 4 {
		return false
	}
	month := int(digits[0]-'0')*10 + int(digits[1]-'0')
	return month >= 1 && month <= 12
}

func validCVV(s string) bool {
	if len(s) < 3 || len(s) > 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
