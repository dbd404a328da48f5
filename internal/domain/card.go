package domain

// CardSpec is the normalized form of a user-supplied card specification.
// All fields besides BIN are optional; empty means "randomize".
type CardSpec struct {
	BIN   string
	Month string // 2 digits, "01".."12"
	Year  string // 4 digits, e.g. "2027"
	CVV   string // 3-4 digits
}

// GeneratedCard is a synthetic payment-card record. Number always passes the
// Luhn checksum and starts with the originating specification's BIN.
type GeneratedCard struct {
	Number string
	Month  string // 2 digits
	Year   string // 2 digits
	CVV    string // 3-4 digits
}

// BINMinLength and BINMaxLength bound an acceptable bank identification number.
const (
	BINMinLength = 6
	BINMaxLength = 16
)

// ValidBIN reports whether s is an acceptable bank identification number:
// digits only, between 6 and 16 characters inclusive.
func ValidBIN(s string) bool {
	if len(s) < BINMinLength || len(s) > BINMaxLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LuhnValid reports whether the digit string passes the Luhn mod-10 checksum.
// Non-digit input is rejected.
func LuhnValid(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
