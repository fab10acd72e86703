package validate

import (
	"encoding/base64"
	"strings"

	"github.com/redactyl/piiscan/internal/types"
)

// Func reports whether s is structurally valid for a label. Implementations
// must accept any input without panicking.
type Func func(s string) bool

// Registry maps labels to their structural validators.
type Registry map[types.Label]Func

// DefaultRegistry returns the built-in validators.
func DefaultRegistry() Registry {
	return Registry{
		types.CreditCard:    Luhn,
		types.RoutingNumber: ABARouting,
		types.JWT:           IsJWTStructure,
		types.AWSAccessKey:  LooksLikeAWSAccessKey,
	}
}

// Validate runs the validator registered for label. applicable is false when
// no validator exists, in which case ok is always false.
func (r Registry) Validate(label types.Label, s string) (ok, applicable bool) {
	fn, found := r[label]
	if !found || fn == nil {
		return false, false
	}
	return fn(s), true
}

// digits returns the ASCII digits of s in order.
func digits(s string) []int {
	out := make([]int, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			out = append(out, int(c-'0'))
		}
	}
	return out
}

// Luhn strips non-digits and applies the mod-10 checksum. Input without any
// digits is invalid.
func Luhn(s string) bool {
	ds := digits(s)
	if len(ds) == 0 {
		return false
	}
	sum := 0
	double := false
	for i := len(ds) - 1; i >= 0; i-- {
		d := ds[i]
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

// ABARouting validates a US bank routing number: nine digits whose 3-7-1
// weighted sum is a multiple of ten.
func ABARouting(s string) bool {
	ds := digits(s)
	if len(ds) != 9 {
		return false
	}
	weights := [9]int{3, 7, 1, 3, 7, 1, 3, 7, 1}
	sum := 0
	for i, w := range weights {
		sum += ds[i] * w
	}
	return sum != 0 && sum%10 == 0
}

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsBase64URLNoPad reports whether s is valid base64url (no padding) for JWT segments.
func IsBase64URLNoPad(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil
}

// LooksLikeAWSAccessKey checks for AKIA/ASIA + 16 uppercase alnum.
func LooksLikeAWSAccessKey(s string) bool {
	if !(strings.HasPrefix(s, "AKIA") || strings.HasPrefix(s, "ASIA")) {
		return false
	}
	if len(s) != 20 {
		return false
	}
	const upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	return IsAlphabet(s[4:], upperAlnum)
}

// IsJWTStructure verifies 3 segments with base64url-decodable header and payload.
func IsJWTStructure(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	// signature is not decoded
	return IsBase64URLNoPad(parts[0]) && IsBase64URLNoPad(parts[1])
}
