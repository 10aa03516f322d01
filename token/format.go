package token

import (
	"math/big"
	"strings"
)

// FormatAmount renders a minor-unit amount in the token's major unit, the
// way the human-readable authorization messages expect it: always with a
// decimal point, trailing zeros trimmed but at least one fractional digit
// kept. 1 ETH in wei renders as "1.0".
//
// The output is part of the signed bytes, so the rules above are a wire
// contract, not presentation polish.
func (t Token) FormatAmount(amount *big.Int) string {
	s := amount.String()
	dec := int(t.Decimals)
	if dec == 0 {
		return s + ".0"
	}
	if len(s) <= dec {
		s = strings.Repeat("0", dec-len(s)+1) + s
	}
	cut := len(s) - dec
	whole, frac := s[:cut], s[cut:]
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}
	return whole + "." + frac
}
