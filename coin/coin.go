// Package coin holds amount arithmetic for token values expressed in a
// token's minor unit, and the reduced-precision packed encoding used for
// fees on the wire.
package coin

import (
	"math/big"

	"github.com/stratum-one/stratum/errors"
)

// NewAmount returns an amount in the token's minor unit.
func NewAmount(v int64) *big.Int {
	return big.NewInt(v)
}

// ParseAmount decodes a base-10 minor-unit amount string.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Wrap(errors.ErrAmount, "negative")
	}
	return v, nil
}

// Add returns a+b without mutating either argument.
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a-b without mutating either argument.
func Sub(a, b *big.Int) *big.Int {
	return new(big.Int).Sub(a, b)
}

// IsGTE returns true if a is at least b.
func IsGTE(a, b *big.Int) bool {
	return a.Cmp(b) >= 0
}
