package coin

import (
	"math/big"

	"github.com/stratum-one/stratum/errors"
)

// Fees travel in a reduced-precision form: an 11 bit mantissa and a 5 bit
// base-10 exponent packed into two bytes as exponent<<11 | mantissa. The
// encoded value is mantissa * 10^exponent minor units.
const (
	feeMantissaBits = 11
	feeExponentBits = 5

	maxFeeMantissa int64 = 1<<feeMantissaBits - 1
	maxFeeExponent       = 1<<feeExponentBits - 1
)

var ten = big.NewInt(10)

// IsPackableFee reports whether the fee survives the packed encoding
// without loss.
func IsPackableFee(fee *big.Int) bool {
	packed, err := PackFee(fee)
	if err != nil {
		return false
	}
	return UnpackFee(packed).Cmp(fee) == 0
}

// PackFee encodes a fee into its two byte wire form. The fee must be
// exactly representable; use ClosestPackableFee first when it may not be.
//
// The encoding is canonical: values within the mantissa range keep a zero
// exponent, larger values shed every factor of ten. The packed form is
// part of the signed wire bytes, so every implementation must produce the
// same two bytes for the same fee.
func PackFee(fee *big.Int) (uint16, error) {
	if fee == nil || fee.Sign() < 0 {
		return 0, errors.Wrap(errors.ErrAmount, "negative or missing fee")
	}
	mantissa := new(big.Int).Set(fee)
	exponent := 0
	max := big.NewInt(maxFeeMantissa)
	if mantissa.Cmp(max) > 0 {
		quo := new(big.Int)
		rem := new(big.Int)
		for {
			quo.QuoRem(mantissa, ten, rem)
			if rem.Sign() != 0 {
				break
			}
			mantissa.Set(quo)
			exponent++
			if exponent > maxFeeExponent {
				return 0, errors.Wrapf(errors.ErrOverflow, "fee %s exceeds packed range", fee)
			}
		}
		if mantissa.Cmp(max) > 0 {
			return 0, errors.Wrapf(errors.ErrAmount, "fee %s is not packable", fee)
		}
	}
	return uint16(exponent)<<feeMantissaBits | uint16(mantissa.Int64()), nil
}

// UnpackFee decodes the two byte wire form back into a minor-unit amount.
func UnpackFee(packed uint16) *big.Int {
	mantissa := big.NewInt(int64(packed & (1<<feeMantissaBits - 1)))
	exponent := int(packed >> feeMantissaBits)
	scale := new(big.Int).Exp(ten, big.NewInt(int64(exponent)), nil)
	return mantissa.Mul(mantissa, scale)
}

// ClosestPackableFee rounds the fee down to the nearest value that the
// packed encoding can carry exactly. Rounding down never overcharges the
// payer.
func ClosestPackableFee(fee *big.Int) *big.Int {
	if fee == nil || fee.Sign() <= 0 {
		return big.NewInt(0)
	}
	mantissa := new(big.Int).Set(fee)
	exponent := 0
	max := big.NewInt(maxFeeMantissa)
	for mantissa.Cmp(max) > 0 {
		mantissa.Quo(mantissa, ten)
		exponent++
	}
	scale := new(big.Int).Exp(ten, big.NewInt(int64(exponent)), nil)
	return mantissa.Mul(mantissa, scale)
}
