package sigs

import (
	"math"

	"github.com/stratum-one/stratum/errors"
)

// Nonce is a per-account monotonic counter. Every transaction an account
// originates consumes exactly one value; this is the protocol's replay
// protection, batches carry no identity of their own.
type Nonce uint32

// CheckAndIncrement implements the check and increment operation. If the
// current value is the same as the given expected value then it is
// incremented, otherwise an error is returned. A rejected nonce is never
// reusable; retrying a batch requires fresh nonces.
func (n *Nonce) CheckAndIncrement(expected uint32) error {
	if uint32(*n) != expected {
		return errors.Wrapf(errors.ErrNonce, "expected %d, got %d", *n, expected)
	}
	if uint32(*n) == math.MaxUint32 {
		return errors.Wrap(errors.ErrOverflow, "nonce out of range")
	}
	*n++
	return nil
}
