package crypto

import (
	"golang.org/x/crypto/ed25519"

	"github.com/stratum-one/stratum/errors"
)

// TxKey is a layer-2 transaction signing key. It signs the wire bytes of
// individual transactions; it never signs batch authorization messages.
type TxKey struct {
	priv ed25519.PrivateKey
}

// GenTxKey returns a random new transaction key.
func GenTxKey() *TxKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &TxKey{priv: priv}
}

// TxKeyFromSeed will deterministically generate a key from a given seed.
// Use if you have a strong source of external randomness, or for
// deterministic keys in test cases.
func TxKeyFromSeed(seed []byte) (*TxKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed length %d", len(seed))
	}
	return &TxKey{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign returns a matching signature for this private key
func (k *TxKey) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Public returns the raw public key bytes.
func (k *TxKey) Public() []byte {
	return []byte(k.priv.Public().(ed25519.PublicKey))
}

// VerifyTxSignature verifies an ed25519 transaction signature.
func VerifyTxSignature(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}
