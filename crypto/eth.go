// Package crypto wraps the two signature schemes of the protocol: the
// root-chain secp256k1 personal-message signatures that authorize batches,
// and the ed25519 layer-2 keys that sign individual transactions.
package crypto

import (
	"crypto/rand"
	"strconv"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/sha3"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/errors"
)

// EthSignatureLength is the byte length of a root-chain signature in the
// r||s||v layout with v in {27, 28}.
const EthSignatureLength = 65

// EthSignature is a recoverable root-chain signature over a canonical
// authorization message. It carries no validity on its own; it only means
// something matched against a message and an address.
type EthSignature []byte

// Validate checks the fixed layout. A structurally valid signature can
// still be cryptographically wrong.
func (s EthSignature) Validate() error {
	if len(s) != EthSignatureLength {
		return errors.Wrapf(errors.ErrInput, "signature length %d", len(s))
	}
	if v := s[64]; v != 27 && v != 28 {
		return errors.Wrapf(errors.ErrInput, "recovery id %d", v)
	}
	return nil
}

// EthKey is a root-chain secp256k1 private key.
type EthKey struct {
	priv *btcec.PrivateKey
}

// GenEthKey returns a random new root-chain key.
func GenEthKey() *EthKey {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(err)
	}
	k, _ := EthKeyFromSeed(seed[:])
	return k
}

// EthKeyFromSeed builds a key from 32 raw bytes. Use for deterministic
// keys in test cases.
func EthKeyFromSeed(seed []byte) (*EthKey, error) {
	if len(seed) != 32 {
		return nil, errors.Wrapf(errors.ErrInput, "seed length %d", len(seed))
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), seed)
	return &EthKey{priv: priv}, nil
}

// Address derives the root-chain address of this key.
func (k *EthKey) Address() stratum.Address {
	return pubkeyAddress(k.priv.PubKey())
}

// SignMessage produces a personal-message signature: the message is
// prefixed, keccak hashed and signed with a recoverable signature.
func (k *EthKey) SignMessage(msg []byte) (EthSignature, error) {
	compact, err := btcec.SignCompact(btcec.S256(), k.priv, personalHash(msg), false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	// btcec puts the recovery byte first, the wire format wants r||s||v.
	sig := make(EthSignature, EthSignatureLength)
	copy(sig[:64], compact[1:])
	sig[64] = compact[0]
	return sig, nil
}

// RecoverSigner returns the address whose key produced the signature over
// the given message.
func RecoverSigner(msg []byte, sig EthSignature) (stratum.Address, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	compact := make([]byte, EthSignatureLength)
	compact[0] = sig[64]
	copy(compact[1:], sig[:64])
	pub, _, err := btcec.RecoverCompact(btcec.S256(), compact, personalHash(msg))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	return pubkeyAddress(pub), nil
}

// VerifyMessage checks that the signature over the message recovers to
// the expected signer address.
func VerifyMessage(msg []byte, sig EthSignature, signer stratum.Address) bool {
	got, err := RecoverSigner(msg, sig)
	if err != nil {
		return false
	}
	return got.Equals(signer)
}

// personalHash implements the root-chain signed-message envelope: the
// payload is length prefixed before hashing so a message can never be a
// valid transaction.
func personalHash(msg []byte) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(msg))
	return Keccak256([]byte(prefix), msg)
}

// Keccak256 computes the legacy keccak digest over the concatenation of
// all inputs.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func pubkeyAddress(pub *btcec.PublicKey) stratum.Address {
	raw := pub.SerializeUncompressed()
	// drop the 0x04 marker, keep the low 20 bytes of the keccak digest
	digest := Keccak256(raw[1:])
	return stratum.Address(digest[12:])
}
