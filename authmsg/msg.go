package authmsg

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// Scheme selects the canonical message encoding of a batch.
type Scheme uint8

const (
	// SchemeContentHash signs the hex digest of the serialized batch.
	SchemeContentHash Scheme = iota
	// SchemeLegacy signs the signer's own transactions as templated
	// text blocks.
	SchemeLegacy
	// SchemeLegacyShared signs one text covering every transaction in
	// the batch, shared by all signers.
	SchemeLegacyShared
)

func (s Scheme) String() string {
	switch s {
	case SchemeContentHash:
		return "content-hash"
	case SchemeLegacy:
		return "legacy"
	case SchemeLegacyShared:
		return "legacy-shared"
	default:
		return fmt.Sprintf("scheme-%d", uint8(s))
	}
}

// Schemes lists every encoding a verifier must accept, in the order trial
// verification should attempt them: current clients first.
func Schemes() []Scheme {
	return []Scheme{SchemeContentHash, SchemeLegacy, SchemeLegacyShared}
}

// blockSeparator joins message blocks. A blank line, by wire contract.
const blockSeparator = "\n\n"

// SignerMessage returns the exact bytes the given signer must sign to
// authorize the batch under the given scheme.
//
// Under SchemeContentHash and SchemeLegacyShared every required signer
// receives the same bytes. Under SchemeLegacy each signer receives only
// the blocks of the transactions it originated.
func SignerMessage(txs []stratum.Tx, scheme Scheme, signer stratum.Address, r token.Resolver) ([]byte, error) {
	if len(txs) == 0 {
		return nil, errors.Wrap(errors.ErrConfiguration, "empty batch")
	}
	switch scheme {
	case SchemeContentHash:
		return ContentHash(txs)
	case SchemeLegacy:
		return legacyMessage(txs, signer, r)
	case SchemeLegacyShared:
		return sharedMessage(txs, r)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown scheme %d", scheme)
	}
}

// ContentHash computes the digest form of the canonical message: sha256
// over the concatenated wire bytes of every transaction in batch order,
// rendered as lowercase hex without an algorithm prefix. The hex text
// itself is what gets signed.
func ContentHash(txs []stratum.Tx) ([]byte, error) {
	h := sha256.New()
	for i, tx := range txs {
		raw, err := tx.WireBytes()
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		h.Write(raw)
	}
	return []byte(hex.EncodeToString(h.Sum(nil))), nil
}

// legacyMessage concatenates the templated blocks of the transactions the
// signer originated, preserving batch order.
func legacyMessage(txs []stratum.Tx, signer stratum.Address, r token.Resolver) ([]byte, error) {
	var blocks []string
	for i, tx := range txs {
		if !tx.Base().Origin().Equals(signer) {
			continue
		}
		block, err := legacyBlock(tx, r)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return nil, errors.Wrapf(errors.ErrConfiguration, "signer %s originated no transactions", signer)
	}
	return []byte(strings.Join(blocks, blockSeparator)), nil
}

// sharedMessage concatenates From-headed blocks for every transaction, in
// batch order. All signers sign this one text.
func sharedMessage(txs []stratum.Tx, r token.Resolver) ([]byte, error) {
	blocks := make([]string, len(txs))
	for i, tx := range txs {
		block, err := sharedBlock(tx, r)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		blocks[i] = block
	}
	return []byte(strings.Join(blocks, blockSeparator)), nil
}

// legacyBlock renders one transaction in the single-signer template. The
// exact field order and casing are signed bytes; do not touch.
func legacyBlock(tx stratum.Tx, r token.Resolver) (string, error) {
	b := tx.Base()
	tok, err := r.ByID(b.Token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s\nTo: %s\nNonce: %d\nFee: %s %s\nAccount Id: %d",
		tx.Type(),
		tok.FormatAmount(b.Amount), tok.Symbol,
		tx.Destination(),
		b.Nonce,
		tok.FormatAmount(b.Fee), tok.Symbol,
		b.AccountID,
	), nil
}

// sharedBlock renders one transaction in the multi-signer template: the
// origin leads, the nonce terminates.
func sharedBlock(tx stratum.Tx, r token.Resolver) (string, error) {
	b := tx.Base()
	tok, err := r.ByID(b.Token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("From: %s\n%s %s %s\nTo: %s\nFee: %s %s\nAccount Id: %d\nNonce: %d",
		b.From,
		tx.Type(),
		tok.FormatAmount(b.Amount), tok.Symbol,
		tx.Destination(),
		tok.FormatAmount(b.Fee), tok.Symbol,
		b.AccountID,
		b.Nonce,
	), nil
}
