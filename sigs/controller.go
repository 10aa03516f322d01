// Package sigs is the verifying side of batch authorization: it checks
// that the collected root-chain signatures correspond exactly to the
// required signer set, and guards per-account transaction nonces.
package sigs

import (
	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/authmsg"
	"github.com/stratum-one/stratum/batch"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// VerifyBatchSignatures checks every root-chain signature of a batch. The
// signatures are positionally associated with the required signers (the
// distinct origin accounts, in batch order). A missing, extra or
// cryptographically wrong signature rejects the whole batch.
//
// The scheme a client signed under is not declared on the wire. The
// verifier recomputes each candidate canonical message and accepts a
// signature that recovers the signer under any supported scheme, trying
// the content hash first. This is what keeps batches authored for the
// legacy text scheme verifiable by current servers and vice versa.
func VerifyBatchSignatures(txs []stratum.Tx, sigs []crypto.EthSignature, r token.Resolver) error {
	signers := batch.RequiredSigners(txs)
	if len(sigs) != len(signers) {
		return errors.ErrSignature
	}
	for i, signer := range signers {
		if !verifySigner(txs, sigs[i], signer, r) {
			return errors.ErrSignature
		}
	}
	return nil
}

func verifySigner(txs []stratum.Tx, sig crypto.EthSignature, signer stratum.Address, r token.Resolver) bool {
	if sig.Validate() != nil {
		return false
	}
	for _, scheme := range authmsg.Schemes() {
		msg, err := authmsg.SignerMessage(txs, scheme, signer, r)
		if err != nil {
			continue
		}
		if crypto.VerifyMessage(msg, sig, signer) {
			return true
		}
	}
	return false
}

// VerifyTxSignature checks the layer-2 signing-key signature carried by a
// single transaction against the account's registered public key.
func VerifyTxSignature(pubkey []byte, tx stratum.Tx) error {
	raw, err := tx.WireBytes()
	if err != nil {
		return err
	}
	if !crypto.VerifyTxSignature(pubkey, raw, tx.Base().Signature) {
		return errors.Wrap(errors.ErrUnauthorized, "invalid transaction signature")
	}
	return nil
}
