// Package batch assembles independently originated transactions into one
// atomically authorized batch: it fixes the transaction order, derives
// the required signer set, designates the fee payer and associates one
// root-chain signature with every signer.
package batch

import (
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// Builder constructs signed transactions for one account it controls.
// Implemented by wallet.Wallet.
type Builder interface {
	Address() stratum.Address
	BuildTransfer(to stratum.Address, tok token.Token, amount, fee *big.Int) (stratum.Tx, error)
	BuildWithdraw(to stratum.Address, tok token.Token, amount, fee *big.Int) (stratum.Tx, error)
}

// Signer produces a root-chain signature over a canonical message for the
// account it controls. Implemented by wallet.Wallet.
type Signer interface {
	Address() stratum.Address
	SignMessage(msg []byte) (crypto.EthSignature, error)
}

// Intent is one semantic transfer or withdrawal wish, before fees and
// nonces are fixed.
type Intent struct {
	Origin   Builder
	To       stratum.Address
	Token    token.Token
	Amount   *big.Int
	Withdraw bool
}

// Batch is an ordered sequence of transactions plus the root-chain
// signatures authorizing them. The transaction order is fixed at
// construction; changing it would invalidate every collected signature.
type Batch struct {
	txs     []stratum.Tx
	signers []stratum.Address
	sigs    map[string]crypto.EthSignature
}

// New builds a batch over already constructed transactions. The required
// signer set is exactly the distinct origin accounts, in first-seen
// order.
func New(txs ...stratum.Tx) (*Batch, error) {
	if len(txs) == 0 {
		return nil, errors.Wrap(errors.ErrConfiguration, "empty batch")
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
	}
	return &Batch{
		txs:     txs,
		signers: RequiredSigners(txs),
		sigs:    make(map[string]crypto.EthSignature),
	}, nil
}

// RequiredSigners returns the distinct origin accounts of the given
// transactions, in first-seen order.
func RequiredSigners(txs []stratum.Tx) []stratum.Address {
	seen := make(map[string]bool, len(txs))
	var signers []stratum.Address
	for _, tx := range txs {
		origin := tx.Base().Origin()
		if seen[string(origin)] {
			continue
		}
		seen[string(origin)] = true
		signers = append(signers, origin)
	}
	return signers
}

// Txs returns the transactions in batch order.
func (b *Batch) Txs() []stratum.Tx { return b.txs }

// Signers returns the required signer set in batch order.
func (b *Batch) Signers() []stratum.Address { return b.signers }

// SetSignature associates a collected signature with a required signer.
// Signatures for accounts outside the signer set are refused locally.
func (b *Batch) SetSignature(signer stratum.Address, sig crypto.EthSignature) error {
	if !b.isRequired(signer) {
		return errors.Wrapf(errors.ErrConfiguration, "%s is not a required signer", signer)
	}
	if err := sig.Validate(); err != nil {
		return err
	}
	b.sigs[string(signer)] = sig
	return nil
}

// Signatures returns one signature per required signer, positionally
// aligned with Signers. An incomplete association is a local precondition
// failure, never sent to the oracle.
func (b *Batch) Signatures() ([]crypto.EthSignature, error) {
	sigs := make([]crypto.EthSignature, len(b.signers))
	for i, signer := range b.signers {
		sig, ok := b.sigs[string(signer)]
		if !ok {
			return nil, errors.Wrapf(errors.ErrConfiguration, "missing signature for %s", signer)
		}
		sigs[i] = sig
	}
	return sigs, nil
}

func (b *Batch) isRequired(signer stratum.Address) bool {
	for _, s := range b.signers {
		if s.Equals(signer) {
			return true
		}
	}
	return false
}
