// Package wallet binds an account's keys to the transaction builder: it
// tracks the pending nonce, constructs signed transfer and withdraw
// transactions and produces the root-chain signatures that authorize
// batches.
package wallet

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/client"
	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// FeeFactor pads the quoted fee so a batch survives small schedule
// movements between the quote and the submission.
const FeeFactor = 3

// Wallet owns one layer-2 account: its root-chain key, its transaction
// signing key and its nonce sequence.
type Wallet struct {
	ethKey   *crypto.EthKey
	txKey    *crypto.TxKey
	provider client.Provider
	token    token.Token

	accountID uint32
	connected bool
	nonce     uint32 // atomic; next nonce to hand out
}

// New creates a wallet from existing keys. Call Connect before building
// transactions.
func New(ethKey *crypto.EthKey, txKey *crypto.TxKey, tok token.Token, p client.Provider) *Wallet {
	return &Wallet{
		ethKey:   ethKey,
		txKey:    txKey,
		provider: p,
		token:    tok,
	}
}

// NewRandom creates a wallet with fresh random keys.
func NewRandom(tok token.Token, p client.Provider) *Wallet {
	return New(crypto.GenEthKey(), crypto.GenTxKey(), tok, p)
}

// Address returns the wallet's root-chain address.
func (w *Wallet) Address() stratum.Address {
	return w.ethKey.Address()
}

// TxPubkey returns the public half of the transaction signing key, as
// registered with the oracle.
func (w *Wallet) TxPubkey() []byte {
	return w.txKey.Public()
}

// Token returns the token this wallet operates in.
func (w *Wallet) Token() token.Token {
	return w.token
}

// AccountID returns the layer-2 account id. Valid only after Connect.
func (w *Wallet) AccountID() uint32 {
	return w.accountID
}

// Connect fetches the account id and committed nonce from the provider.
func (w *Wallet) Connect(ctx context.Context) error {
	info, err := w.provider.AccountInfo(ctx, w.Address())
	if err != nil {
		return errors.Wrap(err, "account info")
	}
	w.accountID = info.ID
	atomic.StoreUint32(&w.nonce, info.Nonce)
	w.connected = true
	return nil
}

// RefreshNonce re-reads the committed nonce. This recovers from nonce
// mismatch after a rejected batch: a rejected nonce cannot be reused, the
// sequence must be re-synced before rebuilding.
func (w *Wallet) RefreshNonce(ctx context.Context) error {
	info, err := w.provider.AccountInfo(ctx, w.Address())
	if err != nil {
		return errors.Wrap(err, "account info")
	}
	atomic.StoreUint32(&w.nonce, info.Nonce)
	return nil
}

// PendingNonce returns the next nonce and advances the sequence.
func (w *Wallet) PendingNonce() uint32 {
	return atomic.AddUint32(&w.nonce, 1) - 1
}

// SufficientFee quotes a fee large enough to process any transaction
// kind of this wallet, padded by FeeFactor and rounded to the closest
// packable amount.
func (w *Wallet) SufficientFee(ctx context.Context) (*big.Int, error) {
	quoted, err := w.provider.TxFee(ctx,
		[]string{stratum.TypeWithdraw.String()},
		[]stratum.Address{w.Address()},
		w.token.ID)
	if err != nil {
		return nil, errors.Wrap(err, "fee query")
	}
	fee := new(big.Int).Mul(quoted, big.NewInt(FeeFactor))
	return coin.ClosestPackableFee(fee), nil
}

// Balance returns the wallet balance at the given confirmation stage.
func (w *Wallet) Balance(ctx context.Context, status stratum.BlockStatus) (*big.Int, error) {
	return w.provider.Balance(ctx, w.Address(), w.token.ID, status)
}

// BuildTransfer constructs and signs a transfer to the given address.
// The consumed nonce is gone even if the transaction is never submitted.
func (w *Wallet) BuildTransfer(to stratum.Address, tok token.Token, amount, fee *big.Int) (stratum.Tx, error) {
	base, err := w.newBase(tok, amount, fee)
	if err != nil {
		return nil, err
	}
	tx := &stratum.Transfer{TxBase: base, To: to}
	if err := w.signTx(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// BuildWithdraw constructs and signs a withdrawal to a root-chain
// address. A nil destination withdraws to the wallet's own address.
func (w *Wallet) BuildWithdraw(to stratum.Address, tok token.Token, amount, fee *big.Int) (stratum.Tx, error) {
	if to == nil {
		to = w.Address()
	}
	base, err := w.newBase(tok, amount, fee)
	if err != nil {
		return nil, err
	}
	tx := &stratum.Withdraw{TxBase: base, To: to}
	if err := w.signTx(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// SignMessage produces the wallet's root-chain signature over a
// canonical authorization message.
func (w *Wallet) SignMessage(msg []byte) (crypto.EthSignature, error) {
	return w.ethKey.SignMessage(msg)
}

func (w *Wallet) newBase(tok token.Token, amount, fee *big.Int) (stratum.TxBase, error) {
	if !w.connected {
		return stratum.TxBase{}, errors.Wrap(errors.ErrInput, "wallet is not connected")
	}
	if fee != nil && !coin.IsPackableFee(fee) {
		return stratum.TxBase{}, errors.Wrapf(errors.ErrAmount, "fee %s is not packable", fee)
	}
	return stratum.TxBase{
		AccountID:  w.accountID,
		From:       w.Address(),
		Token:      tok.ID,
		Amount:     amount,
		Fee:        fee,
		Nonce:      w.PendingNonce(),
		ValidFrom:  0,
		ValidUntil: stratum.MaxValidUntil,
	}, nil
}

func (w *Wallet) signTx(tx stratum.Tx) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	raw, err := tx.WireBytes()
	if err != nil {
		return err
	}
	tx.Base().Signature = w.txKey.Sign(raw)
	return nil
}
