package oracle_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/authmsg"
	"github.com/stratum-one/stratum/batch"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/oracle"
	"github.com/stratum-one/stratum/stratumtest"
)

func eth(units int64) *big.Int {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return one.Mul(one, big.NewInt(units))
}

// collect produces one root-chain signature per required signer of the
// given transactions, signed by the matching wallets.
func collect(t *testing.T, n *stratumtest.Network, txs []stratum.Tx, signers ...batch.Signer) []crypto.EthSignature {
	t.Helper()
	b, err := batch.New(txs...)
	require.NoError(t, err)
	require.NoError(t, b.Collect(authmsg.SchemeContentHash, n.Tokens, signers...))
	sigs, err := b.Signatures()
	require.NoError(t, err)
	return sigs
}

func TestExecuteTransfer(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	amount := big.NewInt(300000)
	fee := big.NewInt(100000)
	tx, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, amount, fee)
	require.NoError(t, err)

	receipts, err := n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, stratum.StatusCommitted, receipts[0].Status)
	require.Equal(t, stratum.StatusCommitted, n.Oracle.TxStatus(receipts[0].Hash))

	wantOrigin := new(big.Int).Sub(eth(1), new(big.Int).Add(amount, fee))
	require.Zero(t, n.Oracle.Balance(w1.Address(), stratumtest.ETH.ID, stratum.StatusCommitted).Cmp(wantOrigin))
	require.Zero(t, n.Oracle.Balance(w2.Address(), stratumtest.ETH.ID, stratum.StatusCommitted).Cmp(amount))

	info, err := n.Oracle.AccountInfo(w1.Address())
	require.NoError(t, err)
	require.EqualValues(t, 1, info.Nonce)

	require.Zero(t, n.Oracle.CollectedFees(stratumtest.ETH.ID).Cmp(fee))
}

func TestExecuteBatchIsAtomic(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	good, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(500), big.NewInt(100000))
	require.NoError(t, err)
	// the second transaction overdraws the account
	broke, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, eth(2), big.NewInt(0))
	require.NoError(t, err)
	txs := []stratum.Tx{good, broke}

	_, err = n.Oracle.ExecuteBatch(txs, collect(t, n, txs, w1))
	require.True(t, errors.ErrFunds.Is(err), "%+v", err)

	// nothing of the batch may have landed, not even the valid transaction
	require.Zero(t, n.Oracle.Balance(w1.Address(), stratumtest.ETH.ID, stratum.StatusCommitted).Cmp(eth(1)))
	require.Zero(t, n.Oracle.Balance(w2.Address(), stratumtest.ETH.ID, stratum.StatusCommitted).Sign())
	info, err := n.Oracle.AccountInfo(w1.Address())
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Nonce)
	require.Zero(t, n.Oracle.CollectedFees(stratumtest.ETH.ID).Sign())

	hash, err := stratum.HashTx(good)
	require.NoError(t, err)
	require.Equal(t, stratum.StatusPending, n.Oracle.TxStatus(hash))
}

func TestExecuteRejectsNonceMismatch(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	// consume nonce 0 locally without ever submitting it
	_, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(100), big.NewInt(0))
	require.NoError(t, err)

	tx, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(100), big.NewInt(0))
	require.NoError(t, err)
	require.EqualValues(t, 1, tx.Base().Nonce)

	_, err = n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.True(t, errors.ErrNonce.Is(err), "%+v", err)
}

func TestExecuteRejectsForeignAccountID(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	tx, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(100), big.NewInt(0))
	require.NoError(t, err)
	tx.Base().AccountID = w2.AccountID()
	// re-sign so only the ownership check can fail
	raw, err := tx.WireBytes()
	require.NoError(t, err)
	tx.Base().Signature = stratumtest.TxKey(t, 1).Sign(raw)

	_, err = n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)
}

func TestExecuteValidityWindow(t *testing.T) {
	tokens := stratumtest.Tokens()
	o := oracle.New(tokens).WithClock(func() uint64 { return 1000 })

	ethKey := stratumtest.EthKey(t, 1)
	txKey := stratumtest.TxKey(t, 1)
	id, err := o.CreateAccount(ethKey.Address(), txKey.Public())
	require.NoError(t, err)
	require.NoError(t, o.IssueTokens(ethKey.Address(), stratumtest.ETH.ID, eth(1)))

	build := func(validFrom, validUntil uint64) []stratum.Tx {
		tx := &stratum.Transfer{
			TxBase: stratum.TxBase{
				AccountID:  id,
				From:       ethKey.Address(),
				Token:      stratumtest.ETH.ID,
				Amount:     big.NewInt(100),
				Fee:        big.NewInt(0),
				Nonce:      0,
				ValidFrom:  validFrom,
				ValidUntil: validUntil,
			},
			To: stratumtest.EthKey(t, 2).Address(),
		}
		raw, err := tx.WireBytes()
		require.NoError(t, err)
		tx.Signature = txKey.Sign(raw)
		return []stratum.Tx{tx}
	}
	sign := func(txs []stratum.Tx) []crypto.EthSignature {
		msg, err := authmsg.ContentHash(txs)
		require.NoError(t, err)
		sig, err := ethKey.SignMessage(msg)
		require.NoError(t, err)
		return []crypto.EthSignature{sig}
	}

	t.Run("expired", func(t *testing.T) {
		txs := build(0, 500)
		_, err := o.ExecuteBatch(txs, sign(txs))
		require.True(t, errors.ErrExpired.Is(err), "%+v", err)
	})
	t.Run("not yet valid", func(t *testing.T) {
		txs := build(2000, 3000)
		_, err := o.ExecuteBatch(txs, sign(txs))
		require.True(t, errors.ErrExpired.Is(err), "%+v", err)
	})
	t.Run("inside the window", func(t *testing.T) {
		txs := build(500, 1500)
		_, err := o.ExecuteBatch(txs, sign(txs))
		require.NoError(t, err)
	})
}

func TestExecuteCreatesImplicitDestination(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	// the destination never registered an account
	dest := stratumtest.EthKey(t, 9).Address()

	amount := big.NewInt(700)
	tx, err := w1.BuildTransfer(dest, stratumtest.ETH, amount, big.NewInt(0))
	require.NoError(t, err)

	_, err = n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.NoError(t, err)

	require.Zero(t, n.Oracle.Balance(dest, stratumtest.ETH.ID, stratum.StatusCommitted).Cmp(amount))
	info, err := n.Oracle.AccountInfo(dest)
	require.NoError(t, err)
	require.NotZero(t, info.ID)
}

func TestExecuteWithdrawBurns(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))

	amount := big.NewInt(400000)
	fee := big.NewInt(500000)
	tx, err := w1.BuildWithdraw(nil, stratumtest.ETH, amount, fee)
	require.NoError(t, err)
	// withdrawing to the own root-chain address is the common case
	require.True(t, tx.Destination().Equals(w1.Address()))

	_, err = n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.NoError(t, err)

	// the amount leaves the ledger instead of crediting the destination
	want := new(big.Int).Sub(eth(1), new(big.Int).Add(amount, fee))
	require.Zero(t, n.Oracle.Balance(w1.Address(), stratumtest.ETH.ID, stratum.StatusCommitted).Cmp(want))
}

func TestSealBlock(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, eth(1))
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	amount := big.NewInt(1234)
	tx, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, amount, big.NewInt(0))
	require.NoError(t, err)
	receipts, err := n.Oracle.ExecuteBatch([]stratum.Tx{tx}, collect(t, n, []stratum.Tx{tx}, w1))
	require.NoError(t, err)

	// committed immediately, verified only after the block is sealed
	require.Equal(t, stratum.StatusCommitted, n.Oracle.TxStatus(receipts[0].Hash))
	require.Zero(t, n.Oracle.Balance(w2.Address(), stratumtest.ETH.ID, stratum.StatusVerified).Sign())

	n.Oracle.SealBlock()

	require.Equal(t, stratum.StatusVerified, n.Oracle.TxStatus(receipts[0].Hash))
	require.Zero(t, n.Oracle.Balance(w2.Address(), stratumtest.ETH.ID, stratum.StatusVerified).Cmp(amount))
}

func TestTxFee(t *testing.T) {
	n := stratumtest.NewNetwork(t)

	fee, err := n.Oracle.TxFee(
		[]string{stratum.TypeTransfer.String(), stratum.TypeWithdraw.String()},
		[]stratum.Address{stratumtest.EthKey(t, 1).Address()},
		stratumtest.ETH.ID)
	require.NoError(t, err)
	require.EqualValues(t, 600000, fee.Int64())

	_, err = n.Oracle.TxFee([]string{"Mint"}, []stratum.Address{stratumtest.EthKey(t, 1).Address()}, stratumtest.ETH.ID)
	require.True(t, errors.ErrInput.Is(err), "%+v", err)

	_, err = n.Oracle.TxFee(nil, nil, stratumtest.ETH.ID)
	require.True(t, errors.ErrInput.Is(err), "%+v", err)

	_, err = n.Oracle.TxFee([]string{stratum.TypeTransfer.String()}, []stratum.Address{stratumtest.EthKey(t, 1).Address()}, 99)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestCreateAccount(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	key := stratumtest.EthKey(t, 1)

	id, err := n.Oracle.CreateAccount(key.Address(), stratumtest.TxKey(t, 1).Public())
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = n.Oracle.CreateAccount(key.Address(), stratumtest.TxKey(t, 1).Public())
	require.True(t, errors.ErrInput.Is(err), "duplicate: %+v", err)

	_, err = n.Oracle.CreateAccount(stratum.Address{1, 2}, nil)
	require.True(t, errors.ErrInput.Is(err), "bad address: %+v", err)

	_, err = n.Oracle.AccountInfo(stratumtest.EthKey(t, 5).Address())
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}
