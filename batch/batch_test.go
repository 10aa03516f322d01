package batch_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stratum-one/stratum/authmsg"
	"github.com/stratum-one/stratum/batch"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/stratumtest"
)

func TestRequiredSigners(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	zero := big.NewInt(0)
	t1, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(100), zero)
	require.NoError(t, err)
	t2, err := w2.BuildTransfer(w1.Address(), stratumtest.ETH, big.NewInt(100), zero)
	require.NoError(t, err)
	t3, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(200), zero)
	require.NoError(t, err)

	b, err := batch.New(t1, t2, t3)
	require.NoError(t, err)

	// distinct origins in first-seen order, repeats collapsed
	signers := b.Signers()
	require.Len(t, signers, 2)
	require.True(t, signers[0].Equals(w1.Address()))
	require.True(t, signers[1].Equals(w2.Address()))
}

func TestNewRejectsInvalid(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	_, err := batch.New()
	require.True(t, errors.ErrConfiguration.Is(err), "empty batch: %+v", err)

	tx, err := w1.BuildTransfer(w2.Address(), stratumtest.ETH, big.NewInt(100), big.NewInt(0))
	require.NoError(t, err)
	tx.Base().Amount = big.NewInt(-1)
	_, err = batch.New(tx)
	require.True(t, errors.ErrAmount.Is(err), "invalid transaction: %+v", err)
}

func TestAssembleFeeAllocation(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	fee := big.NewInt(100000)
	b, err := batch.Assemble([]batch.Intent{
		{Origin: w1, To: w2.Address(), Token: stratumtest.ETH, Amount: big.NewInt(500)},
		{Origin: w2, To: w1.Address(), Token: stratumtest.ETH, Amount: big.NewInt(500)},
	}, fee)
	require.NoError(t, err)

	txs := b.Txs()
	require.Len(t, txs, 2)
	// the first origin is the designated payer, everyone else rides free
	require.Zero(t, txs[0].Base().Fee.Cmp(fee))
	require.Zero(t, txs[1].Base().Fee.Sign())
	require.True(t, txs[0].Base().Origin().Equals(w1.Address()))
}

func TestAssembleRejects(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	t.Run("no intents", func(t *testing.T) {
		_, err := batch.Assemble(nil, big.NewInt(0))
		require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
	})
	t.Run("missing fee", func(t *testing.T) {
		intents := []batch.Intent{{Origin: w1, To: w2.Address(), Token: stratumtest.ETH, Amount: big.NewInt(1)}}
		_, err := batch.Assemble(intents, nil)
		require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
	})
	t.Run("unpackable fee", func(t *testing.T) {
		intents := []batch.Intent{{Origin: w1, To: w2.Address(), Token: stratumtest.ETH, Amount: big.NewInt(1)}}
		_, err := batch.Assemble(intents, big.NewInt(2048))
		require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
	})
	t.Run("single participant", func(t *testing.T) {
		// a self transfer involves one account only
		intents := []batch.Intent{{Origin: w1, To: w1.Address(), Token: stratumtest.ETH, Amount: big.NewInt(1)}}
		_, err := batch.Assemble(intents, big.NewInt(100))
		require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
	})
}

func TestRing(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)
	w3 := n.NewWallet(t, 3, stratumtest.ETH, nil)

	fee := big.NewInt(100000)
	b, err := batch.Ring([]batch.Builder{w1, w2, w3}, stratumtest.ETH, big.NewInt(500), fee)
	require.NoError(t, err)

	txs := b.Txs()
	require.Len(t, txs, 3)
	// everyone transfers to the next participant, the last wraps around
	require.True(t, txs[0].Destination().Equals(w2.Address()))
	require.True(t, txs[1].Destination().Equals(w3.Address()))
	require.True(t, txs[2].Destination().Equals(w1.Address()))
	// the whole fee sits on the first transaction
	require.Zero(t, txs[0].Base().Fee.Cmp(fee))
	require.Zero(t, txs[1].Base().Fee.Sign())
	require.Zero(t, txs[2].Base().Fee.Sign())

	_, err = batch.Ring([]batch.Builder{w1}, stratumtest.ETH, big.NewInt(500), fee)
	require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
}

func TestCollect(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)

	b, err := batch.Ring([]batch.Builder{w1, w2}, stratumtest.ETH, big.NewInt(500), big.NewInt(100000))
	require.NoError(t, err)

	require.NoError(t, b.Collect(authmsg.SchemeContentHash, n.Tokens, w1, w2))

	sigs, err := b.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	// each signature verifies against its signer's canonical message
	for i, signer := range b.Signers() {
		msg, err := authmsg.SignerMessage(b.Txs(), authmsg.SchemeContentHash, signer, n.Tokens)
		require.NoError(t, err)
		require.True(t, crypto.VerifyMessage(msg, sigs[i], signer), "signer %d", i)
	}
}

func TestCollectSignerMismatch(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)
	w3 := n.NewWallet(t, 3, stratumtest.ETH, nil)

	b, err := batch.Ring([]batch.Builder{w1, w2}, stratumtest.ETH, big.NewInt(500), big.NewInt(100000))
	require.NoError(t, err)

	err = b.Collect(authmsg.SchemeContentHash, n.Tokens, w1)
	require.True(t, errors.ErrConfiguration.Is(err), "too few signers: %+v", err)

	err = b.Collect(authmsg.SchemeContentHash, n.Tokens, w1, w3)
	require.True(t, errors.ErrConfiguration.Is(err), "foreign signer: %+v", err)

	// nothing must have been stored
	_, err = b.Signatures()
	require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
}

func TestSetSignature(t *testing.T) {
	n := stratumtest.NewNetwork(t)
	w1 := n.NewWallet(t, 1, stratumtest.ETH, nil)
	w2 := n.NewWallet(t, 2, stratumtest.ETH, nil)
	w3 := n.NewWallet(t, 3, stratumtest.ETH, nil)

	b, err := batch.Ring([]batch.Builder{w1, w2}, stratumtest.ETH, big.NewInt(500), big.NewInt(100000))
	require.NoError(t, err)

	msg, err := authmsg.SignerMessage(b.Txs(), authmsg.SchemeContentHash, w1.Address(), n.Tokens)
	require.NoError(t, err)
	sig, err := w1.SignMessage(msg)
	require.NoError(t, err)

	err = b.SetSignature(w3.Address(), sig)
	require.True(t, errors.ErrConfiguration.Is(err), "foreign signer: %+v", err)

	err = b.SetSignature(w1.Address(), make([]byte, 10))
	require.True(t, errors.ErrInput.Is(err), "malformed signature: %+v", err)

	require.NoError(t, b.SetSignature(w1.Address(), sig))

	// still incomplete without the second signer
	_, err = b.Signatures()
	require.True(t, errors.ErrConfiguration.Is(err), "%+v", err)
}
