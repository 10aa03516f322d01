// Package stratumtest provides fixtures shared by tests: deterministic
// keys, a preloaded token set and a fully wired local network (oracle,
// provider, client) with funded wallets.
package stratumtest

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stratum-one/stratum/client"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/oracle"
	"github.com/stratum-one/stratum/token"
	"github.com/stratum-one/stratum/wallet"
)

// ETH and DAI make up the token set of every test network.
var (
	ETH = token.Token{ID: 0, Symbol: "ETH", Decimals: 18}
	DAI = token.Token{ID: 1, Symbol: "DAI", Decimals: 18}
)

// EthKey returns a deterministic root-chain key. Different seeds give
// different keys.
func EthKey(t testing.TB, seed byte) *crypto.EthKey {
	t.Helper()
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	raw[31] = 1 // keep the scalar nonzero for seed 0
	k, err := crypto.EthKeyFromSeed(raw[:])
	if err != nil {
		t.Fatalf("eth key from seed %d: %s", seed, err)
	}
	return k
}

// TxKey returns a deterministic layer-2 transaction key.
func TxKey(t testing.TB, seed byte) *crypto.TxKey {
	t.Helper()
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	k, err := crypto.TxKeyFromSeed(raw[:])
	if err != nil {
		t.Fatalf("tx key from seed %d: %s", seed, err)
	}
	return k
}

// Tokens returns a fresh registry with the test token set.
func Tokens() *token.Registry {
	return token.NewRegistry(ETH, DAI)
}

// Network is an in-process oracle with its client-side plumbing.
type Network struct {
	Oracle   *oracle.Oracle
	Provider *client.LocalProvider
	Client   *client.Client
	Tokens   *token.Registry
}

// NewNetwork spins up a local network.
func NewNetwork(t testing.TB) *Network {
	t.Helper()
	tokens := Tokens()
	o := oracle.New(tokens)
	p := client.NewLocalProvider(o)
	return &Network{
		Oracle:   o,
		Provider: p,
		Client:   client.NewClient(p).WithPollInterval(time.Millisecond),
		Tokens:   tokens,
	}
}

// NewWallet registers an account with deterministic keys, funds it and
// returns a connected wallet.
func (n *Network) NewWallet(t testing.TB, seed byte, tok token.Token, balance *big.Int) *wallet.Wallet {
	t.Helper()
	w := wallet.New(EthKey(t, seed), TxKey(t, seed), tok, n.Provider)
	if _, err := n.Oracle.CreateAccount(w.Address(), w.TxPubkey()); err != nil {
		t.Fatalf("create account: %s", err)
	}
	if balance != nil && balance.Sign() > 0 {
		if err := n.Oracle.IssueTokens(w.Address(), tok.ID, balance); err != nil {
			t.Fatalf("fund account: %s", err)
		}
	}
	if err := w.Connect(context.Background()); err != nil {
		t.Fatalf("connect wallet: %s", err)
	}
	return w
}
