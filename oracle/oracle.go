// Package oracle is a reference implementation of the verification
// oracle: the service that recomputes canonical authorization messages,
// verifies the collected signatures against the required signer set and
// executes a batch atomically or rejects it whole.
//
// State is held in memory. Batches have no persisted identity; only
// account nonces and balances survive an execution.
package oracle

import (
	"math/big"
	"sync"
	"time"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/sigs"
	"github.com/stratum-one/stratum/token"
)

// account is the oracle-side state of one layer-2 account.
type account struct {
	id       uint32
	pubkey   []byte
	nonce    sigs.Nonce
	balances map[uint32]*big.Int
}

func (a *account) balance(tok uint32) *big.Int {
	if b, ok := a.balances[tok]; ok {
		return b
	}
	return big.NewInt(0)
}

// AccountInfo is the queryable slice of account state.
type AccountInfo struct {
	Address stratum.Address
	ID      uint32
	Nonce   uint32
}

// Receipt reports the execution of one transaction of an accepted batch.
type Receipt struct {
	Hash   stratum.TxHash
	Status stratum.BlockStatus
}

// Oracle verifies and executes batches over an in-memory ledger.
type Oracle struct {
	mu     sync.Mutex
	tokens token.Resolver

	accounts map[string]*account
	nextID   uint32

	// verified is the balance snapshot as of the last sealed block.
	verified map[string]map[uint32]*big.Int
	status   map[string]stratum.BlockStatus

	// collected fees are advisory accounting, not correctness critical.
	fees map[uint32]*big.Int

	now func() uint64
}

// New creates an oracle over the given token set.
func New(tokens token.Resolver) *Oracle {
	return &Oracle{
		tokens:   tokens,
		accounts: make(map[string]*account),
		nextID:   1,
		verified: make(map[string]map[uint32]*big.Int),
		status:   make(map[string]stratum.BlockStatus),
		fees:     make(map[uint32]*big.Int),
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// WithClock replaces the execution clock. Test hook for validity window
// behavior.
func (o *Oracle) WithClock(now func() uint64) *Oracle {
	o.now = now
	return o
}

// CreateAccount registers a layer-2 account for the given root-chain
// address and transaction public key, assigning the next account id.
func (o *Oracle) CreateAccount(addr stratum.Address, pubkey []byte) (uint32, error) {
	if err := addr.Validate(); err != nil {
		return 0, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.accounts[string(addr)]; ok {
		return 0, errors.Wrapf(errors.ErrInput, "account %s exists", addr)
	}
	id := o.nextID
	o.nextID++
	o.accounts[string(addr)] = &account{
		id:       id,
		pubkey:   pubkey,
		balances: make(map[uint32]*big.Int),
	}
	return id, nil
}

// IssueTokens credits an account out of thin air. Genesis style funding
// for tests and local networks.
func (o *Oracle) IssueTokens(addr stratum.Address, tok uint32, amount *big.Int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	acc, ok := o.accounts[string(addr)]
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "account %s", addr)
	}
	acc.balances[tok] = coin.Add(acc.balance(tok), amount)
	return nil
}

// AccountInfo returns the committed account state.
func (o *Oracle) AccountInfo(addr stratum.Address) (*AccountInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	acc, ok := o.accounts[string(addr)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %s", addr)
	}
	return &AccountInfo{Address: addr, ID: acc.id, Nonce: uint32(acc.nonce)}, nil
}

// Balance returns an account's balance at the given confirmation stage.
func (o *Oracle) Balance(addr stratum.Address, tok uint32, status stratum.BlockStatus) *big.Int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status == stratum.StatusVerified {
		if balances, ok := o.verified[string(addr)]; ok {
			if b, ok := balances[tok]; ok {
				return new(big.Int).Set(b)
			}
		}
		return big.NewInt(0)
	}
	if acc, ok := o.accounts[string(addr)]; ok {
		return new(big.Int).Set(acc.balance(tok))
	}
	return big.NewInt(0)
}

// TxStatus reports how far a transaction has progressed.
func (o *Oracle) TxStatus(hash stratum.TxHash) stratum.BlockStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status[string(hash)]
}

// CollectedFees returns the advisory accumulated fee counter for a token.
func (o *Oracle) CollectedFees(tok uint32) *big.Int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if f, ok := o.fees[tok]; ok {
		return new(big.Int).Set(f)
	}
	return big.NewInt(0)
}

// SealBlock finalizes everything committed so far: all committed
// transactions become verified and the verified balance snapshot is
// refreshed.
func (o *Oracle) SealBlock() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for hash, st := range o.status {
		if st == stratum.StatusCommitted {
			o.status[hash] = stratum.StatusVerified
		}
	}
	snapshot := make(map[string]map[uint32]*big.Int, len(o.accounts))
	for addr, acc := range o.accounts {
		balances := make(map[uint32]*big.Int, len(acc.balances))
		for tok, b := range acc.balances {
			balances[tok] = new(big.Int).Set(b)
		}
		snapshot[addr] = balances
	}
	o.verified = snapshot
}
