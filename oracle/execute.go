package oracle

import (
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/sigs"
)

// ExecuteBatch verifies the batch authorization and executes every
// transaction, or rejects the whole batch with one error. Partial
// execution is impossible: all state changes happen on a scratch copy
// that is committed only after the last transaction applied cleanly.
func (o *Oracle) ExecuteBatch(txs []stratum.Tx, ethSigs []crypto.EthSignature) ([]Receipt, error) {
	if len(txs) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty batch")
	}
	if err := sigs.VerifyBatchSignatures(txs, ethSigs, o.tokens); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	scratch := newScratch(o)
	now := o.now()
	feeToken := uint32(0)
	feeTotal := big.NewInt(0)
	receipts := make([]Receipt, len(txs))

	for i, tx := range txs {
		hash, err := stratum.HashTx(tx)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		if err := scratch.apply(tx, now); err != nil {
			return nil, errors.Wrapf(err, "transaction %d", i)
		}
		if fee := tx.Base().Fee; fee.Sign() > 0 {
			feeToken = tx.Base().Token
			feeTotal = coin.Add(feeTotal, fee)
		}
		receipts[i] = Receipt{Hash: hash, Status: stratum.StatusCommitted}
	}

	scratch.commit(o)
	for _, r := range receipts {
		o.status[string(r.Hash)] = stratum.StatusCommitted
	}
	if feeTotal.Sign() > 0 {
		prev, ok := o.fees[feeToken]
		if !ok {
			prev = big.NewInt(0)
		}
		o.fees[feeToken] = coin.Add(prev, feeTotal)
	}
	return receipts, nil
}

// scratch is a copy-on-touch view of the accounts affected by a batch.
// It mirrors the cache-wrap execution style: apply everything here, throw
// it away on the first error.
type scratch struct {
	src      *Oracle
	accounts map[string]*account
	nextID   uint32
}

func newScratch(o *Oracle) *scratch {
	return &scratch{src: o, accounts: make(map[string]*account), nextID: o.nextID}
}

func (s *scratch) get(addr stratum.Address) (*account, error) {
	if acc, ok := s.accounts[string(addr)]; ok {
		return acc, nil
	}
	orig, ok := s.src.accounts[string(addr)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "account %s", addr)
	}
	cp := &account{
		id:       orig.id,
		pubkey:   orig.pubkey,
		nonce:    orig.nonce,
		balances: make(map[uint32]*big.Int, len(orig.balances)),
	}
	for tok, b := range orig.balances {
		cp.balances[tok] = new(big.Int).Set(b)
	}
	s.accounts[string(addr)] = cp
	return cp, nil
}

// getOrCreate registers an implicit account for an unknown transfer
// destination. Such accounts can receive funds before their owner ever
// registered a transaction key.
func (s *scratch) getOrCreate(addr stratum.Address) (*account, error) {
	acc, err := s.get(addr)
	if errors.ErrNotFound.Is(err) {
		acc = &account{
			id:       s.nextID,
			balances: make(map[uint32]*big.Int),
		}
		s.nextID++
		s.accounts[string(addr)] = acc
		return acc, nil
	}
	return acc, err
}

func (s *scratch) apply(tx stratum.Tx, now uint64) error {
	base := tx.Base()
	if err := tx.Validate(); err != nil {
		return err
	}
	if now < base.ValidFrom || now > base.ValidUntil {
		return errors.Wrapf(errors.ErrExpired, "valid %d..%d, now %d", base.ValidFrom, base.ValidUntil, now)
	}

	origin, err := s.get(base.From)
	if err != nil {
		return err
	}
	if origin.id != base.AccountID {
		return errors.Wrapf(errors.ErrUnauthorized, "account id %d does not own %s", base.AccountID, base.From)
	}
	if err := sigs.VerifyTxSignature(origin.pubkey, tx); err != nil {
		return err
	}
	if err := origin.nonce.CheckAndIncrement(base.Nonce); err != nil {
		return err
	}

	total := coin.Add(base.Amount, base.Fee)
	if !coin.IsGTE(origin.balance(base.Token), total) {
		return errors.Wrapf(errors.ErrFunds, "account %s", base.From)
	}
	origin.balances[base.Token] = coin.Sub(origin.balance(base.Token), total)

	// A withdraw's amount leaves the layer-2 ledger entirely; only a
	// transfer credits another account.
	if tx.Type() == stratum.TypeTransfer {
		dest, err := s.getOrCreate(tx.Destination())
		if err != nil {
			return err
		}
		dest.balances[base.Token] = coin.Add(dest.balance(base.Token), base.Amount)
	}
	return nil
}

func (s *scratch) commit(o *Oracle) {
	for addr, acc := range s.accounts {
		o.accounts[addr] = acc
	}
	o.nextID = s.nextID
}
