package client

import (
	"context"
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/oracle"
)

// LocalProvider wires a client directly to an in-process oracle. It is
// simply a shorthand for tests and local tooling that want the full
// submission path without a network.
type LocalProvider struct {
	oracle *oracle.Oracle

	// AutoSeal promotes every accepted batch to verified immediately,
	// so handles complete without an explicit SealBlock call.
	AutoSeal bool
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider wraps an in-process oracle. Sealing is automatic;
// disable AutoSeal to drive confirmation stages by hand.
func NewLocalProvider(o *oracle.Oracle) *LocalProvider {
	return &LocalProvider{oracle: o, AutoSeal: true}
}

func (p *LocalProvider) SubmitBatch(ctx context.Context, txs []stratum.Tx, sigs []crypto.EthSignature) ([]stratum.TxHash, error) {
	receipts, err := p.oracle.ExecuteBatch(txs, sigs)
	if err != nil {
		return nil, err
	}
	if p.AutoSeal {
		p.oracle.SealBlock()
	}
	hashes := make([]stratum.TxHash, len(receipts))
	for i, r := range receipts {
		hashes[i] = r.Hash
	}
	return hashes, nil
}

func (p *LocalProvider) TxStatus(ctx context.Context, hash stratum.TxHash) (stratum.BlockStatus, error) {
	return p.oracle.TxStatus(hash), nil
}

func (p *LocalProvider) AccountInfo(ctx context.Context, addr stratum.Address) (*AccountInfo, error) {
	info, err := p.oracle.AccountInfo(addr)
	if err != nil {
		return nil, err
	}
	return &AccountInfo{Address: info.Address, ID: info.ID, Nonce: info.Nonce}, nil
}

func (p *LocalProvider) TxFee(ctx context.Context, kinds []string, accounts []stratum.Address, tok uint32) (*big.Int, error) {
	return p.oracle.TxFee(kinds, accounts, tok)
}

func (p *LocalProvider) Balance(ctx context.Context, addr stratum.Address, tok uint32, status stratum.BlockStatus) (*big.Int, error) {
	return p.oracle.Balance(addr, tok, status), nil
}
