package client

import (
	"context"
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/crypto"
)

// Provider is the connection to a verification oracle. The production
// implementation speaks JSON-RPC; tests wire an in-process oracle
// directly.
type Provider interface {
	// SubmitBatch sends the whole batch in one call. The oracle either
	// accepts it (returning one hash per transaction) or rejects it
	// atomically with one error.
	SubmitBatch(ctx context.Context, txs []stratum.Tx, sigs []crypto.EthSignature) ([]stratum.TxHash, error)

	// TxStatus reports the confirmation stage of a submitted
	// transaction.
	TxStatus(ctx context.Context, hash stratum.TxHash) (stratum.BlockStatus, error)

	// AccountInfo returns the committed state of an account.
	AccountInfo(ctx context.Context, addr stratum.Address) (*AccountInfo, error)

	// TxFee quotes the total batch fee for the given transaction kinds,
	// accounts and fee token. The result is opaque schedule output.
	TxFee(ctx context.Context, kinds []string, accounts []stratum.Address, tok uint32) (*big.Int, error)

	// Balance returns an account balance at the given confirmation
	// stage.
	Balance(ctx context.Context, addr stratum.Address, tok uint32, status stratum.BlockStatus) (*big.Int, error)
}

// AccountInfo is the queryable slice of account state.
type AccountInfo struct {
	Address stratum.Address `json:"address"`
	ID      uint32          `json:"id"`
	Nonce   uint32          `json:"nonce"`
}
