package stratum

import (
	"crypto/sha256"
	"encoding/hex"
)

// TxHash identifies a submitted transaction: the digest of its canonical
// wire bytes.
type TxHash []byte

func (h TxHash) String() string {
	return hex.EncodeToString(h)
}

// HashTx computes the identifying hash of a transaction.
func HashTx(tx Tx) (TxHash, error) {
	raw, err := tx.WireBytes()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	return TxHash(sum[:]), nil
}

// BlockStatus is the confirmation stage of an executed transaction. A
// transaction is first committed, then verified once its block is
// finalized. Balance aggregation must wait for the weakest stage it
// cares about.
type BlockStatus uint8

const (
	// StatusPending means the transaction is not known to be executed.
	StatusPending BlockStatus = iota
	StatusCommitted
	StatusVerified
)

func (s BlockStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCommitted:
		return "committed"
	case StatusVerified:
		return "verified"
	default:
		return "unknown"
	}
}
