// Package client submits authorized batches to a verification oracle and
// exposes asynchronous handles for their confirmation.
package client

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/batch"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
)

const defaultPollInterval = 100 * time.Millisecond

// Client wraps a Provider with batch submission and fan-out waiting.
type Client struct {
	provider Provider
	poll     time.Duration
}

// NewClient creates a client over an oracle connection.
func NewClient(p Provider) *Client {
	return &Client{provider: p, poll: defaultPollInterval}
}

// WithPollInterval adjusts how often handles poll for status progress.
func (c *Client) WithPollInterval(d time.Duration) *Client {
	c.poll = d
	return c
}

// Submit sends a fully collected batch. Completeness of the signature
// association is checked locally first; an incomplete batch never reaches
// the oracle.
func (c *Client) Submit(ctx context.Context, b *batch.Batch) ([]*Handle, error) {
	sigs, err := b.Signatures()
	if err != nil {
		return nil, err
	}
	return c.SubmitRaw(ctx, b.Txs(), sigs)
}

// SubmitRaw sends transactions with an explicit signature list, bypassing
// the local completeness check. Tests use it to provoke oracle-side
// rejection with missing or corrupted signatures.
func (c *Client) SubmitRaw(ctx context.Context, txs []stratum.Tx, sigs []crypto.EthSignature) ([]*Handle, error) {
	hashes, err := c.provider.SubmitBatch(ctx, txs, sigs)
	if err != nil {
		return nil, err
	}
	if len(hashes) != len(txs) {
		return nil, errors.Wrapf(errors.ErrNetwork, "got %d hashes for %d transactions", len(hashes), len(txs))
	}
	handles := make([]*Handle, len(hashes))
	for i, hash := range hashes {
		handles[i] = &Handle{provider: c.provider, hash: hash, poll: c.poll}
	}
	return handles, nil
}

// WaitAll awaits the given confirmation stage on every handle, one
// awaiting task per handle. Confirmations may arrive in any relative
// order; the first failure cancels the remaining waits.
func WaitAll(ctx context.Context, handles []*Handle, status stratum.BlockStatus) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error {
			return h.wait(ctx, status)
		})
	}
	return g.Wait()
}

// Handle tracks one transaction of an accepted batch through its
// confirmation stages.
type Handle struct {
	provider Provider
	hash     stratum.TxHash
	poll     time.Duration
}

// Hash returns the transaction hash this handle tracks.
func (h *Handle) Hash() stratum.TxHash { return h.hash }

// WaitCommitted blocks until the transaction is included in a block.
func (h *Handle) WaitCommitted(ctx context.Context) error {
	return h.wait(ctx, stratum.StatusCommitted)
}

// WaitVerified blocks until the transaction's block is finalized.
func (h *Handle) WaitVerified(ctx context.Context) error {
	return h.wait(ctx, stratum.StatusVerified)
}

func (h *Handle) wait(ctx context.Context, target stratum.BlockStatus) error {
	ticker := time.NewTicker(h.poll)
	defer ticker.Stop()
	for {
		status, err := h.provider.TxStatus(ctx, h.hash)
		if err != nil {
			return err
		}
		if status >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(errors.ErrNetwork, "waiting for %v: %s", target, ctx.Err())
		case <-ticker.C:
		}
	}
}
