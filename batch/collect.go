package batch

import (
	"golang.org/x/sync/errgroup"

	"github.com/stratum-one/stratum/authmsg"
	"github.com/stratum-one/stratum/crypto"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// Collect obtains one signature per required signer over the canonical
// message of the given scheme. Signing runs concurrently across accounts;
// each account signs independently and cannot see or alter the others'
// contributions.
//
// The provided signers must match the required signer set exactly. A
// missing or foreign signer is a configuration error raised before any
// signature is stored.
func (b *Batch) Collect(scheme authmsg.Scheme, r token.Resolver, signers ...Signer) error {
	if len(signers) != len(b.signers) {
		return errors.Wrapf(errors.ErrConfiguration,
			"got %d signers, batch requires %d", len(signers), len(b.signers))
	}
	byAddr := make(map[string]Signer, len(signers))
	for _, s := range signers {
		byAddr[string(s.Address())] = s
	}
	for _, required := range b.signers {
		if _, ok := byAddr[string(required)]; !ok {
			return errors.Wrapf(errors.ErrConfiguration, "no signer controls %s", required)
		}
	}

	sigs := make([]crypto.EthSignature, len(b.signers))
	var g errgroup.Group
	for i, signer := range b.signers {
		i, signer := i, signer
		g.Go(func() error {
			msg, err := authmsg.SignerMessage(b.txs, scheme, signer, r)
			if err != nil {
				return err
			}
			sig, err := byAddr[string(signer)].SignMessage(msg)
			if err != nil {
				return errors.Wrapf(err, "signer %s", signer)
			}
			sigs[i] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, signer := range b.signers {
		if err := b.SetSignature(signer, sigs[i]); err != nil {
			return err
		}
	}
	return nil
}
