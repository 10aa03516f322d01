package batch

import (
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/errors"
	"github.com/stratum-one/stratum/token"
)

// Assemble turns an ordered list of intents into a batch. The origin of
// the first intent is the designated fee payer: its transaction carries
// the full batch fee and every other transaction's fee is zero. Intent
// order is preserved, which keeps the payer designation stable for ring
// topologies.
func Assemble(intents []Intent, totalFee *big.Int) (*Batch, error) {
	if len(intents) == 0 {
		return nil, errors.Wrap(errors.ErrConfiguration, "no intents")
	}
	if totalFee == nil || totalFee.Sign() < 0 {
		return nil, errors.Wrap(errors.ErrConfiguration, "negative or missing fee")
	}
	if !coin.IsPackableFee(totalFee) {
		return nil, errors.Wrapf(errors.ErrConfiguration, "fee %s is not packable", totalFee)
	}
	if n := countParticipants(intents); n < 2 {
		return nil, errors.Wrapf(errors.ErrConfiguration, "%d participating accounts, need at least 2", n)
	}

	zero := big.NewInt(0)
	txs := make([]stratum.Tx, len(intents))
	for i, intent := range intents {
		fee := zero
		if i == 0 {
			fee = totalFee
		}
		var (
			tx  stratum.Tx
			err error
		)
		if intent.Withdraw {
			tx, err = intent.Origin.BuildWithdraw(intent.To, intent.Token, intent.Amount, fee)
		} else {
			tx, err = intent.Origin.BuildTransfer(intent.To, intent.Token, intent.Amount, fee)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "intent %d", i)
		}
		txs[i] = tx
	}
	return New(txs...)
}

// Ring assembles the cyclic topology: every participant transfers the
// same amount to the next one, the last closing back to the first. The
// first participant pays the whole fee, so its net change is exactly the
// fee while everyone else nets zero.
func Ring(participants []Builder, tok token.Token, amount, totalFee *big.Int) (*Batch, error) {
	if len(participants) < 2 {
		return nil, errors.Wrapf(errors.ErrConfiguration, "%d participants, ring needs at least 2", len(participants))
	}
	intents := make([]Intent, len(participants))
	for i, p := range participants {
		next := participants[(i+1)%len(participants)]
		intents[i] = Intent{
			Origin: p,
			To:     next.Address(),
			Token:  tok,
			Amount: amount,
		}
	}
	return Assemble(intents, totalFee)
}

func countParticipants(intents []Intent) int {
	seen := make(map[string]bool, len(intents)*2)
	for _, intent := range intents {
		seen[string(intent.Origin.Address())] = true
		seen[string(intent.To)] = true
	}
	return len(seen)
}
