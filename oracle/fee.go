package oracle

import (
	"math/big"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/errors"
)

// Base costs per transaction kind, in minor units. The schedule is
// deliberately simple; clients treat the result as opaque anyway.
var feeSchedule = map[string]int64{
	stratum.TypeTransfer.String(): 100000,
	stratum.TypeWithdraw.String(): 500000,
}

// TxFee quotes the total fee for executing a batch of the given
// transaction kinds touching the given accounts. The quote is always
// packable, so clients can put it on the wire unchanged.
func (o *Oracle) TxFee(kinds []string, accounts []stratum.Address, tok uint32) (*big.Int, error) {
	if _, err := o.tokens.ByID(tok); err != nil {
		return nil, err
	}
	if len(kinds) == 0 || len(accounts) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty fee query")
	}
	total := big.NewInt(0)
	for _, kind := range kinds {
		cost, ok := feeSchedule[kind]
		if !ok {
			return nil, errors.Wrapf(errors.ErrInput, "unknown transaction kind %q", kind)
		}
		total.Add(total, big.NewInt(cost))
	}
	return coin.ClosestPackableFee(total), nil
}
