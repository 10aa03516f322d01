package client

import (
	"testing"

	"github.com/AccumulateNetwork/jsonrpc2/v15"

	"github.com/stratum-one/stratum"
	"github.com/stratum-one/stratum/errors"
)

func TestRPCErrorRoundTrip(t *testing.T) {
	cases := map[string]struct {
		err      error
		wantCode jsonrpc2.ErrorCode
		wantRoot *errors.Error
	}{
		"signature rejection": {
			err:      errors.ErrSignature,
			wantCode: -41006,
			wantRoot: errors.ErrSignature,
		},
		"wrapped nonce": {
			err:      errors.Wrap(errors.ErrNonce, "transaction 2"),
			wantCode: -41007,
			wantRoot: errors.ErrNonce,
		},
		"insufficient funds": {
			err:      errors.ErrFunds,
			wantCode: -41011,
			wantRoot: errors.ErrFunds,
		},
		"unclassified": {
			err:      errors.Wrap(errors.ErrPanic, "redacted"),
			wantCode: -41000 - 111222,
			wantRoot: errors.ErrPanic,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			wire := RPCError(tc.err)
			if wire.Code != tc.wantCode {
				t.Fatalf("wire code %d, want %d", wire.Code, tc.wantCode)
			}
			if wire.Message != tc.err.Error() {
				t.Fatalf("wire message %q", wire.Message)
			}

			// the client side rebuilds the matching root error
			rebuilt := errors.FromCode(uint32(ErrCodeBase-wire.Code), wire.Message)
			if !tc.wantRoot.Is(rebuilt) {
				t.Fatalf("rebuilt as %+v", rebuilt)
			}
			if rebuilt.Error() != tc.err.Error() {
				t.Fatalf("description changed: %q", rebuilt.Error())
			}
		})
	}
}

func TestRPCErrorKeepsOracleText(t *testing.T) {
	// the exact rejection text is a wire contract
	wire := RPCError(errors.ErrSignature)
	if wire.Message != "Eth signature is incorrect" {
		t.Fatalf("message %q", wire.Message)
	}
}

func TestParseBlockStatus(t *testing.T) {
	for _, status := range []stratum.BlockStatus{
		stratum.StatusPending,
		stratum.StatusCommitted,
		stratum.StatusVerified,
	} {
		got, err := ParseBlockStatus(status.String())
		if err != nil {
			t.Fatalf("%s: %s", status, err)
		}
		if got != status {
			t.Fatalf("round trip changed %s to %s", status, got)
		}
	}

	if _, err := ParseBlockStatus("finalized"); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}
