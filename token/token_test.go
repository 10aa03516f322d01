package token

import (
	"math/big"
	"testing"

	"github.com/stratum-one/stratum/errors"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(
		Token{ID: 0, Symbol: "ETH", Decimals: 18},
		Token{ID: 1, Symbol: "DAI", Decimals: 18},
	)

	tok, err := r.ByID(0)
	if err != nil {
		t.Fatalf("by id: %s", err)
	}
	if tok.Symbol != "ETH" {
		t.Fatalf("got %q", tok.Symbol)
	}

	tok, err = r.BySymbol("DAI")
	if err != nil {
		t.Fatalf("by symbol: %s", err)
	}
	if tok.ID != 1 {
		t.Fatalf("got id %d", tok.ID)
	}

	if _, err := r.ByID(99); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
	if _, err := r.BySymbol("BTC"); !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(Token{ID: 0, Symbol: "ETH", Decimals: 18})

	if err := r.Register(Token{ID: 0, Symbol: "WETH"}); !errors.ErrInput.Is(err) {
		t.Fatalf("duplicate id: %+v", err)
	}
	if err := r.Register(Token{ID: 7, Symbol: "ETH"}); !errors.ErrInput.Is(err) {
		t.Fatalf("duplicate symbol: %+v", err)
	}
	if err := r.Register(Token{ID: 7, Symbol: ""}); !errors.ErrInput.Is(err) {
		t.Fatalf("empty symbol: %+v", err)
	}
}

func TestNewRegistryPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	NewRegistry(
		Token{ID: 0, Symbol: "ETH"},
		Token{ID: 0, Symbol: "DAI"},
	)
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]struct {
		decimals uint8
		amount   string
		want     string
	}{
		"one whole unit":    {decimals: 18, amount: "1000000000000000000", want: "1.0"},
		"one and a half":    {decimals: 18, amount: "1500000000000000000", want: "1.5"},
		"smallest unit":     {decimals: 18, amount: "1", want: "0.000000000000000001"},
		"zero":              {decimals: 18, amount: "0", want: "0.0"},
		"no decimals":       {decimals: 0, amount: "5", want: "5.0"},
		"trailing trimmed":  {decimals: 6, amount: "1230000", want: "1.23"},
		"leading zero frac": {decimals: 6, amount: "100", want: "0.0001"},
		"schedule fee":      {decimals: 18, amount: "100000", want: "0.0000000000001"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tc.amount, 10)
			if !ok {
				t.Fatal("bad test amount")
			}
			tok := Token{Symbol: "X", Decimals: tc.decimals}
			if got := tok.FormatAmount(amount); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
