// Package token resolves numeric token identifiers to their metadata.
// The authorization message templates render amounts in the token's major
// unit, so signing requires symbol and decimals resolution.
package token

import (
	"sync"

	"github.com/stratum-one/stratum/errors"
)

// Token describes one supported token.
type Token struct {
	ID       uint32
	Symbol   string
	Decimals uint8
}

// Resolver provides token metadata lookup. The production implementation
// lives behind the oracle's API; tests and the reference oracle use a
// static Registry.
type Resolver interface {
	ByID(id uint32) (Token, error)
	BySymbol(symbol string) (Token, error)
}

// Registry is an in-memory Resolver.
type Registry struct {
	mu       sync.RWMutex
	byID     map[uint32]Token
	bySymbol map[string]Token
}

var _ Resolver = (*Registry)(nil)

// NewRegistry creates a registry preloaded with the given tokens. It
// panics on duplicates, as token sets are fixed at startup.
func NewRegistry(tokens ...Token) *Registry {
	r := &Registry{
		byID:     make(map[uint32]Token, len(tokens)),
		bySymbol: make(map[string]Token, len(tokens)),
	}
	for _, t := range tokens {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds one token. Both the id and the symbol must be unique.
func (r *Registry) Register(t Token) error {
	if t.Symbol == "" {
		return errors.Wrap(errors.ErrInput, "empty token symbol")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return errors.Wrapf(errors.ErrInput, "duplicate token id %d", t.ID)
	}
	if _, ok := r.bySymbol[t.Symbol]; ok {
		return errors.Wrapf(errors.ErrInput, "duplicate token symbol %q", t.Symbol)
	}
	r.byID[t.ID] = t
	r.bySymbol[t.Symbol] = t
	return nil
}

func (r *Registry) ByID(id uint32) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Token{}, errors.Wrapf(errors.ErrNotFound, "token id %d", id)
	}
	return t, nil
}

func (r *Registry) BySymbol(symbol string) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.bySymbol[symbol]
	if !ok {
		return Token{}, errors.Wrapf(errors.ErrNotFound, "token %q", symbol)
	}
	return t, nil
}
