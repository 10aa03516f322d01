package stratum

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"

	"github.com/stratum-one/stratum/coin"
	"github.com/stratum-one/stratum/errors"
)

// TxType tags a transaction variant. The numeric values are part of the
// wire format and must never change.
type TxType byte

const (
	TypeWithdraw TxType = 3
	TypeTransfer TxType = 5
)

func (t TxType) String() string {
	switch t {
	case TypeTransfer:
		return "Transfer"
	case TypeWithdraw:
		return "Withdraw"
	default:
		return "Unknown"
	}
}

// MaxValidUntil is the protocol sentinel for "no expiry".
const MaxValidUntil uint64 = math.MaxUint32

// wireSize is the length of the canonical serialization of one transaction.
const wireSize = 1 + 4 + 20 + 20 + 4 + 16 + 2 + 4 + 8 + 8

// Tx is one layer-2 account transaction. Implementations are immutable
// once signed; the signature covers the wire bytes, so mutating any field
// afterwards invalidates it.
type Tx interface {
	Type() TxType
	// Base exposes the fields shared by every variant.
	Base() *TxBase
	// Destination is the receiving account (transfer) or the root-chain
	// address funds exit to (withdraw).
	Destination() Address
	// WireBytes is the canonical byte serialization. It is the input to
	// both the transaction signature and the batch content hash.
	WireBytes() ([]byte, error)
	Validate() error
}

// TxBase carries the fields shared by every transaction variant.
type TxBase struct {
	AccountID  uint32
	From       Address
	Token      uint32
	Amount     *big.Int
	Fee        *big.Int
	Nonce      uint32
	ValidFrom  uint64
	ValidUntil uint64
	// Signature is the layer-2 signing-key signature over the wire
	// bytes. It is distinct from the root-chain batch signature.
	Signature []byte
}

// Origin returns the account the funds are drawn from.
func (b *TxBase) Origin() Address { return b.From }

func (b *TxBase) validate() error {
	if err := b.From.Validate(); err != nil {
		return errors.Wrap(err, "from")
	}
	if b.Amount == nil || b.Amount.Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative or missing amount")
	}
	if b.Fee == nil || b.Fee.Sign() < 0 {
		return errors.Wrap(errors.ErrAmount, "negative or missing fee")
	}
	if b.ValidUntil < b.ValidFrom {
		return errors.Wrap(errors.ErrExpired, "empty validity window")
	}
	return nil
}

// serialize writes the canonical layout shared by both variants. Only the
// type tag distinguishes them on the wire.
func (b *TxBase) serialize(typ TxType, to Address) ([]byte, error) {
	if b.Amount.BitLen() > 128 {
		return nil, errors.Wrap(errors.ErrOverflow, "amount")
	}
	packedFee, err := coin.PackFee(b.Fee)
	if err != nil {
		return nil, errors.Wrap(err, "fee")
	}

	out := make([]byte, 0, wireSize)
	out = append(out, byte(typ))
	out = appendUint32(out, b.AccountID)
	out = append(out, b.From...)
	out = append(out, to...)
	out = appendUint32(out, b.Token)

	var amount [16]byte
	b.Amount.FillBytes(amount[:])
	out = append(out, amount[:]...)

	var fee [2]byte
	binary.BigEndian.PutUint16(fee[:], packedFee)
	out = append(out, fee[:]...)

	out = appendUint32(out, b.Nonce)
	out = appendUint64(out, b.ValidFrom)
	out = appendUint64(out, b.ValidUntil)
	return out, nil
}

func appendUint32(b []byte, v uint32) []byte {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], v)
	return append(b, raw[:]...)
}

func appendUint64(b []byte, v uint64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	return append(b, raw[:]...)
}

var (
	_ Tx = (*Transfer)(nil)
	_ Tx = (*Withdraw)(nil)
)

// Transfer moves tokens between two layer-2 accounts.
type Transfer struct {
	TxBase
	To Address
}

func (t *Transfer) Type() TxType         { return TypeTransfer }
func (t *Transfer) Base() *TxBase        { return &t.TxBase }
func (t *Transfer) Destination() Address { return t.To }

func (t *Transfer) WireBytes() ([]byte, error) {
	return t.serialize(TypeTransfer, t.To)
}

func (t *Transfer) Validate() error {
	if err := t.To.Validate(); err != nil {
		return errors.Wrap(err, "to")
	}
	return t.validate()
}

// Withdraw moves tokens from a layer-2 account to a root-chain address.
type Withdraw struct {
	TxBase
	To Address
}

func (w *Withdraw) Type() TxType         { return TypeWithdraw }
func (w *Withdraw) Base() *TxBase        { return &w.TxBase }
func (w *Withdraw) Destination() Address { return w.To }

func (w *Withdraw) WireBytes() ([]byte, error) {
	return w.serialize(TypeWithdraw, w.To)
}

func (w *Withdraw) Validate() error {
	if err := w.To.Validate(); err != nil {
		return errors.Wrap(err, "to")
	}
	return w.validate()
}

// txJSON is the submission payload layout. Amounts travel as decimal
// strings in the token's minor unit.
type txJSON struct {
	Type       string  `json:"type"`
	AccountID  uint32  `json:"accountId"`
	From       Address `json:"from"`
	To         Address `json:"to"`
	Token      uint32  `json:"token"`
	Amount     string  `json:"amount"`
	Fee        string  `json:"fee"`
	Nonce      uint32  `json:"nonce"`
	ValidFrom  uint64  `json:"validFrom"`
	ValidUntil uint64  `json:"validUntil"`
	Signature  string  `json:"signature,omitempty"`
}

func (b *TxBase) toJSON(typ TxType, to Address) txJSON {
	return txJSON{
		Type:       typ.String(),
		AccountID:  b.AccountID,
		From:       b.From,
		To:         to,
		Token:      b.Token,
		Amount:     b.Amount.String(),
		Fee:        b.Fee.String(),
		Nonce:      b.Nonce,
		ValidFrom:  b.ValidFrom,
		ValidUntil: b.ValidUntil,
		Signature:  hex.EncodeToString(b.Signature),
	}
}

func (b *TxBase) fromJSON(raw txJSON) error {
	amount, ok := new(big.Int).SetString(raw.Amount, 10)
	if !ok {
		return errors.Wrapf(errors.ErrInput, "amount %q", raw.Amount)
	}
	fee, ok := new(big.Int).SetString(raw.Fee, 10)
	if !ok {
		return errors.Wrapf(errors.ErrInput, "fee %q", raw.Fee)
	}
	sig, err := hex.DecodeString(raw.Signature)
	if err != nil {
		return errors.Wrap(errors.ErrInput, "signature")
	}
	b.AccountID = raw.AccountID
	b.From = raw.From
	b.Token = raw.Token
	b.Amount = amount
	b.Fee = fee
	b.Nonce = raw.Nonce
	b.ValidFrom = raw.ValidFrom
	b.ValidUntil = raw.ValidUntil
	if len(sig) > 0 {
		b.Signature = sig
	}
	return nil
}

func (t *Transfer) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSON(TypeTransfer, t.To))
}

func (t *Transfer) UnmarshalJSON(raw []byte) error {
	var dto txJSON
	if err := json.Unmarshal(raw, &dto); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	t.To = dto.To
	return t.fromJSON(dto)
}

func (w *Withdraw) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.toJSON(TypeWithdraw, w.To))
}

func (w *Withdraw) UnmarshalJSON(raw []byte) error {
	var dto txJSON
	if err := json.Unmarshal(raw, &dto); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	w.To = dto.To
	return w.fromJSON(dto)
}

// UnmarshalTx decodes a single transaction from its submission payload
// form, dispatching on the type tag.
func UnmarshalTx(raw json.RawMessage) (Tx, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	switch probe.Type {
	case "Transfer":
		var t Transfer
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return &t, nil
	case "Withdraw":
		var w Withdraw
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &w, nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown transaction type %q", probe.Type)
	}
}
