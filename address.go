package stratum

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/stratum-one/stratum/errors"
)

// AddressLength is the size of a root-chain address in bytes.
const AddressLength = 20

// Address is a root-chain (Ethereum style) account address.
//
// The canonical text form is lowercase hex with a 0x prefix. Signed
// authorization messages always render addresses in this form, so any
// deviation changes the signed bytes.
type Address []byte

// ParseAddress decodes the text form of an address. A 0x prefix is
// accepted but not required.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "cannot decode hex")
	}
	a := Address(raw)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// String returns the canonical lowercase hex form.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return "0x" + hex.EncodeToString(a)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address length %d", len(a))
	}
	return nil
}

// MarshalJSON provides the canonical hex representation for JSON, to
// override the standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, "cannot decode json")
	}
	if len(enc) == 0 {
		*a = nil
		return nil
	}
	val, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = val
	return nil
}
