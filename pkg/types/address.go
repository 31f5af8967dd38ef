package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZkLinkAddress is a 20-byte layer-one address or a 32-byte address from a
// non-EVM chain. On the wire it always occupies 32 bytes, front padded.
type ZkLinkAddress struct {
	raw []byte
}

func AddressFromBytes(b []byte) (ZkLinkAddress, error) {
	if len(b) != L1AddressBytes && len(b) != AddressBytes {
		return ZkLinkAddress{}, fmt.Errorf("address must be %d or %d bytes, got %d", L1AddressBytes, AddressBytes, len(b))
	}
	return ZkLinkAddress{raw: bytes.Clone(b)}, nil
}

// ParseAddress decodes a 0x-prefixed hex address.
func ParseAddress(s string) (ZkLinkAddress, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return ZkLinkAddress{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

func MustParseAddress(s string) ZkLinkAddress {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func AddressFromEth(a common.Address) ZkLinkAddress {
	return ZkLinkAddress{raw: a.Bytes()}
}

func (a ZkLinkAddress) Bytes() []byte { return bytes.Clone(a.raw) }

// Fixed returns the 32-byte wire form.
func (a ZkLinkAddress) Fixed() [AddressBytes]byte {
	var out [AddressBytes]byte
	copy(out[AddressBytes-len(a.raw):], a.raw)
	return out
}

// Eth returns the leading 20 bytes as a layer-one address.
func (a ZkLinkAddress) Eth() common.Address {
	if len(a.raw) < L1AddressBytes {
		return common.Address{}
	}
	return common.BytesToAddress(a.raw[:L1AddressBytes])
}

func (a ZkLinkAddress) IsZero() bool {
	for _, b := range a.raw {
		if b != 0 {
			return false
		}
	}
	return true
}

func (a ZkLinkAddress) IsGlobalAccount() bool {
	if len(a.raw) != AddressBytes {
		return false
	}
	for _, b := range a.raw {
		if b != 0xff {
			return false
		}
	}
	return true
}

func (a ZkLinkAddress) Equal(o ZkLinkAddress) bool { return bytes.Equal(a.raw, o.raw) }

// String is lowercase hex of the raw bytes, as the network displays it.
func (a ZkLinkAddress) String() string { return "0x" + hex.EncodeToString(a.raw) }

func (a ZkLinkAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ZkLinkAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// PubKeyHash identifies an L2 signing key.
type PubKeyHash [PubKeyHashBytes]byte

func ParsePubKeyHash(s string) (PubKeyHash, error) {
	var h PubKeyHash
	b, err := hexutil.Decode(s)
	if err != nil {
		return h, fmt.Errorf("parse pubkey hash %q: %w", s, err)
	}
	if len(b) != PubKeyHashBytes {
		return h, fmt.Errorf("pubkey hash must be %d bytes, got %d", PubKeyHashBytes, len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h PubKeyHash) Hex() string { return hex.EncodeToString(h[:]) }

func (h PubKeyHash) String() string { return "0x" + h.Hex() }

func (h PubKeyHash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *PubKeyHash) UnmarshalText(text []byte) error {
	parsed, err := ParsePubKeyHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// TxHash is sha256 of a transaction's canonical bytes.
type TxHash [TxHashBytes]byte

func (h TxHash) String() string { return "0x" + hex.EncodeToString(h[:]) }

func (h TxHash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *TxHash) UnmarshalText(text []byte) error {
	b, err := hexutil.Decode(string(text))
	if err != nil {
		return fmt.Errorf("parse tx hash: %w", err)
	}
	if len(b) != TxHashBytes {
		return fmt.Errorf("tx hash must be %d bytes, got %d", TxHashBytes, len(b))
	}
	copy(h[:], b)
	return nil
}

func ParseTxHash(s string) (TxHash, error) {
	var h TxHash
	err := h.UnmarshalText([]byte(s))
	return h, err
}
