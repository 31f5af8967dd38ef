// Package codec writes the canonical big-endian byte layout that
// transactions are signed over.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/uhyunpark/zklink-signer/pkg/pack"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

var (
	ErrOutOfRange = errors.New("value out of range")
	ErrTooLong    = errors.New("value too long for field")
)

// Writer appends fixed-width fields. The first error is sticky: later writes
// are ignored and Bytes reports it.
type Writer struct {
	buf []byte
	err error
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) setErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) U8(v uint8) *Writer {
	if w.err == nil {
		w.buf = append(w.buf, v)
	}
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	if w.err == nil {
		w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	}
	return w
}

// U24 writes the low three bytes of v.
func (w *Writer) U24(v uint32) *Writer {
	if v > 1<<24-1 {
		w.setErr(fmt.Errorf("%w: %d does not fit 24 bits", ErrOutOfRange, v))
	}
	if w.err == nil {
		w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
	}
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	if w.err == nil {
		w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	}
	return w
}

// Narrow16 writes v as u16, failing if it does not fit.
func (w *Writer) Narrow16(v uint32) *Writer {
	if v > math.MaxUint16 {
		w.setErr(fmt.Errorf("%w: %d does not fit 16 bits", ErrOutOfRange, v))
		return w
	}
	return w.U16(uint16(v))
}

// BigPadded writes v front padded with zeros to n bytes.
func (w *Writer) BigPadded(v *big.Int, n int) *Writer {
	if v.Sign() < 0 {
		w.setErr(fmt.Errorf("%w: negative value %s", ErrOutOfRange, v))
		return w
	}
	return w.Padded(v.Bytes(), n)
}

func (w *Writer) Padded(b []byte, n int) *Writer {
	if len(b) > n {
		w.setErr(fmt.Errorf("%w: %d bytes into %d", ErrTooLong, len(b), n))
	}
	if w.err == nil {
		for i := len(b); i < n; i++ {
			w.buf = append(w.buf, 0)
		}
		w.buf = append(w.buf, b...)
	}
	return w
}

func (w *Writer) U128(v types.BigUint) *Writer {
	return w.BigPadded(v.Int(), 16)
}

func (w *Writer) Address(a types.ZkLinkAddress) *Writer {
	fixed := a.Fixed()
	return w.Raw(fixed[:])
}

func (w *Writer) PackedAmount(v types.BigUint) *Writer {
	return w.packed(pack.PackAmount, pack.IsAmountPackable, "amount", v)
}

func (w *Writer) PackedFee(v types.BigUint) *Writer {
	return w.packed(pack.PackFee, pack.IsFeePackable, "fee", v)
}

// packed refuses lossy values: rounding is an explicit caller decision.
func (w *Writer) packed(enc func(*big.Int) ([]byte, error), packable func(*big.Int) bool, what string, v types.BigUint) *Writer {
	if w.err != nil {
		return w
	}
	x := v.Int()
	if !packable(x) {
		w.setErr(fmt.Errorf("%s %s is not packable", what, x))
		return w
	}
	b, err := enc(x)
	if err != nil {
		w.setErr(fmt.Errorf("pack %s: %w", what, err))
		return w
	}
	return w.Raw(b)
}

// VarBytes writes a u16 length prefix followed by b.
func (w *Writer) VarBytes(b []byte) *Writer {
	if len(b) > math.MaxUint16 {
		w.setErr(fmt.Errorf("%w: %d bytes exceeds u16 length prefix", ErrTooLong, len(b)))
		return w
	}
	return w.U16(uint16(len(b))).Raw(b)
}

func (w *Writer) Raw(b []byte) *Writer {
	if w.err == nil {
		w.buf = append(w.buf, b...)
	}
	return w
}

func (w *Writer) Err() error { return w.err }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}
