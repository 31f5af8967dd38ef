package types

import (
	"fmt"

	"github.com/uhyunpark/zklink-signer/pkg/pack"
)

// Validator collects the first failing field check. Later checks are no-ops
// once one has failed.
type Validator struct {
	err *ValidationError
}

func (v *Validator) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

func (v *Validator) fail(field, reason string) {
	if v.err == nil {
		v.err = Invalid(field, reason)
	}
}

func (v *Validator) failed() bool { return v.err != nil }

func (v *Validator) Check(field string, ok bool, reason string) {
	if !v.failed() && !ok {
		v.fail(field, reason)
	}
}

func (v *Validator) AccountID(field string, id AccountID) {
	switch {
	case v.failed():
	case id > MaxAccountID:
		v.fail(field, fmt.Sprintf("account id %d out of range (max %d)", id, MaxAccountID))
	case id == GlobalAssetAccount:
		v.fail(field, "account id must not be the global asset account")
	}
}

func (v *Validator) SubAccountID(field string, id SubAccountID) {
	if !v.failed() && id > MaxSubAccountID {
		v.fail(field, fmt.Sprintf("sub-account id %d out of range (max %d)", id, MaxSubAccountID))
	}
}

func (v *Validator) ChainID(field string, id ChainID) {
	if !v.failed() && id > MaxChainID {
		v.fail(field, fmt.Sprintf("chain id %d out of range (max %d)", id, MaxChainID))
	}
}

func (v *Validator) TokenID(field string, id TokenID) {
	switch {
	case v.failed():
	case id > MaxTokenID:
		v.fail(field, fmt.Sprintf("token id %d out of range (max %d)", id, MaxTokenID))
	case id >= UsdxTokenLowerBound && id <= UsdxTokenUpperBound:
		v.fail(field, fmt.Sprintf("token id %d is reserved, ids in [%d, %d] are not allowed", id, UsdxTokenLowerBound, UsdxTokenUpperBound))
	}
}

func (v *Validator) PairID(field string, id PairID) {
	if !v.failed() && int(id) >= UsedPositionNumber {
		v.fail(field, fmt.Sprintf("pair id %d out of range (max %d)", id, UsedPositionNumber-1))
	}
}

func (v *Validator) SlotID(field string, id SlotID) {
	if !v.failed() && id > MaxSlotID {
		v.fail(field, fmt.Sprintf("slot id %d out of range (max %d)", id, MaxSlotID))
	}
}

func (v *Validator) Nonce(field string, n Nonce) {
	if !v.failed() && n >= MaxNonce {
		v.fail(field, "nonce has reached its maximum")
	}
}

func (v *Validator) OrderNonce(field string, n Nonce) {
	if !v.failed() && n >= MaxOrderNonce {
		v.fail(field, "order nonce has reached its maximum")
	}
}

// Recipient rejects the zero address and the global asset account address.
func (v *Validator) Recipient(field string, a ZkLinkAddress) {
	switch {
	case v.failed():
	case len(a.raw) == 0:
		v.fail(field, "address is missing")
	case a.IsZero():
		v.fail(field, "address is zero")
	case a.IsGlobalAccount():
		v.fail(field, "address is the global asset account address")
	}
}

func (v *Validator) AmountPackable(field string, x BigUint) {
	if !v.failed() && !pack.IsAmountPackable(x.Int()) {
		v.fail(field, fmt.Sprintf("amount %s is not packable", x))
	}
}

func (v *Validator) FeePackable(field string, x BigUint) {
	if !v.failed() && !pack.IsFeePackable(x.Int()) {
		v.fail(field, fmt.Sprintf("fee %s is not packable", x))
	}
}

// Uint128 checks a value carried unpacked in 16 bytes.
func (v *Validator) Uint128(field string, x BigUint) {
	if !v.failed() && x.Int().Cmp(pack.MaxUint128()) > 0 {
		v.fail(field, fmt.Sprintf("%s exceeds 128 bits", x))
	}
}

// Price checks an order price: MinPrice < price < MaxPrice.
func (v *Validator) Price(field string, x BigUint) {
	p := x.Int()
	if !v.failed() && (p.Cmp(MinPrice) <= 0 || p.Cmp(MaxPrice) >= 0) {
		v.fail(field, fmt.Sprintf("price %s out of range", x))
	}
}

// ExternalPrice checks an oracle price: price < MaxPrice.
func (v *Validator) ExternalPrice(field string, x BigUint) {
	if !v.failed() && x.Int().Cmp(MaxPrice) >= 0 {
		v.fail(field, fmt.Sprintf("price %s out of range", x))
	}
}

func (v *Validator) WithdrawFeeRatio(field string, ratio uint16) {
	if !v.failed() && ratio > MaxWithdrawFeeRatio {
		v.fail(field, fmt.Sprintf("ratio %d out of range (max %d)", ratio, MaxWithdrawFeeRatio))
	}
}

// Merge records err under field unless a failure is already recorded.
func (v *Validator) Merge(field string, err error) {
	if v.failed() || err == nil {
		return
	}
	if ve, ok := err.(*ValidationError); ok {
		v.fail(field+"."+ve.Field, ve.Reason)
		return
	}
	v.fail(field, err.Error())
}
