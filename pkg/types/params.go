package types

import "math/big"

// Network-wide limits and widths.
const (
	TokenMaxPrecision uint8 = 18

	MaxAccountID        AccountID    = 1<<24 - 1
	GlobalAssetAccount  AccountID    = 1
	MaxSubAccountID     SubAccountID = 1<<5 - 1
	MaxChainID          ChainID      = 1<<5 - 1
	MaxTokenID          TokenID      = 1<<16 - 1
	UsdxTokenLowerBound TokenID      = 2
	UsdxTokenUpperBound TokenID      = 16
	MaxSlotID           SlotID       = 1<<16 - 1
	MaxNonce            Nonce        = 1<<32 - 1
	MaxOrderNonce       Nonce        = 1<<24 - 1

	// UsedPositionNumber is the number of perpetual pairs carried by every
	// OrderMatching; pair ids run from 0 to UsedPositionNumber-1.
	UsedPositionNumber = 4
	MarginTokensNumber = 3

	MaxWithdrawFeeRatio uint16 = 10000

	PriceBytes      = 15
	PubKeyHashBytes = 20
	AddressBytes    = 32
	L1AddressBytes  = 20
	TxHashBytes     = 32

	// FrBytes is the width of a hash that fits the rollup field element.
	FrBytes = 31
	// OrdersBytes is the padded width of the maker/taker/prices preimage.
	OrdersBytes = 1424 / 8
)

var (
	MinPrice = big.NewInt(1)
	// MaxPrice is exclusive.
	MaxPrice, _ = new(big.Int).SetString("1329227995784915872000000000000000000", 10)
)
