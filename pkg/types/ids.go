package types

// Identifier widths follow the rollup circuit: values are carried in wider
// Go integers so out-of-range inputs can be reported instead of truncated.
type (
	AccountID    uint32
	SubAccountID uint8
	ChainID      uint8
	TokenID      uint32
	PairID       uint16
	SlotID       uint32
	Nonce        uint32
	TimeStamp    uint32
)
