package tx

import (
	"fmt"
	"slices"

	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// ContractPrice is the oracle mark price of one perpetual pair.
type ContractPrice struct {
	PairID      types.PairID  `json:"pairId"`
	MarketPrice types.BigUint `json:"marketPrice"`
}

func (p ContractPrice) Validate() error {
	var v types.Validator
	v.PairID("pairId", p.PairID)
	v.ExternalPrice("marketPrice", p.MarketPrice)
	return v.Err()
}

func (p ContractPrice) writeTo(w *codec.Writer) {
	w.U8(uint8(p.PairID)).BigPadded(p.MarketPrice.Int(), types.PriceBytes)
}

// SpotPriceInfo is the oracle price of one margin token.
type SpotPriceInfo struct {
	TokenID types.TokenID `json:"tokenId"`
	Price   types.BigUint `json:"price"`
}

func (p SpotPriceInfo) Validate() error {
	var v types.Validator
	v.TokenID("tokenId", p.TokenID)
	v.ExternalPrice("price", p.Price)
	return v.Err()
}

func (p SpotPriceInfo) writeTo(w *codec.Writer) {
	w.Narrow16(uint32(p.TokenID)).BigPadded(p.Price.Int(), types.PriceBytes)
}

// OraclePrices is the price snapshot an OrderMatching settles against:
// one contract price per pair, in pair order, and one price per margin
// token.
type OraclePrices struct {
	ContractPrices []ContractPrice `json:"contractPrices"`
	MarginPrices   []SpotPriceInfo `json:"marginPrices"`
}

func NewOraclePrices(contract []ContractPrice, margin []SpotPriceInfo) (OraclePrices, error) {
	p := OraclePrices{
		ContractPrices: slices.Clone(contract),
		MarginPrices:   slices.Clone(margin),
	}
	if err := p.Validate(); err != nil {
		return OraclePrices{}, err
	}
	return p, nil
}

func (p OraclePrices) Validate() error {
	var v types.Validator
	v.Check("contractPrices", len(p.ContractPrices) == types.UsedPositionNumber,
		fmt.Sprintf("expected %d contract prices, got %d", types.UsedPositionNumber, len(p.ContractPrices)))
	for i, cp := range p.ContractPrices {
		field := fmt.Sprintf("contractPrices[%d]", i)
		v.Check(field+".pairId", int(cp.PairID) == i, "contract prices must be ordered by pair id")
		v.Merge(field, cp.Validate())
	}
	v.Check("marginPrices", len(p.MarginPrices) == types.MarginTokensNumber,
		fmt.Sprintf("expected %d margin prices, got %d", types.MarginTokensNumber, len(p.MarginPrices)))
	for i, sp := range p.MarginPrices {
		v.Merge(fmt.Sprintf("marginPrices[%d]", i), sp.Validate())
	}
	return v.Err()
}

// PairPrice returns the contract price of pair, or nil if absent.
func (p OraclePrices) PairPrice(pair types.PairID) *types.BigUint {
	if int(pair) >= len(p.ContractPrices) {
		return nil
	}
	price := p.ContractPrices[pair].MarketPrice
	return &price
}

func (p OraclePrices) SpotPrice(token types.TokenID) (types.BigUint, bool) {
	for _, sp := range p.MarginPrices {
		if sp.TokenID == token {
			return sp.Price, true
		}
	}
	return types.BigUint{}, false
}

// Hash commits to both lists: hash31(contract prices) || hash31(margin
// prices), 62 bytes.
func (p OraclePrices) Hash() ([]byte, error) {
	cw := codec.NewWriter(len(p.ContractPrices) * (1 + types.PriceBytes))
	for _, cp := range p.ContractPrices {
		cp.writeTo(cw)
	}
	contract, err := cw.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode contract prices: %w", err)
	}

	mw := codec.NewWriter(len(p.MarginPrices) * (2 + types.PriceBytes))
	for _, sp := range p.MarginPrices {
		sp.writeTo(mw)
	}
	margin, err := mw.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode margin prices: %w", err)
	}

	out := make([]byte, 0, 2*types.FrBytes)
	out = append(out, hash31(contract)...)
	return append(out, hash31(margin)...), nil
}

func (p OraclePrices) clone() OraclePrices {
	return OraclePrices{
		ContractPrices: slices.Clone(p.ContractPrices),
		MarginPrices:   slices.Clone(p.MarginPrices),
	}
}
