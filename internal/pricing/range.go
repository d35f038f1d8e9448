package pricing

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// Range is the from/to price span of a variable or grouped product. The zero
// value is an empty range.
type Range struct {
	From  Amount
	To    *Amount
	Valid bool
}

func (r Range) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteString(`{"from":`)
	from, err := r.From.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(from)
	buf.WriteString(`,"to":`)
	if r.To == nil {
		buf.WriteString(`""`)
	} else {
		to, err := json.Marshal(*r.To)
		if err != nil {
			return nil, err
		}
		buf.Write(to)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// VariableRange spans the variation prices; equal bounds leave To empty.
func (c Currency) VariableRange(prices []decimal.Decimal) Range {
	if len(prices) == 0 {
		return Range{}
	}
	lo, hi := bounds(prices)
	r := Range{From: c.Amount(lo), Valid: true}
	if !lo.Equal(hi) {
		to := c.Amount(hi)
		r.To = &to
	}
	return r
}

// GroupedRange spans the children prices and always carries both bounds.
func (c Currency) GroupedRange(prices []decimal.Decimal) Range {
	if len(prices) == 0 {
		return Range{}
	}
	lo, hi := bounds(prices)
	to := c.Amount(hi)
	return Range{From: c.Amount(lo), To: &to, Valid: true}
}

func bounds(prices []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	sorted := append([]decimal.Decimal(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return sorted[0], sorted[len(sorted)-1]
}
