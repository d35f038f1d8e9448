package pricing

import (
	"catalogapi/internal/config"

	"github.com/shopspring/decimal"
)

// Currency describes how the store formats money.
type Currency struct {
	Code              string `json:"currency_code"`
	Symbol            string `json:"currency_symbol"`
	MinorUnit         int    `json:"currency_minor_unit"`
	DecimalSeparator  string `json:"currency_decimal_separator"`
	ThousandSeparator string `json:"currency_thousand_separator"`
	Prefix            string `json:"currency_prefix"`
	Suffix            string `json:"currency_suffix"`
}

// NewCurrency builds the currency descriptor from store settings.
func NewCurrency(store config.Store) Currency {
	c := Currency{
		Code:              store.CurrencyCode,
		Symbol:            store.CurrencySymbol,
		MinorUnit:         store.CurrencyDecimals,
		DecimalSeparator:  store.CurrencyDecimalSeparator,
		ThousandSeparator: store.CurrencyThousandSeparator,
	}

	switch store.CurrencyPosition {
	case "right":
		c.Suffix = store.CurrencySymbol
	case "right_space":
		c.Suffix = " " + store.CurrencySymbol
	case "left_space":
		c.Prefix = store.CurrencySymbol + " "
	default:
		c.Prefix = store.CurrencySymbol
	}
	return c
}

// Format renders an amount with the currency's minor unit precision, e.g. "10.00".
func (c Currency) Format(d decimal.Decimal) string {
	return d.StringFixed(int32(c.MinorUnit))
}

// FormatNull renders an empty string for unset amounts.
func (c Currency) FormatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return c.Format(d.Decimal)
}

// Amount returns d as a JSON number at the currency's precision.
func (c Currency) Amount(d decimal.Decimal) Amount {
	return Amount{Value: d, Places: int32(c.MinorUnit)}
}

// Amount is a money value that marshals as a JSON number with fixed decimals.
type Amount struct {
	Value  decimal.Decimal
	Places int32
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.StringFixed(a.Places)), nil
}
