package pricing

import (
	"catalogapi/internal/config"
	"catalogapi/internal/models"

	"github.com/shopspring/decimal"
)

// Tax display modes.
const (
	DisplayIncl = "incl"
	DisplayExcl = "excl"
)

var hundred = decimal.NewFromInt(100)

// Calculator converts stored prices into displayed prices.
type Calculator struct {
	rates            map[string]decimal.Decimal
	pricesIncludeTax bool
	defaultMode      string
}

func NewCalculator(store config.Store) *Calculator {
	mode := store.TaxDisplayShop
	if mode != DisplayIncl {
		mode = DisplayExcl
	}
	return &Calculator{
		rates:            store.TaxRates,
		pricesIncludeTax: store.PricesIncludeTax,
		defaultMode:      mode,
	}
}

// Mode returns requested when it is a valid display mode, else the store default.
func (c *Calculator) Mode(requested string) string {
	if requested == DisplayIncl || requested == DisplayExcl {
		return requested
	}
	return c.defaultMode
}

// Display returns price as shown under mode.
func (c *Calculator) Display(p *models.Product, price decimal.Decimal, mode string) decimal.Decimal {
	if c.Mode(mode) == DisplayIncl {
		return c.IncludingTax(p, price)
	}
	return c.ExcludingTax(p, price)
}

func (c *Calculator) IncludingTax(p *models.Product, price decimal.Decimal) decimal.Decimal {
	rate, ok := c.rate(p)
	if !ok || c.pricesIncludeTax {
		return price
	}
	return price.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
}

func (c *Calculator) ExcludingTax(p *models.Product, price decimal.Decimal) decimal.Decimal {
	rate, ok := c.rate(p)
	if !ok || !c.pricesIncludeTax {
		return price
	}
	return price.Div(decimal.NewFromInt(1).Add(rate.Div(hundred)))
}

func (c *Calculator) rate(p *models.Product) (decimal.Decimal, bool) {
	if p == nil || (p.TaxStatus != "" && p.TaxStatus != "taxable") {
		return decimal.Zero, false
	}
	class := p.TaxClass
	if class == "" {
		class = "standard"
	}
	rate, ok := c.rates[class]
	if !ok || rate.IsZero() {
		return decimal.Zero, false
	}
	return rate, true
}
