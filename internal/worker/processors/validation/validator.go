package validation

import (
	"errors"
	"fmt"

	"catalogapi/internal/logger"
	"catalogapi/internal/models"
)

var knownTypes = map[string]bool{
	models.TypeSimple:                true,
	models.TypeVariable:              true,
	models.TypeGrouped:               true,
	models.TypeExternal:              true,
	models.TypeVariation:             true,
	models.TypeSubscription:          true,
	models.TypeVariableSubscription:  true,
	models.TypeSubscriptionVariation: true,
}

// Validator checks that a product can be served consistently by the catalog API.
type Validator struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		logger: logger,
	}
}

// ValidateProduct returns every problem found on p joined into one error.
func (v *Validator) ValidateProduct(p *models.Product) error {
	var errs []error

	if p.Name == "" && !p.IsVariation() {
		errs = append(errs, errors.New("name is required"))
	}
	if !knownTypes[p.Type] {
		errs = append(errs, fmt.Errorf("unknown product type %q", p.Type))
	}
	if p.IsVariation() && p.ParentID == 0 {
		errs = append(errs, errors.New("variation has no parent"))
	}
	if !p.IsVariation() && len(p.VariationAttributes) > 0 {
		errs = append(errs, errors.New("only variations select attribute values"))
	}

	if p.SalePrice.Valid && p.RegularPrice.Valid && p.SalePrice.Decimal.GreaterThan(p.RegularPrice.Decimal) {
		errs = append(errs, errors.New("sale price is above the regular price"))
	}
	if p.DateOnSaleFrom != nil && p.DateOnSaleTo != nil && p.DateOnSaleTo.Before(*p.DateOnSaleFrom) {
		errs = append(errs, errors.New("sale ends before it starts"))
	}
	if p.Price.Valid && p.Price.Decimal.IsNegative() {
		errs = append(errs, errors.New("price is negative"))
	}

	if p.ManageStock && p.StockQuantity == nil {
		errs = append(errs, errors.New("stock is managed without a quantity"))
	}
	if p.IsType(models.TypeExternal) && p.ProductURL == "" {
		errs = append(errs, errors.New("external product has no url"))
	}

	if len(errs) > 0 {
		v.logger.Debug("Product %d (%s) failed validation: %v", p.ID, p.Slug, errs)
	}
	return errors.Join(errs...)
}
