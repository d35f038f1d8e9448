package catalog

import (
	"strings"
	"time"

	"catalogapi/internal/config"
	"catalogapi/internal/pricing"
)

// Settings carry the store configuration the projector renders with.
type Settings struct {
	BaseURL     string
	SiteURL     string
	ShopPageURL string
	Location    *time.Location

	Currency pricing.Currency
	Tax      *pricing.Calculator

	WeightUnit          string
	DimensionUnit       string
	ImageSizes          []string
	PlaceholderImageURL string
	HideOutOfStock      bool
	RelatedLimit        int
}

func NewSettings(cfg *config.Config) Settings {
	loc, err := time.LoadLocation(cfg.Store.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return Settings{
		BaseURL:             strings.TrimRight(cfg.APIBaseURL, "/"),
		SiteURL:             strings.TrimRight(cfg.Store.SiteURL, "/"),
		ShopPageURL:         cfg.Store.ShopPageURL,
		Location:            loc,
		Currency:            pricing.NewCurrency(cfg.Store),
		Tax:                 pricing.NewCalculator(cfg.Store),
		WeightUnit:          cfg.Store.WeightUnit,
		DimensionUnit:       cfg.Store.DimensionUnit,
		ImageSizes:          cfg.Store.ImageSizes,
		PlaceholderImageURL: cfg.Store.PlaceholderImageURL,
		HideOutOfStock:      cfg.Store.HideOutOfStock,
		RelatedLimit:        cfg.Store.RelatedLimit,
	}
}
