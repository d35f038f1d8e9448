package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"catalogapi/internal/config"
	"catalogapi/internal/models"
	"catalogapi/internal/pricing"
	"catalogapi/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products map[uint]*models.Product
	terms    map[uint][]models.Term
	images   map[uint]models.Image
	attrs    map[string]*models.AttributeTaxonomy
	related  []uint
	reviews  []models.Review
}

func (f *fakeSource) Get(_ context.Context, id uint) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSource) Products(_ context.Context, ids []uint) ([]*models.Product, error) {
	var out []*models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) Children(_ context.Context, parentID uint) ([]*models.Product, error) {
	var out []*models.Product
	for id := uint(1); id <= uint(len(f.products))+10; id++ {
		if p, ok := f.products[id]; ok && p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GroupedChildren(ctx context.Context, p *models.Product) ([]*models.Product, error) {
	return f.Products(ctx, p.LinkedIDs(models.LinkGrouped))
}

func (f *fakeSource) ProductTerms(_ context.Context, productID uint, taxonomy string) ([]models.Term, error) {
	var out []models.Term
	for _, t := range f.terms[productID] {
		if t.Taxonomy == taxonomy {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeSource) TermBySlug(_ context.Context, taxonomy, slug string) (*models.Term, error) {
	for _, terms := range f.terms {
		for i := range terms {
			if terms[i].Taxonomy == taxonomy && terms[i].Slug == slug {
				return &terms[i], nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSource) AttributeTaxonomyByName(_ context.Context, taxonomy string) (*models.AttributeTaxonomy, error) {
	if a, ok := f.attrs[taxonomy]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSource) Images(_ context.Context, ids []uint) (map[uint]models.Image, error) {
	out := make(map[uint]models.Image)
	for _, id := range ids {
		if img, ok := f.images[id]; ok {
			out[id] = img
		}
	}
	return out, nil
}

func (f *fakeSource) RelatedIDs(context.Context, *models.Product, int) ([]uint, error) {
	return f.related, nil
}

func (f *fakeSource) Reviews(context.Context, uint) ([]models.Review, error) {
	return f.reviews, nil
}

func money(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func testSettings() Settings {
	store := config.Store{
		CurrencyCode:     "USD",
		CurrencySymbol:   "$",
		CurrencyDecimals: 2,
		TaxDisplayShop:   pricing.DisplayExcl,
	}
	return Settings{
		BaseURL:             "https://shop.test/api",
		SiteURL:             "https://shop.test",
		ShopPageURL:         "https://shop.test/shop/",
		Location:            time.UTC,
		Currency:            pricing.NewCurrency(store),
		Tax:                 pricing.NewCalculator(store),
		WeightUnit:          "kg",
		DimensionUnit:       "cm",
		ImageSizes:          []string{"thumbnail", "full"},
		PlaceholderImageURL: "https://shop.test/placeholder.png",
		RelatedLimit:        5,
	}
}

func published(p *models.Product) *models.Product {
	p.Status = models.StatusPublish
	p.StockStatus = models.StockInStock
	return p
}

func variableSource(prices ...string) *fakeSource {
	src := &fakeSource{
		products: map[uint]*models.Product{
			1: published(&models.Product{
				ID:   1,
				Type: models.TypeVariable,
				Name: "Tee",
				Slug: "tee",
				Attributes: []models.ProductAttribute{
					{Name: "pa_color", IsTaxonomy: true, IsVariation: true, IsVisible: true},
				},
			}),
		},
		terms: map[uint][]models.Term{
			1: {
				{ID: 20, Taxonomy: "pa_color", Name: "Red", Slug: "red"},
				{ID: 21, Taxonomy: "pa_color", Name: "Blue", Slug: "blue"},
			},
		},
		attrs: map[string]*models.AttributeTaxonomy{
			"pa_color": {ID: 3, Name: "color", Label: "Color"},
		},
	}
	slugs := []string{"red", "blue", "red"}
	for i, price := range prices {
		id := uint(10 + i)
		v := published(&models.Product{
			ID:           id,
			ParentID:     1,
			Type:         models.TypeVariation,
			Name:         "Tee variation",
			RegularPrice: money(price),
			Price:        money(price),
			VariationAttributes: []models.VariationAttribute{
				{VariationID: id, Name: "pa_color", Value: slugs[i%len(slugs)]},
			},
		})
		src.products[id] = v
	}
	return src
}

func TestFieldSelection(t *testing.T) {
	src := &fakeSource{products: map[uint]*models.Product{
		1: published(&models.Product{ID: 1, Type: models.TypeSimple, Name: "Mug", Slug: "mug", Price: money("5")}),
	}}
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Namespace: "v2", Fields: []string{"id", "prices.price"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "prices"}, view.Keys())

	body, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"prices":{"price":"5.00","regular_price":"","sale_price":"","price_range":{},"on_sale":false,
		"date_on_sale":{"from":null,"from_gmt":null,"to":null,"to_gmt":null},
		"currency":{"currency_code":"USD","currency_symbol":"$","currency_minor_unit":2,"currency_decimal_separator":"",
		"currency_thousand_separator":"","currency_prefix":"$","currency_suffix":""}}}`, string(body))

	view, err = p.Product(context.Background(), src.products[1], Request{Namespace: "v2"})
	require.NoError(t, err)
	keys := view.Keys()
	assert.Equal(t, productFields, keys[:len(keys)-1])
	assert.Equal(t, "_links", keys[len(keys)-1])
}

func TestVariablePriceRange(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   string
	}{
		{"spread", []string{"10", "10", "15"}, `{"from":10.00,"to":15.00}`},
		{"same price", []string{"10", "10"}, `{"from":10.00,"to":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := variableSource(tt.prices...)
			p := NewProjector(src, testSettings(), Policies{})

			view, err := p.Product(context.Background(), src.products[1], Request{Namespace: "v2", Fields: []string{"prices"}})
			require.NoError(t, err)

			got, err := json.Marshal(view.Prices.PriceRange)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.Equal(t, "10.00", view.Prices.Price)
		})
	}
}

func TestVariablePricesIgnoreUnsellableVariations(t *testing.T) {
	src := variableSource("10", "15")
	src.products[12] = &models.Product{
		ID: 12, ParentID: 1, Type: models.TypeVariation, Status: models.StatusPrivate,
		StockStatus: models.StockInStock, RegularPrice: money("5"), Price: money("5"),
	}
	src.products[13] = published(&models.Product{
		ID: 13, ParentID: 1, Type: models.TypeVariation,
		RegularPrice: money("8"), SalePrice: money("7"), Price: money("7"),
	})
	src.products[13].StockStatus = models.StockOutOfStock

	settings := testSettings()
	settings.HideOutOfStock = true
	p := NewProjector(src, settings, Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"prices", "variations"}})
	require.NoError(t, err)

	assert.Equal(t, "10.00", view.Prices.Price)
	assert.Equal(t, "10.00", view.Prices.RegularPrice)
	assert.False(t, view.Prices.OnSale)
	got, err := json.Marshal(view.Prices.PriceRange)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":10.00,"to":15.00}`, string(got))
	assert.Len(t, view.Variations, 2)
}

func TestVariableWithoutPricedVariationsUsesPolicy(t *testing.T) {
	src := variableSource()
	src.products[10] = published(&models.Product{ID: 10, ParentID: 1, Type: models.TypeVariation})

	var called bool
	p := NewProjector(src, testSettings(), Policies{
		EmptyVariablePrice: func(*models.Product) pricing.Range {
			called = true
			return pricing.Range{}
		},
	})
	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"prices"}})
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, view.Prices.PriceRange.Valid)
}

func TestPlaceholderImage(t *testing.T) {
	src := &fakeSource{products: map[uint]*models.Product{
		1: published(&models.Product{ID: 1, Type: models.TypeSimple, Name: "Mug", ImageID: 99}),
	}}
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"images"}})
	require.NoError(t, err)
	require.Len(t, view.Images, 1)

	img := view.Images[0]
	assert.Equal(t, uint(0), img.ID)
	assert.Equal(t, "Placeholder", img.Name)
	assert.True(t, img.Featured)
	require.NotEmpty(t, img.Src)
	assert.Equal(t, Pair{"thumbnail", "https://shop.test/placeholder.png"}, img.Src[0])
}

func TestImagesKeepGalleryPositions(t *testing.T) {
	src := &fakeSource{
		products: map[uint]*models.Product{
			1: published(&models.Product{
				ID:      1,
				Type:    models.TypeSimple,
				ImageID: 7,
				Gallery: []models.GalleryImage{{ProductID: 1, ImageID: 8, Position: 0}, {ProductID: 1, ImageID: 9, Position: 1}},
			}),
		},
		images: map[uint]models.Image{
			7: {ID: 7, URL: "https://cdn.test/7.jpg"},
			9: {ID: 9, URL: "https://cdn.test/9.jpg"},
		},
	}
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"images"}})
	require.NoError(t, err)
	require.Len(t, view.Images, 2)
	assert.True(t, view.Images[0].Featured)
	assert.Equal(t, 0, view.Images[0].Position)
	assert.Equal(t, uint(9), view.Images[1].ID)
	assert.Equal(t, 2, view.Images[1].Position)
	assert.False(t, view.Images[1].Featured)
}

func TestVariationView(t *testing.T) {
	src := variableSource("10", "12")
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Variation(context.Background(), src.products[10], src.products[1], Request{Namespace: "v2"})
	require.NoError(t, err)

	for _, key := range view.Keys() {
		assert.False(t, variationOmitted[key], key)
	}
	assert.Equal(t, "https://shop.test/api/v2/cart/add-item?id=10&quantity=1&variation[attribute_pa_color]=red", view.AddToCart.RestURL)
	assert.Equal(t, "https://shop.test/product/tee/?attribute_pa_color=red", view.Permalink)

	body, err := json.Marshal(view)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &decoded))

	var cart map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded["add_to_cart"], &cart))
	assert.NotContains(t, cart, "has_options")

	var attrs map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(decoded["attributes"], &attrs))
	assert.Equal(t, "Color", attrs["attribute_pa_color"]["name"])
	assert.Equal(t, map[string]interface{}{"red": "Red"}, attrs["attribute_pa_color"]["option"])

	require.Len(t, view.Links.Get("up"), 1)
	assert.Equal(t, "https://shop.test/api/v2/products/1", view.Links.Get("up")[0].Href)
	assert.Equal(t, "https://shop.test/api/v2/products/1/variations/10", view.Links.Get("self")[0].Href)
}

func TestVariationAttributeFallsBackToRawValue(t *testing.T) {
	src := variableSource("10")
	src.products[10].VariationAttributes[0].Value = "green"
	p := NewProjector(src, testSettings(), Policies{})

	attrs, err := p.variationAttributes(context.Background(), src.products[10], src.products[1])
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, Options{{"green", "green"}}, attrs[0].Option)
}

func TestVariationAttributesSkipAnyValue(t *testing.T) {
	src := variableSource("10")
	src.products[10].VariationAttributes = append(src.products[10].VariationAttributes,
		models.VariationAttribute{VariationID: 10, Name: "size", Value: ""})
	p := NewProjector(src, testSettings(), Policies{})

	attrs, err := p.variationAttributes(context.Background(), src.products[10], src.products[1])
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "attribute_pa_color", attrs[0].Key)

	body, err := json.Marshal(attrs)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "attribute_size")
}

func TestVariationSummariesSkipHidden(t *testing.T) {
	src := variableSource("10", "12")
	src.products[12] = published(&models.Product{ID: 12, ParentID: 1, Type: models.TypeVariation})
	src.products[13] = published(&models.Product{ID: 13, ParentID: 1, Type: models.TypeVariation, Price: money("8"), StockStatus: models.StockOutOfStock})
	src.products[13].StockStatus = models.StockOutOfStock
	src.products[1].Price = money("10")

	settings := testSettings()
	settings.HideOutOfStock = true
	p := NewProjector(src, settings, Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"variations", "add_to_cart"}})
	require.NoError(t, err)

	var ids []uint
	for _, v := range view.Variations {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []uint{10, 11}, ids)
	assert.Equal(t, Pairs{{"attribute_pa_color", "red"}}, view.Variations[0].Attributes)

	assert.Equal(t, "Select options", view.AddToCart.Text)
	assert.True(t, view.AddToCart.HasOptions)
	assert.Nil(t, view.AddToCart.PurchaseQuantity)
	assert.Empty(t, view.AddToCart.RestURL)
}

func TestProductLinks(t *testing.T) {
	src := variableSource("10", "12")
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Namespace: "v1", Fields: []string{"id", "_links"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "_links"}, view.Keys())
	assert.Equal(t, "https://shop.test/api/v1/products/1", view.Links.Get("self")[0].Href)
	assert.Equal(t, "https://shop.test/shop/", view.Links.Get("collection")[0].Permalink)
	assert.Len(t, view.Links.Get("variations"), 2)
}

func TestSimpleAddToCart(t *testing.T) {
	stockQty := 3
	src := &fakeSource{products: map[uint]*models.Product{
		1: published(&models.Product{
			ID:            1,
			Type:          models.TypeSimple,
			Name:          "Mug",
			Price:         money("5"),
			ManageStock:   true,
			StockQuantity: &stockQty,
		}),
	}}
	p := NewProjector(src, testSettings(), Policies{
		AddToCartURL: func(url string, _ *models.Product) string { return url + "&source=feed" },
	})

	view, err := p.Product(context.Background(), src.products[1], Request{Namespace: "v2", Fields: []string{"add_to_cart"}})
	require.NoError(t, err)

	assert.Equal(t, "Add to cart", view.AddToCart.Text)
	assert.Equal(t, "Add “Mug” to your cart", view.AddToCart.Description)
	assert.True(t, view.AddToCart.IsPurchasable)
	require.NotNil(t, view.AddToCart.PurchaseQuantity)
	assert.Equal(t, PurchaseQuantity{MinPurchase: 1, MaxPurchase: 3}, *view.AddToCart.PurchaseQuantity)
	assert.Equal(t, "https://shop.test/api/v2/cart/add-item?id=1&quantity=1&source=feed", view.AddToCart.RestURL)
}

func TestConnectedProductsSkipMissing(t *testing.T) {
	src := &fakeSource{
		products: map[uint]*models.Product{
			1: published(&models.Product{ID: 1, Type: models.TypeSimple, Name: "Mug", Slug: "mug"}),
			2: published(&models.Product{ID: 2, Type: models.TypeSimple, Name: "Cup", Slug: "cup", Price: money("4.5")}),
		},
		related: []uint{2, 404},
	}
	p := NewProjector(src, testSettings(), Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Namespace: "v2", Fields: []string{"related"}})
	require.NoError(t, err)
	require.Len(t, view.Related, 1)

	body, err := json.Marshal(view.Related[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"Cup","permalink":"https://shop.test/product/cup/","price":4.50,
		"add_to_cart":{"text":"Add to cart","description":"Add “Cup” to your cart","rest_url":"https://shop.test/api/v2/cart/add-item?id=2&quantity=1"},
		"rest_url":"https://shop.test/api/v2/products/2"}`, string(body))
}

func TestConnectedProductsFollowTaxDisplay(t *testing.T) {
	src := &fakeSource{
		products: map[uint]*models.Product{
			1: published(&models.Product{ID: 1, Type: models.TypeSimple, Name: "Mug", Slug: "mug"}),
			2: published(&models.Product{ID: 2, Type: models.TypeSimple, Name: "Cup", Slug: "cup", Price: money("10")}),
		},
		related: []uint{2},
	}
	settings := testSettings()
	settings.Tax = pricing.NewCalculator(config.Store{
		TaxDisplayShop: pricing.DisplayExcl,
		TaxRates:       map[string]decimal.Decimal{"standard": decimal.NewFromInt(20)},
	})
	p := NewProjector(src, settings, Policies{})

	view, err := p.Product(context.Background(), src.products[1], Request{Fields: []string{"related"}, TaxDisplay: pricing.DisplayIncl})
	require.NoError(t, err)
	require.Len(t, view.Related, 1)

	got, err := json.Marshal(view.Related[0].Price)
	require.NoError(t, err)
	assert.JSONEq(t, `12`, string(got))
}

func TestRatedOutOf(t *testing.T) {
	prod := &models.Product{AverageRating: decimal.RequireFromString("4.5"), RatingCount: 2}
	assert.Equal(t, "Rated 4.50 out of 5 based on 2 customer ratings", ratedOutOf(prod))

	prod.RatingCount = 1
	assert.Equal(t, "Rated 4.50 out of 5 based on 1 customer rating", ratedOutOf(prod))

	prod.AverageRating = decimal.Zero
	assert.Equal(t, "", ratedOutOf(prod))
}

func TestPagination(t *testing.T) {
	query := url.Values{"orderby": {"price"}, "page": {"1"}}

	links := Paginate("https://shop.test/api/v2/products", query, Page{Current: 1, Total: 3})
	assert.Empty(t, links.Prev)
	assert.Equal(t, "https://shop.test/api/v2/products?orderby=price&page=2", links.Next)
	assert.Equal(t, `<https://shop.test/api/v2/products?orderby=price&page=2>; rel="next"`, links.Header())

	links = Paginate("https://shop.test/api/v2/products", url.Values{"page": {"7"}}, Page{Current: 7, Total: 3})
	assert.Equal(t, "https://shop.test/api/v2/products?page=3", links.Prev)
	assert.Empty(t, links.Next)
	assert.Len(t, links.Links(), 1)
}

func TestSubstituteRoute(t *testing.T) {
	got := SubstituteRoute("/products/:id/variations", map[string]string{"id": "42"})
	assert.Equal(t, "/products/42/variations", got)
}

func TestTermRoutes(t *testing.T) {
	routes := Routes{BaseURL: "https://shop.test/api", Namespace: "v2"}

	assert.Equal(t, "https://shop.test/api/v2/products/categories/4", routes.Term(models.TaxonomyCategory, 4))
	assert.Equal(t, "https://shop.test/api/v2/products/tags/5", routes.Term(models.TaxonomyTag, 5))
	assert.Empty(t, routes.Term("pa_color", 6))
	assert.Equal(t, "https://shop.test/api/v2/products/attributes/3/terms/6", routes.AttributeTerm(3, 6))
}
