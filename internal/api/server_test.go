package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/logger"
	"catalogapi/internal/models"
	"catalogapi/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

type fixture struct {
	handler  http.Handler
	shirt    *models.Product
	hoodie   *models.Product
	album    *models.Product
	red      *models.Product
	blue     *models.Product
	colorID  uint
	reviewID uint
}

func testConfig() *config.Config {
	return &config.Config{
		APIBaseURL: "http://shop.test/api",
		Version:    "4.0.0-test",
		Env:        "test",
		Store: config.Store{
			SiteURL:                  "http://shop.test",
			Timezone:                 "UTC",
			CurrencyCode:             "USD",
			CurrencyDecimals:         2,
			TaxDisplayShop:           "excl",
			DefaultOrderBy:           "date",
			DefaultOrder:             "DESC",
			DefaultPerPage:           10,
			DefaultCatalogVisibility: "visible",
			ImageSizes:               []string{"thumbnail", "full"},
			RelatedLimit:             3,
		},
	}
}

func newFixture(t *testing.T, cfg *config.Config) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.New("sqlite://file::memory:", database.Options{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := repository.NewWriter(db.DB)
	clothing := models.Term{Taxonomy: models.TaxonomyCategory, Name: "Clothing", Slug: "clothing"}
	music := models.Term{Taxonomy: models.TaxonomyCategory, Name: "Music", Slug: "music"}

	color := &models.AttributeTaxonomy{Name: "color", Label: "Color"}
	require.NoError(t, w.SaveAttributeTaxonomy(ctx, color))

	f := fixture{
		shirt: &models.Product{
			Type: models.TypeSimple, Status: models.StatusPublish, Name: "T-Shirt", SKU: "TS-1",
			RegularPrice: price("20"), SalePrice: price("15"), Price: price("15"),
			StockStatus: models.StockInStock, CatalogVisibility: "visible",
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		hoodie: &models.Product{
			Type: models.TypeSimple, Status: models.StatusPublish, Name: "Hoodie", SKU: "HD-1",
			RegularPrice: price("45"), Price: price("45"),
			StockStatus: models.StockInStock, CatalogVisibility: "visible",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		album: &models.Product{
			Type: models.TypeVariable, Status: models.StatusPublish, Name: "Album",
			Price: price("10"), StockStatus: models.StockInStock, CatalogVisibility: "visible",
			CreatedAt:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Attributes: []models.ProductAttribute{{Name: "pa_color", IsTaxonomy: true, IsVariation: true, IsVisible: true}},
		},
		colorID: color.ID,
	}
	require.NoError(t, w.SaveProduct(ctx, f.shirt, []models.Term{clothing}))
	require.NoError(t, w.SaveProduct(ctx, f.hoodie, []models.Term{clothing}))
	require.NoError(t, w.SaveProduct(ctx, f.album, []models.Term{
		music,
		{Taxonomy: "pa_color", Name: "Red", Slug: "red"},
		{Taxonomy: "pa_color", Name: "Blue", Slug: "blue"},
	}))

	f.red = &models.Product{
		Type: models.TypeVariation, Status: models.StatusPublish, ParentID: f.album.ID, Name: "Album - Red",
		RegularPrice: price("12"), Price: price("12"), StockStatus: models.StockInStock, CatalogVisibility: "visible",
		VariationAttributes: []models.VariationAttribute{{Name: "pa_color", Value: "red"}},
	}
	f.blue = &models.Product{
		Type: models.TypeVariation, Status: models.StatusPublish, ParentID: f.album.ID, Name: "Album - Blue",
		RegularPrice: price("14"), Price: price("14"), StockStatus: models.StockInStock, CatalogVisibility: "visible",
		VariationAttributes: []models.VariationAttribute{{Name: "pa_color", Value: "blue"}},
	}
	require.NoError(t, w.SaveProduct(ctx, f.red, nil))
	require.NoError(t, w.SaveProduct(ctx, f.blue, nil))

	review := &models.Review{ProductID: f.shirt.ID, Reviewer: "Ana", Content: "Soft", Rating: 5, Status: "approved"}
	require.NoError(t, w.SaveReview(ctx, review))
	f.reviewID = review.ID

	f.handler = New(cfg, logger.New("error"), db, nil, Extensions{}).Handler()
	return f
}

func (f fixture) get(t *testing.T, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, code, body["code"])
	assert.Equal(t, float64(status), body["data"].(map[string]interface{})["status"])
}

func TestListProductsV2(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, "/api/v2/products?per_page=2")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "3", rec.Header().Get("X-WP-Total"))
	assert.Equal(t, "2", rec.Header().Get("X-WP-TotalPages"))
	assert.Equal(t, `<http://shop.test/api/v2/products?page=2&per_page=2>; rel="next"`, rec.Header().Get("Link"))
	assert.Equal(t, "4.0.0-test", rec.Header().Get("Catalog-Version"))
	assert.NotEmpty(t, rec.Header().Get("Catalog-Timestamp"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode[struct {
		Products []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"products"`
		Categories    []map[string]interface{} `json:"categories"`
		Page          int                      `json:"page"`
		TotalPages    int                      `json:"total_pages"`
		TotalProducts int                      `json:"total_products"`
	}](t, rec)

	require.Len(t, body.Products, 2)
	assert.Equal(t, f.album.ID, body.Products[0].ID)
	assert.Equal(t, f.hoodie.ID, body.Products[1].ID)
	assert.Len(t, body.Categories, 2)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 3, body.TotalProducts)
}

func TestListProductsPastLastPage(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, "/api/v2/products?per_page=2&page=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<http://shop.test/api/v2/products?page=2&per_page=2>; rel="prev"`, rec.Header().Get("Link"))
}

func TestListProductsV1SelectsFields(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, "/api/v1/products?fields=id,name")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Catalog-Version"))

	products := decode[[]map[string]interface{}](t, rec)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.Len(t, p, 2)
		assert.Contains(t, p, "id")
		assert.Contains(t, p, "name")
	}
}

func TestListProductsRejectsBadPrice(t *testing.T) {
	f := newFixture(t, testConfig())

	assertError(t, f.get(t, "/api/v2/products?min_price=cheap"), http.StatusBadRequest, "catalog_rest_invalid_param")
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t, testConfig())

	tests := []struct {
		name string
		path string
		want uint
	}{
		{"by id", fmt.Sprintf("/api/v2/products/%d", f.shirt.ID), f.shirt.ID},
		{"by sku", "/api/v2/products/HD-1", f.hoodie.ID},
		{"by slug", "/api/v2/products/t-shirt", f.shirt.ID},
		{"variation by id", fmt.Sprintf("/api/v1/products/%d", f.red.ID), f.red.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.get(t, tt.path)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode[map[string]interface{}](t, rec)
			assert.Equal(t, float64(tt.want), body["id"])
		})
	}

	variation := decode[map[string]interface{}](t, f.get(t, fmt.Sprintf("/api/v1/products/%d", f.red.ID)))
	assert.NotContains(t, variation, "type")
	assert.NotContains(t, variation, "related")
}

func TestGetProductFailures(t *testing.T) {
	f := newFixture(t, testConfig())

	assertError(t, f.get(t, "/api/v2/products/no-such-thing"), http.StatusNotFound, "catalog_unknown_product_id")
	assertError(t, f.get(t, "/api/v2/products/9999"), http.StatusNotFound, "catalog_product_invalid_id")
}

func TestVariations(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, fmt.Sprintf("/api/v1/products/%d/variations", f.album.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-WP-Total"))
	list := decode[[]map[string]interface{}](t, rec)
	require.Len(t, list, 2)
	// menu order ties fall back to the name
	assert.Equal(t, float64(f.blue.ID), list[0]["id"])

	rec = f.get(t, fmt.Sprintf("/api/v1/products/%d/variations/%d", f.album.ID, f.blue.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "4.0.0-test", rec.Header().Get("Catalog-Version"))
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(f.blue.ID), body["id"])
	assert.Equal(t, float64(f.album.ID), body["parent_id"])
}

func TestVariationPagingLinksKeepParent(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, fmt.Sprintf("/api/v2/products/%d/variations?per_page=1", f.album.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-WP-TotalPages"))
	assert.Equal(t,
		fmt.Sprintf(`<http://shop.test/api/v2/products/%d/variations?page=2&per_page=1>; rel="next"`, f.album.ID),
		rec.Header().Get("Link"))
}

func TestVariationMembership(t *testing.T) {
	f := newFixture(t, testConfig())

	assertError(t, f.get(t, fmt.Sprintf("/api/v2/products/%d/variations/%d", f.shirt.ID, f.red.ID)),
		http.StatusNotFound, "catalog_product_variation_invalid_id")
	assertError(t, f.get(t, fmt.Sprintf("/api/v2/products/%d/variations/9999", f.album.ID)),
		http.StatusNotFound, "catalog_unknown_product_id")
	assertError(t, f.get(t, fmt.Sprintf("/api/v2/products/%d/variations/%d", f.album.ID, f.shirt.ID)),
		http.StatusNotFound, "catalog_unknown_product_id")
}

func TestCategoriesAndTags(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, "/api/v2/products/categories")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-WP-Total"))
	cats := decode[[]map[string]interface{}](t, rec)
	require.Len(t, cats, 2)
	assert.Equal(t, "Clothing", cats[0]["name"])
	assert.Equal(t, float64(2), cats[0]["count"])

	id := uint(cats[1]["id"].(float64))
	rec = f.get(t, fmt.Sprintf("/api/v2/products/categories/%d", id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "music", decode[map[string]interface{}](t, rec)["slug"])

	assertError(t, f.get(t, fmt.Sprintf("/api/v2/products/tags/%d", id)), http.StatusNotFound, "catalog_term_invalid")

	tags := decode[[]map[string]interface{}](t, f.get(t, "/api/v2/products/tags"))
	assert.Empty(t, tags)
}

func TestAttributes(t *testing.T) {
	f := newFixture(t, testConfig())

	attrs := decode[[]map[string]interface{}](t, f.get(t, "/api/v2/products/attributes"))
	require.Len(t, attrs, 1)
	assert.Equal(t, "pa_color", attrs[0]["slug"])
	assert.Equal(t, "Color", attrs[0]["name"])

	rec := f.get(t, fmt.Sprintf("/api/v2/products/attributes/%d/terms?orderby=slug", f.colorID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	terms := decode[[]map[string]interface{}](t, rec)
	require.Len(t, terms, 2)
	assert.Equal(t, "blue", terms[0]["slug"])

	termID := uint(terms[1]["id"].(float64))
	term := decode[map[string]interface{}](t, f.get(t, fmt.Sprintf("/api/v2/products/attributes/%d/terms/%d", f.colorID, termID)))
	assert.Equal(t, "Red", term["name"])

	assertError(t, f.get(t, "/api/v2/products/attributes/999"), http.StatusNotFound, "catalog_attribute_invalid_id")
	assertError(t, f.get(t, "/api/v2/products/attributes/999/terms"), http.StatusNotFound, "catalog_taxonomy_invalid")
	assertError(t, f.get(t, fmt.Sprintf("/api/v2/products/attributes/%d/terms/9999", f.colorID)),
		http.StatusNotFound, "catalog_term_invalid")
}

func TestReviews(t *testing.T) {
	f := newFixture(t, testConfig())

	rec := f.get(t, fmt.Sprintf("/api/v2/products/reviews?product=%d", f.shirt.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviews := decode[[]map[string]interface{}](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Ana", reviews[0]["reviewer"])
	assert.NotContains(t, reviews[0], "reviewer_email")

	assert.Equal(t, http.StatusOK, f.get(t, fmt.Sprintf("/api/v2/products/reviews/%d", f.reviewID)).Code)
	assertError(t, f.get(t, "/api/v2/products/reviews/999"), http.StatusNotFound, "catalog_review_invalid_id")
}

func TestAPIKeyGuardsSecondaryRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "s3cret"
	f := newFixture(t, cfg)

	assertError(t, f.get(t, "/api/v2/products/categories"), http.StatusForbidden, "catalog_api_permission_denied")
	assertError(t, f.get(t, "/api/v2/products/categories", "X-API-Key", "wrong"), http.StatusForbidden, "catalog_api_permission_denied")
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v2/products/categories", "X-API-Key", "s3cret").Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v2/products/attributes", "Authorization", "Bearer s3cret").Code)

	assert.Equal(t, http.StatusOK, f.get(t, "/api/v2/products").Code)
	assert.Equal(t, http.StatusOK, f.get(t, "/api/v2/products/TS-1").Code)
}

func TestUnknownRouteAndHealth(t *testing.T) {
	f := newFixture(t, testConfig())

	assertError(t, f.get(t, "/api/v3/products"), http.StatusNotFound, "catalog_rest_no_route")

	rec := f.get(t, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]interface{}](t, rec)["status"])
}
