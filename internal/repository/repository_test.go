package repository

import (
	"context"
	"testing"
	"time"

	"catalogapi/internal/database"
	"catalogapi/internal/models"
	"catalogapi/internal/query"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New("sqlite://file::memory:", database.Options{Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

type seeded struct {
	shirt    *models.Product
	hoodie   *models.Product
	hidden   *models.Product
	variable *models.Product
	red      *models.Product
	blue     *models.Product
}

func seedCatalog(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	ctx := context.Background()
	w := NewWriter(db)
	clothing := models.Term{Taxonomy: models.TaxonomyCategory, Name: "Clothing", Slug: "clothing"}
	music := models.Term{Taxonomy: models.TaxonomyCategory, Name: "Music", Slug: "music"}
	sale := models.Term{Taxonomy: models.TaxonomyTag, Name: "Sale", Slug: "sale"}

	require.NoError(t, w.SaveAttributeTaxonomy(ctx, &models.AttributeTaxonomy{Name: "color", Label: "Color"}))

	s := seeded{
		shirt: &models.Product{
			Type: models.TypeSimple, Status: models.StatusPublish, Name: "T-Shirt", SKU: "TS-1",
			RegularPrice: price("20"), SalePrice: price("15"), Price: price("15"),
			StockStatus: models.StockInStock, CatalogVisibility: "visible", Featured: true,
			CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		hoodie: &models.Product{
			Type: models.TypeSimple, Status: models.StatusPublish, Name: "Hoodie", SKU: "HD-1",
			RegularPrice: price("45"), Price: price("45"),
			StockStatus: models.StockOutOfStock, CatalogVisibility: "visible",
			CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		hidden: &models.Product{
			Type: models.TypeSimple, Status: models.StatusPublish, Name: "Secret", SKU: "A,B",
			RegularPrice: price("5"), Price: price("5"),
			StockStatus: models.StockInStock, CatalogVisibility: "hidden",
			CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		variable: &models.Product{
			Type: models.TypeVariable, Status: models.StatusPublish, Name: "Album",
			Price: price("10"), StockStatus: models.StockInStock, CatalogVisibility: "visible",
			CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Attributes: []models.ProductAttribute{{Name: "pa_color", IsTaxonomy: true, IsVariation: true, IsVisible: true}},
		},
	}

	require.NoError(t, w.SaveProduct(ctx, s.shirt, []models.Term{clothing, sale}))
	require.NoError(t, w.SaveProduct(ctx, s.hoodie, []models.Term{clothing}))
	require.NoError(t, w.SaveProduct(ctx, s.hidden, []models.Term{music}))
	require.NoError(t, w.SaveProduct(ctx, s.variable, []models.Term{
		music,
		{Taxonomy: "pa_color", Name: "Red", Slug: "red"},
		{Taxonomy: "pa_color", Name: "Blue", Slug: "blue"},
	}))

	s.red = &models.Product{
		Type: models.TypeVariation, Status: models.StatusPublish, ParentID: s.variable.ID, Name: "Album - Red",
		RegularPrice: price("12"), SalePrice: price("10"), Price: price("10"), StockStatus: models.StockInStock,
		VariationAttributes: []models.VariationAttribute{{Name: "pa_color", Value: "red"}},
	}
	s.blue = &models.Product{
		Type: models.TypeVariation, Status: models.StatusPublish, ParentID: s.variable.ID, Name: "Album - Blue",
		RegularPrice: price("12"), Price: price("12"), StockStatus: models.StockInStock, SKU: "AL-B",
		VariationAttributes: []models.VariationAttribute{{Name: "pa_color", Value: "blue"}},
	}
	require.NoError(t, w.SaveProduct(ctx, s.red, nil))
	require.NoError(t, w.SaveProduct(ctx, s.blue, nil))
	return s
}

func ids(products []*models.Product) []uint {
	out := make([]uint, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func translate(t *testing.T, repo *ProductRepository, raw map[string]interface{}) query.Args {
	t.Helper()
	params, err := query.Decode(raw)
	require.NoError(t, err)
	names, err := repo.AttributeTaxonomyNames(context.Background())
	require.NoError(t, err)
	args, err := query.Translate(params, query.Store{
		DefaultOrderBy:           "date",
		DefaultOrder:             "DESC",
		DefaultPerPage:           10,
		DefaultCatalogVisibility: "visible",
		AttributeTaxonomies:      names,
		OnSaleIDs:                func() ([]uint, error) { return repo.OnSaleIDs(context.Background()) },
	}, query.Policies{})
	require.NoError(t, err)
	return args
}

func TestQueryDefaultListing(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)

	result, err := repo.Query(context.Background(), translate(t, repo, map[string]interface{}{}))
	require.NoError(t, err)

	// Hidden products and variations are left out; newest first.
	assert.Equal(t, []uint{s.variable.ID, s.hoodie.ID, s.shirt.ID}, ids(result.Products))
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 1, result.Pages)
}

func TestQueryFilters(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)

	tests := []struct {
		name string
		raw  map[string]interface{}
		want []uint
	}{
		{"category slug", map[string]interface{}{"category": "clothing", "orderby": "id", "order": "asc"}, []uint{s.shirt.ID, s.hoodie.ID}},
		{"category not in", map[string]interface{}{"category": "clothing", "category_operator": "not_in"}, []uint{s.variable.ID}},
		{"tag", map[string]interface{}{"tag": "sale"}, []uint{s.shirt.ID}},
		{"price asc", map[string]interface{}{"orderby": "price_asc"}, []uint{s.variable.ID, s.shirt.ID, s.hoodie.ID}},
		{"price range", map[string]interface{}{"min_price": "11", "max_price": "20"}, []uint{s.shirt.ID}},
		{"in stock", map[string]interface{}{"stock_status": "true", "orderby": "id", "order": "asc"}, []uint{s.shirt.ID, s.variable.ID}},
		{"featured", map[string]interface{}{"featured": "true"}, []uint{s.shirt.ID}},
		{"on sale", map[string]interface{}{"on_sale": "true", "orderby": "id", "order": "asc"}, []uint{s.shirt.ID, s.variable.ID}},
		{"not on sale", map[string]interface{}{"on_sale": "false"}, []uint{s.hoodie.ID}},
		{"hidden", map[string]interface{}{"catalog_visibility": "hidden"}, []uint{s.hidden.ID}},
		{"sku quirk", map[string]interface{}{"sku": "A,B", "catalog_visibility": "hidden"}, []uint{s.hidden.ID}},
		{"sku variation", map[string]interface{}{"sku": "AL-B"}, []uint{s.blue.ID}},
		{"search", map[string]interface{}{"search": "hood"}, []uint{s.hoodie.ID}},
		{"attribute", map[string]interface{}{"attributes": []interface{}{map[string]interface{}{"attribute": "pa_color", "slug": "red"}}}, []uint{s.variable.ID}},
		{"include order", map[string]interface{}{"include": "2,1", "orderby": "include"}, []uint{s.hoodie.ID, s.shirt.ID}},
		{"variations as products", map[string]interface{}{"include_variations": "true", "orderby": "id", "order": "asc"}, []uint{s.shirt.ID, s.hoodie.ID, s.red.ID, s.blue.ID}},
		{"type variation", map[string]interface{}{"type": "variation", "orderby": "id", "order": "asc"}, []uint{s.red.ID, s.blue.ID}},
		{"type grouped", map[string]interface{}{"type": "grouped"}, []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.Query(context.Background(), translate(t, repo, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(result.Products))
		})
	}
}

func TestQueryOnSaleWithNoSalesReturnsNothing(t *testing.T) {
	db := newTestDB(t)
	w := NewWriter(db)
	require.NoError(t, w.SaveProduct(context.Background(), &models.Product{
		Type: models.TypeSimple, Status: models.StatusPublish, Name: "Plain",
		RegularPrice: price("9"), Price: price("9"), CatalogVisibility: "visible",
	}, nil))
	repo := NewProductRepository(db, nil)

	result, err := repo.Query(context.Background(), translate(t, repo, map[string]interface{}{"on_sale": "true"}))
	require.NoError(t, err)
	assert.Empty(t, result.Products)
	assert.Equal(t, int64(0), result.Total)
}

func TestQueryPagination(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewProductRepository(db, nil)

	result, err := repo.Query(context.Background(), translate(t, repo, map[string]interface{}{"per_page": "2", "page": "2"}))
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.Pages)
}

func TestLookups(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)
	ctx := context.Background()

	id, err := repo.IDBySKU(ctx, "HD-1")
	require.NoError(t, err)
	assert.Equal(t, s.hoodie.ID, id)

	_, err = repo.IDBySKU(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err = repo.IDBySlug(ctx, "t-shirt")
	require.NoError(t, err)
	assert.Equal(t, s.shirt.ID, id)

	children, err := repo.Children(ctx, s.variable.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{s.red.ID, s.blue.ID}, ids(children))
	require.Len(t, children[0].VariationAttributes, 1)
	assert.Equal(t, "red", children[0].VariationAttributes[0].Value)

	products, err := repo.Products(ctx, []uint{s.hoodie.ID, 999, s.shirt.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{s.hoodie.ID, s.shirt.ID}, ids(products))

	terms, err := repo.ProductTerms(ctx, s.shirt.ID, models.TaxonomyCategory)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "clothing", terms[0].Slug)

	attr, err := repo.AttributeTaxonomyByName(ctx, "pa_color")
	require.NoError(t, err)
	assert.Equal(t, "Color", attr.Label)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOnSaleIDsIncludesParents(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)

	onSale, err := repo.OnSaleIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{s.shirt.ID, s.variable.ID, s.red.ID}, onSale)
}

func TestRelatedIDs(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)

	related, err := repo.RelatedIDs(context.Background(), s.shirt, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{s.hoodie.ID}, related)

	related, err = repo.RelatedIDs(context.Background(), s.red, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint{s.hidden.ID}, related)
}

func TestWriterSyncsVisibilityTerms(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	repo := NewProductRepository(db, nil)
	ctx := context.Background()

	visibility, err := repo.ProductTerms(ctx, s.hidden.ID, models.TaxonomyVisibility)
	require.NoError(t, err)
	var names []string
	for _, term := range visibility {
		names = append(names, term.Name)
	}
	assert.Equal(t, []string{models.VisibilityExcludeFromCatalog, models.VisibilityExcludeFromSearch}, names)

	// Re-saving with other terms replaces the old assignment and recounts.
	s.hoodie.Featured = true
	require.NoError(t, NewWriter(db).SaveProduct(ctx, s.hoodie, []models.Term{{Taxonomy: models.TaxonomyTag, Name: "Sale", Slug: "sale"}}))

	categories, err := repo.ProductTerms(ctx, s.hoodie.ID, models.TaxonomyCategory)
	require.NoError(t, err)
	assert.Empty(t, categories)

	tag, err := repo.TermBySlug(ctx, models.TaxonomyTag, "sale")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.Count)

	clothing, err := repo.TermBySlug(ctx, models.TaxonomyCategory, "clothing")
	require.NoError(t, err)
	assert.Equal(t, 1, clothing.Count)

	featured, err := repo.ProductTerms(ctx, s.hoodie.ID, models.TaxonomyVisibility)
	require.NoError(t, err)
	assert.Len(t, featured, 2)
}

func TestDeleteProductRemovesVariations(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	ctx := context.Background()

	deleted, err := NewWriter(db).DeleteProduct(ctx, s.variable.ID)
	require.NoError(t, err)
	assert.Equal(t, "Album", deleted.Name)

	repo := NewProductRepository(db, nil)
	_, err = repo.Get(ctx, s.red.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	music, err := repo.TermBySlug(ctx, models.TaxonomyCategory, "music")
	require.NoError(t, err)
	assert.Equal(t, 1, music.Count)

	_, err = NewWriter(db).DeleteProduct(ctx, s.variable.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTermRepository(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	terms := NewTermRepository(db, nil)
	ctx := context.Background()

	page, err := terms.List(ctx, TermQuery{Taxonomy: models.TaxonomyCategory, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Terms, 1)
	assert.Equal(t, "Clothing", page.Terms[0].Name)

	all, err := terms.All(ctx, "pa_color")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Blue", all[0].Name)

	ok, err := terms.TaxonomyExists(ctx, "pa_color")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = terms.TaxonomyExists(ctx, "pa_size")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = terms.Get(ctx, models.TaxonomyTag, all[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReviewUpdatesRatings(t *testing.T) {
	db := newTestDB(t)
	s := seedCatalog(t, db)
	w := NewWriter(db)
	ctx := context.Background()

	require.NoError(t, w.SaveReview(ctx, &models.Review{ProductID: s.shirt.ID, Reviewer: "Sam", Content: "Great", Rating: 5, Status: "approved"}))
	require.NoError(t, w.SaveReview(ctx, &models.Review{ProductID: s.shirt.ID, Reviewer: "Kim", Content: "Fine", Rating: 4, Status: "approved"}))
	require.NoError(t, w.SaveReview(ctx, &models.Review{ProductID: s.shirt.ID, Reviewer: "Spam", Content: "Buy", Rating: 1, Status: "spam"}))

	repo := NewProductRepository(db, nil)
	shirt, err := repo.Get(ctx, s.shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, shirt.ReviewCount)
	assert.True(t, decimal.RequireFromString("4.5").Equal(shirt.AverageRating))

	reviews, err := NewReviewRepository(db).List(ctx, ReviewQuery{ProductID: []uint{s.shirt.ID}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), reviews.Total)

	result, err := repo.Query(ctx, translate(t, repo, map[string]interface{}{"rating": "5"}))
	require.NoError(t, err)
	assert.Equal(t, []uint{s.shirt.ID}, ids(result.Products))
}
