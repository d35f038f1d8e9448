package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalogapi/internal/logger"
)

const perPage = 100

// Client reads catalog data from a WooCommerce store over its REST API,
// authenticating with a consumer key and secret.
type Client struct {
	storeURL       string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *logger.Logger
}

func NewClient(storeURL, consumerKey, consumerSecret string, logger *logger.Logger) *Client {
	return &Client{
		storeURL:       strings.TrimRight(storeURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// get decodes one page of path into dest and returns the number of pages
// reported in X-WP-TotalPages.
func (c *Client) get(ctx context.Context, path string, query url.Values, dest interface{}) (int, error) {
	endpoint := c.storeURL + "/wp-json/wc/v3" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	pages, err := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
	if err != nil || pages < 1 {
		pages = 1
	}
	return pages, nil
}

func pageQuery(page int) url.Values {
	return url.Values{
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
}

// GetProducts fetches one page of products of any status.
func (c *Client) GetProducts(ctx context.Context, page int) ([]Product, int, error) {
	q := pageQuery(page)
	q.Set("status", "any")
	var products []Product
	pages, err := c.get(ctx, "/products", q, &products)
	if err != nil {
		return nil, 0, err
	}
	c.logger.Debug("Fetched %d products (page %d of %d)", len(products), page, pages)
	return products, pages, nil
}

// GetVariations fetches every variation of a variable product.
func (c *Client) GetVariations(ctx context.Context, productID uint) ([]Product, error) {
	var all []Product
	for page := 1; ; page++ {
		var variations []Product
		pages, err := c.get(ctx, fmt.Sprintf("/products/%d/variations", productID), pageQuery(page), &variations)
		if err != nil {
			return nil, err
		}
		all = append(all, variations...)
		if page >= pages {
			return all, nil
		}
	}
}

func (c *Client) GetAttributes(ctx context.Context) ([]AttributeTaxonomy, error) {
	var attrs []AttributeTaxonomy
	if _, err := c.get(ctx, "/products/attributes", nil, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// GetReviews fetches one page of approved reviews.
func (c *Client) GetReviews(ctx context.Context, page int) ([]Review, int, error) {
	q := pageQuery(page)
	q.Set("status", "approved")
	var reviews []Review
	pages, err := c.get(ctx, "/products/reviews", q, &reviews)
	if err != nil {
		return nil, 0, err
	}
	return reviews, pages, nil
}
