package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"catalogapi/internal/models"

	"gorm.io/gorm"
)

type ReviewQuery struct {
	Page      int
	PerPage   int
	Order     string
	OrderBy   string
	ProductID []uint
	Include   []uint
	Exclude   []uint
	Search    string
}

type ReviewPage struct {
	Reviews []models.Review
	Total   int64
	Pages   int
}

var reviewOrderColumns = map[string]string{
	"date":     "created_at",
	"date_gmt": "created_at",
	"id":       "id",
	"include":  "id",
	"product":  "product_id",
	"rating":   "rating",
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// List returns approved reviews.
func (r *ReviewRepository) List(ctx context.Context, q ReviewQuery) (*ReviewPage, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("reviews.status = ?", "approved")
		if len(q.ProductID) > 0 {
			db = db.Where("reviews.product_id IN ?", q.ProductID)
		}
		if len(q.Include) > 0 {
			db = db.Where("reviews.id IN ?", q.Include)
		}
		if len(q.Exclude) > 0 {
			db = db.Where("reviews.id NOT IN ?", q.Exclude)
		}
		if q.Search != "" {
			like := "%" + strings.ToLower(q.Search) + "%"
			db = db.Where("(LOWER(reviews.content) LIKE ? OR LOWER(reviews.reviewer) LIKE ?)", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	column, ok := reviewOrderColumns[strings.ToLower(q.OrderBy)]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		order = "ASC"
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 10
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Scopes(filter).
		Order(fmt.Sprintf("reviews.%s %s, reviews.id %s", column, order, order)).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return &ReviewPage{
		Reviews: reviews,
		Total:   total,
		Pages:   int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// Get returns an approved review.
func (r *ReviewRepository) Get(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("status = ?", "approved").First(&review, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch review %d: %w", id, err)
	}
	return &review, nil
}
