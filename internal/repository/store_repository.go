package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
)

// StoreRepository defines store persistence and rating aggregate queries.
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	FindByID(ctx context.Context, id uint) (*model.Store, error)
	List(ctx context.Context, search string) ([]model.Store, error)
	ListWithRatings(ctx context.Context, search string, viewerID *uint) ([]model.EnrichedStore, error)
	RatingStats(ctx context.Context, storeID uint) (model.StoreRatingStats, error)
	Count(ctx context.Context) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository.
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create creates a new store.
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

// FindByID finds a store by ID.
func (r *storeRepository) FindByID(ctx context.Context, id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}
	return &store, nil
}

// List lists stores whose name or address contains search.
func (r *storeRepository) List(ctx context.Context, search string) ([]model.Store, error) {
	q := r.db.WithContext(ctx).Model(&model.Store{})
	if search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)
	}

	stores := make([]model.Store, 0)
	if err := q.Order("id").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

// ListWithRatings lists stores with their rating aggregate in one query.
// When viewerID is set, each row also carries that user's own rating.
func (r *storeRepository) ListWithRatings(ctx context.Context, search string, viewerID *uint) ([]model.EnrichedStore, error) {
	columns := "stores.id, stores.name, stores.address, stores.created_at"
	selects := columns + ", COALESCE(AVG(r.rating), 0) AS average_rating, COUNT(r.id) AS rating_count"
	groupBy := columns

	q := r.db.WithContext(ctx).Table("stores").
		Joins("LEFT JOIN ratings r ON r.store_id = stores.id")
	if viewerID != nil {
		selects += ", mine.rating AS my_rating"
		groupBy += ", mine.rating"
		q = q.Joins("LEFT JOIN ratings mine ON mine.store_id = stores.id AND mine.user_id = ?", *viewerID)
	}
	if search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(stores.name) LIKE ? OR LOWER(stores.address) LIKE ?", pattern, pattern)
	}

	rows := make([]model.EnrichedStore, 0)
	if err := q.Select(selects).Group(groupBy).Order("stores.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stores with ratings: %w", err)
	}
	return rows, nil
}

// RatingStats returns the average and count of a store's ratings.
func (r *storeRepository) RatingStats(ctx context.Context, storeID uint) (model.StoreRatingStats, error) {
	var stats model.StoreRatingStats
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS rating_count").
		Where("store_id = ?", storeID).
		Scan(&stats).Error
	if err != nil {
		return model.StoreRatingStats{}, fmt.Errorf("store rating stats: %w", err)
	}
	return stats, nil
}

// Count returns the number of stores.
func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Store{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count stores: %w", err)
	}
	return n, nil
}
