package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
)

// RatingRepository defines rating persistence operations.
type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	UpdateValue(ctx context.Context, id uint, value int) (*model.Rating, error)
	FindByID(ctx context.Context, id uint) (*model.Rating, error)
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error)
	ListForStore(ctx context.Context, storeID uint) ([]model.Rating, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create inserts a rating. The unique (user_id, store_id) index turns a
// second rating by the same user into ErrAlreadyRated.
func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	if err := r.db.WithContext(ctx).Omit("User", "Store").Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyRated
		}
		return fmt.Errorf("create rating: %w", err)
	}
	return nil
}

// UpdateValue sets the value of a rating and returns the updated row.
func (r *ratingRepository) UpdateValue(ctx context.Context, id uint, value int) (*model.Rating, error) {
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("id = ?", id).
		Update("rating", value).Error
	if err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByID finds a rating by ID.
func (r *ratingRepository) FindByID(ctx context.Context, id uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRatingNotFound
		}
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return &rating, nil
}

// FindByUserAndStore returns the rating a user gave a store.
func (r *ratingRepository) FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRatingNotFound
		}
		return nil, fmt.Errorf("find rating for user and store: %w", err)
	}
	return &rating, nil
}

// ListForStore returns a store's ratings with their authors, newest first.
func (r *ratingRepository) ListForStore(ctx context.Context, storeID uint) ([]model.Rating, error) {
	ratings := make([]model.Rating, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings for store: %w", err)
	}
	return ratings, nil
}

// Count returns the number of ratings.
func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Rating{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return n, nil
}
