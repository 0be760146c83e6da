package service

import (
	"context"

	"github.com/rs/zerolog"

	apperrors "storerating/internal/errors"
	"storerating/internal/metrics"
	"storerating/internal/model"
	"storerating/internal/repository"
)

// RatingService handles rating submission and edits.
type RatingService interface {
	SubmitRating(ctx context.Context, author *model.User, storeID uint, value int) (*model.Rating, error)
	UpdateRating(ctx context.Context, author *model.User, ratingID uint, value int) (*model.Rating, error)
	ListForStore(ctx context.Context, storeID uint) ([]model.Rating, error)
}

type ratingService struct {
	ratings repository.RatingRepository
	stores  repository.StoreRepository
	log     zerolog.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(ratings repository.RatingRepository, stores repository.StoreRepository, log zerolog.Logger) RatingService {
	return &ratingService{ratings: ratings, stores: stores, log: log}
}

func validateRatingValue(value int) error {
	if value < model.MinRating || value > model.MaxRating {
		return apperrors.NewValidationError("Rating must be between 1 and 5")
	}
	return nil
}

// SubmitRating records the author's first rating for a store. A second
// submission for the same store fails with ErrAlreadyRated.
func (s *ratingService) SubmitRating(ctx context.Context, author *model.User, storeID uint, value int) (*model.Rating, error) {
	if author == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	rating := &model.Rating{UserID: author.ID, StoreID: storeID, Rating: value}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	metrics.RecordRating("create")
	s.log.Info().
		Uint("rating_id", rating.ID).
		Uint("store_id", storeID).
		Uint("user_id", author.ID).
		Int("rating", value).
		Msg("rating submitted")
	return rating, nil
}

// UpdateRating changes the value of a rating. Only its author may do so,
// and authorship is checked before the new value.
func (s *ratingService) UpdateRating(ctx context.Context, author *model.User, ratingID uint, value int) (*model.Rating, error) {
	if author == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	existing, err := s.ratings.FindByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != author.ID {
		return nil, apperrors.ErrNotRatingAuthor
	}
	if err := validateRatingValue(value); err != nil {
		return nil, err
	}

	updated, err := s.ratings.UpdateValue(ctx, ratingID, value)
	if err != nil {
		return nil, err
	}
	metrics.RecordRating("update")
	s.log.Debug().Uint("rating_id", ratingID).Int("rating", value).Msg("rating updated")
	return updated, nil
}

// ListForStore returns the ratings of an existing store, newest first.
func (s *ratingService) ListForStore(ctx context.Context, storeID uint) ([]model.Rating, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.ratings.ListForStore(ctx, storeID)
}
