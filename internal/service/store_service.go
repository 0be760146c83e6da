package service

import (
	"context"

	"github.com/rs/zerolog"

	"storerating/internal/model"
	"storerating/internal/repository"
)

// StoreService exposes store catalog operations.
type StoreService interface {
	CreateStore(ctx context.Context, name, address string) (*model.Store, error)
	ListStores(ctx context.Context, search string, viewer *model.User) ([]model.EnrichedStore, error)
	GetStore(ctx context.Context, id uint) (*model.StoreDetail, error)
}

type storeService struct {
	stores  repository.StoreRepository
	ratings repository.RatingRepository
	log     zerolog.Logger
}

// NewStoreService creates a new store service.
func NewStoreService(stores repository.StoreRepository, ratings repository.RatingRepository, log zerolog.Logger) StoreService {
	return &storeService{stores: stores, ratings: ratings, log: log}
}

func (s *storeService) CreateStore(ctx context.Context, name, address string) (*model.Store, error) {
	store := &model.Store{Name: name, Address: address}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	s.log.Info().Uint("store_id", store.ID).Str("name", store.Name).Msg("store created")
	return store, nil
}

// ListStores returns every matching store with its average rating. MyRating
// is filled only for a viewer who rated the store.
func (s *storeService) ListStores(ctx context.Context, search string, viewer *model.User) ([]model.EnrichedStore, error) {
	var viewerID *uint
	if viewer != nil {
		id := viewer.ID
		viewerID = &id
	}
	return s.stores.ListWithRatings(ctx, search, viewerID)
}

func (s *storeService) GetStore(ctx context.Context, id uint) (*model.StoreDetail, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.stores.RatingStats(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.ListForStore(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.StoreDetail{
		Store:            *store,
		StoreRatingStats: stats,
		Ratings:          ratings,
	}, nil
}
