package service

import (
	"context"

	"storerating/internal/repository"
)

// Stats are the dashboard totals shown to admins.
type Stats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

// StatsService computes admin dashboard totals.
type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type statsService struct {
	users   repository.UserRepository
	stores  repository.StoreRepository
	ratings repository.RatingRepository
}

// NewStatsService creates a new stats service.
func NewStatsService(users repository.UserRepository, stores repository.StoreRepository, ratings repository.RatingRepository) StatsService {
	return &statsService{users: users, stores: stores, ratings: ratings}
}

func (s *statsService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.stores.Count(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalUsers: users, TotalStores: stores, TotalRatings: ratings}, nil
}
