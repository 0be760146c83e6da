package model

import "time"

// Store is a rateable business. Stores are created by admins only.
type Store struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null;index"`
	Address   string    `json:"address" gorm:"size:400;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// StoreRatingStats aggregates the ratings of a single store.
// AverageRating is 0 for a store nobody has rated.
type StoreRatingStats struct {
	AverageRating float64 `json:"averageRating"`
	RatingCount   int64   `json:"ratingCount"`
}

// EnrichedStore is a store listing row with its aggregate and, for a signed
// in viewer, the viewer's own rating.
type EnrichedStore struct {
	Store
	StoreRatingStats
	MyRating *int `json:"myRating,omitempty"`
}

// StoreDetail is a single store with its aggregate and every rating.
type StoreDetail struct {
	Store
	StoreRatingStats
	Ratings []Rating `json:"ratings"`
}
