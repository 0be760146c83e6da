package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's 1-5 star score for one store.
// The (user_id, store_id) pair is unique.
type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_ratings_user_store"`
	StoreID   uint      `json:"storeId" gorm:"not null;uniqueIndex:idx_ratings_user_store;index"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Store *Store `json:"-" gorm:"foreignKey:StoreID"`
}
