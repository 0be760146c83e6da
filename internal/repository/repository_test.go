package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storerating/internal/db"
	"storerating/internal/model"
)

// newTestDB opens a migrated in-memory sqlite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func seedUser(t *testing.T, repo UserRepository, email, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "hash.salt",
		Name:         name,
		Address:      "1 Test Street",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedStore(t *testing.T, repo StoreRepository, name, address string) *model.Store {
	t.Helper()
	s := &model.Store{Name: name, Address: address}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func seedRating(t *testing.T, repo RatingRepository, userID, storeID uint, value int, createdAt time.Time) *model.Rating {
	t.Helper()
	r := &model.Rating{UserID: userID, StoreID: storeID, Rating: value, CreatedAt: createdAt}
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}
