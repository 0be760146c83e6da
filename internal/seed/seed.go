package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"storerating/internal/model"
	"storerating/internal/repository"
	"storerating/internal/service"
)

// Users are created only when the users table is empty.
var Users = []service.NewUser{
	{Email: "admin@system.com", Password: "Admin123!", Name: "System Administrator", Address: "Admin HQ", Role: model.RoleAdmin},
	{Email: "owner@store.com", Password: "Owner123!", Name: "John Storeowner Account", Address: "123 Market St", Role: model.RoleStoreOwner},
	{Email: "user@normal.com", Password: "User123!", Name: "Alice Normaluser Account", Address: "456 Resident Ave", Role: model.RoleUser},
}

// Stores are created only when the stores table is empty.
var Stores = []model.Store{
	{Name: "Tech Gadgets Pro", Address: "101 Silicon Valley"},
	{Name: "Fresh Foods Market", Address: "202 Green Way"},
}

// Result counts what a Run created.
type Result struct {
	Users  int
	Stores int
}

// Seeder inserts the demo users and stores.
type Seeder struct {
	log       zerolog.Logger
	userRepo  repository.UserRepository
	storeRepo repository.StoreRepository
	users     service.UserService
	stores    service.StoreService
}

// New creates a Seeder.
func New(
	log zerolog.Logger,
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	users service.UserService,
	stores service.StoreService,
) *Seeder {
	return &Seeder{log: log, userRepo: userRepo, storeRepo: storeRepo, users: users, stores: stores}
}

// Run fills whichever of the users and stores tables is empty.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return res, err
	}
	if n == 0 {
		for _, u := range Users {
			if _, err := s.users.CreateUser(ctx, u); err != nil {
				return res, fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			res.Users++
		}
	} else {
		s.log.Info().Int64("existing", n).Msg("users present, skipping user seed")
	}

	n, err = s.storeRepo.Count(ctx)
	if err != nil {
		return res, err
	}
	if n == 0 {
		for _, st := range Stores {
			if _, err := s.stores.CreateStore(ctx, st.Name, st.Address); err != nil {
				return res, fmt.Errorf("seed store %s: %w", st.Name, err)
			}
			res.Stores++
		}
	} else {
		s.log.Info().Int64("existing", n).Msg("stores present, skipping store seed")
	}

	return res, nil
}
