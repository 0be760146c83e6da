package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storerating/internal/auth"
	"storerating/internal/cache"
	"storerating/internal/db"
	apperrors "storerating/internal/errors"
	"storerating/internal/handler"
	"storerating/internal/model"
	"storerating/internal/repository"
	"storerating/internal/seed"
	"storerating/internal/service"
)

const (
	adminEmail    = "admin@system.com"
	adminPassword = "Admin123!"
)

type testServer struct {
	e     *echo.Echo
	users service.UserService
	redis *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gormDB, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cacheClient.Close() })

	log := zerolog.Nop()
	userRepo := repository.NewUserRepository(gormDB)
	storeRepo := repository.NewStoreRepository(gormDB)
	ratingRepo := repository.NewRatingRepository(gormDB)

	tokens := auth.NewTokenService("router-test-secret", auth.DefaultSessionTTL)
	sessions := auth.NewRedisSessionStore(cacheClient.Redis())

	userService := service.NewUserService(userRepo, cacheClient, log)
	authService := service.NewAuthService(userService, userRepo, tokens, sessions, log)
	storeService := service.NewStoreService(storeRepo, ratingRepo, log)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, log)
	statsService := service.NewStatsService(userRepo, storeRepo, ratingRepo)

	e := echo.New()
	Register(
		e,
		log,
		authService,
		handler.NewAuthHandler(authService, false),
		handler.NewAdminHandler(userService, statsService),
		handler.NewStoreHandler(storeService, ratingService),
		handler.NewRatingHandler(ratingService),
		handler.NewSeedHandler(seed.New(log, userRepo, storeRepo, userService, storeService)),
	)

	_, err = userService.CreateUser(context.Background(), service.NewUser{
		Email:    adminEmail,
		Password: adminPassword,
		Name:     "System Administrator Account",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)

	return &testServer{e: e, users: userService, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookieName)
	return nil
}

func (s *testServer) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func (s *testServer) createUser(t *testing.T, email string, role model.Role) *http.Cookie {
	t.Helper()
	_, err := s.users.CreateUser(context.Background(), service.NewUser{
		Email:    email,
		Password: "Password1!",
		Name:     "Integration Test Person",
		Role:     role,
	})
	require.NoError(t, err)
	return s.login(t, email, "Password1!")
}

func (s *testServer) createStore(t *testing.T, admin *http.Cookie, name, address string) model.Store {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/stores", map[string]string{"name": name, "address": address}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var store model.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &store))
	return store
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegister_ForcesUserRoleAndStartsSession(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/register", map[string]string{
		"email":    "mallory@example.com",
		"password": "Password1!",
		"name":     "Mallory Wants To Be Admin",
		"role":     "admin",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "PasswordHash")

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure)

	me := s.do(t, http.MethodGet, "/api/user", nil, cookie)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "mallory@example.com")
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{
			name:    "short password",
			body:    map[string]string{"email": "a@example.com", "password": "short1!", "name": "Long Enough Name For Rule"},
			message: "Password must be at least 8 characters",
		},
		{
			name:    "short name",
			body:    map[string]string{"email": "a@example.com", "password": "Password1!", "name": "Bob"},
			message: "Name must be at least 20 characters",
		},
		{
			name:    "bad email",
			body:    map[string]string{"email": "nope", "password": "Password1!", "name": "Long Enough Name For Rule"},
			message: "Invalid email address",
		},
		{
			name:    "missing email",
			body:    map[string]string{"password": "Password1!", "name": "Long Enough Name For Rule"},
			message: "Invalid email address",
		},
		{
			name:    "missing password",
			body:    map[string]string{"email": "a@example.com", "name": "Long Enough Name For Rule"},
			message: "Password must be at least 8 characters",
		},
		{
			name:    "missing name",
			body:    map[string]string{"email": "a@example.com", "password": "Password1!"},
			message: "Name must be at least 20 characters",
		},
		{
			name:    "duplicate email",
			body:    map[string]string{"email": adminEmail, "password": "Password1!", "name": "Long Enough Name For Rule"},
			message: "Email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec).Message)
		})
	}

	ok := s.do(t, http.MethodPost, "/api/register", map[string]string{
		"email": "b@example.com", "password": "Password1!", "name": "Long Enough Name For Rule",
	}, nil)
	assert.Equal(t, http.StatusCreated, ok.Code, ok.Body.String())
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t)

	bad := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": adminEmail, "password": "Wrong123!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, bad).Message)

	unknown := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ghost@example.com", "password": "Wrong123!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, unknown).Message)

	for _, body := range []map[string]string{
		{"email": "not-an-email", "password": "Wrong123!"},
		{"email": adminEmail},
		{},
	} {
		rec := s.do(t, http.MethodPost, "/api/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Equal(t, "Invalid email or password", decodeError(t, rec).Message)
	}

	cookie := s.login(t, adminEmail, adminPassword)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/user", nil, cookie).Code)

	out := s.do(t, http.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, out.Code)
	cleared := sessionCookie(t, out)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)

	after := s.do(t, http.MethodGet, "/api/user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, after.Code)

	anonymous := s.do(t, http.MethodPost, "/api/logout", nil, nil)
	assert.Equal(t, http.StatusOK, anonymous.Code)
}

func TestSessionExpiresWithRedisRecord(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, adminEmail, adminPassword)

	s.redis.FastForward(auth.DefaultSessionTTL + time.Minute)

	rec := s.do(t, http.MethodGet, "/api/user", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGates(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)
	user := s.createUser(t, "user@normal.com", model.RoleUser)
	owner := s.createUser(t, "owner@store.com", model.RoleStoreOwner)
	store := s.createStore(t, admin, "Fresh Foods Market", "202 Green Way")
	ratingsPath := fmt.Sprintf("/api/stores/%d/ratings", store.ID)

	tests := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		session *http.Cookie
		status  int
	}{
		{"stats anonymous", http.MethodGet, "/api/admin/stats", nil, nil, http.StatusUnauthorized},
		{"stats user", http.MethodGet, "/api/admin/stats", nil, user, http.StatusForbidden},
		{"stats owner", http.MethodGet, "/api/admin/stats", nil, owner, http.StatusForbidden},
		{"stats admin", http.MethodGet, "/api/admin/stats", nil, admin, http.StatusOK},
		{"users anonymous", http.MethodGet, "/api/admin/users", nil, nil, http.StatusUnauthorized},
		{"create store anonymous", http.MethodPost, "/api/stores", map[string]string{"name": "x", "address": "y"}, nil, http.StatusUnauthorized},
		{"create store user", http.MethodPost, "/api/stores", map[string]string{"name": "x", "address": "y"}, user, http.StatusForbidden},
		{"store ratings anonymous", http.MethodGet, ratingsPath, nil, nil, http.StatusUnauthorized},
		{"store ratings user", http.MethodGet, ratingsPath, nil, user, http.StatusForbidden},
		{"store ratings owner", http.MethodGet, ratingsPath, nil, owner, http.StatusOK},
		{"store ratings admin", http.MethodGet, ratingsPath, nil, admin, http.StatusOK},
		{"rate anonymous", http.MethodPost, "/api/ratings", map[string]int{"storeId": int(store.ID), "rating": 5}, nil, http.StatusUnauthorized},
		{"me anonymous", http.MethodGet, "/api/user", nil, nil, http.StatusUnauthorized},
		{"garbage cookie", http.MethodGet, "/api/user", nil, &http.Cookie{Name: auth.SessionCookieName, Value: "garbage"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body, tt.session)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminStatsAndUsers(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)
	s.createUser(t, "owner@store.com", model.RoleStoreOwner)
	s.createStore(t, admin, "Tech Gadgets Pro", "101 Silicon Valley")

	rec := s.do(t, http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalUsers":2,"totalStores":1,"totalRatings":0}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/admin/users?role=store_owner", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "owner@store.com", users[0].Email)

	rec = s.do(t, http.MethodGet, "/api/admin/users?search=SYSTEM", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, adminEmail, users[0].Email)

	rec = s.do(t, http.MethodGet, "/api/admin/users?role=root", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid role", decodeError(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/admin/users", map[string]string{
		"email": "newowner@store.com", "password": "Owner123!", "name": "Another Store Owner Name", "role": "store_owner",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.RoleStoreOwner, created.Role)
}

func TestStoreListingAndRatingFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)
	user := s.createUser(t, "user@normal.com", model.RoleUser)

	store := s.createStore(t, admin, "Tech Gadgets Pro", "101 Silicon Valley")

	rec := s.do(t, http.MethodGet, "/api/stores", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "Tech Gadgets Pro", listing[0]["name"])
	assert.Equal(t, float64(0), listing[0]["averageRating"])
	assert.NotContains(t, listing[0], "myRating")

	first := s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": int(store.ID), "rating": 5}, user)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	again := s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": int(store.ID), "rating": 3}, user)
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, "You have already rated this store", decodeError(t, again).Message)

	rec = s.do(t, http.MethodGet, "/api/stores", nil, user)
	require.Equal(t, http.StatusOK, rec.Code)
	var userListing []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &userListing))
	require.Len(t, userListing, 1)
	assert.Equal(t, float64(5), userListing[0]["averageRating"])
	assert.Equal(t, float64(5), userListing[0]["myRating"])

	rec = s.do(t, http.MethodGet, "/api/stores", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var adminListing []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &adminListing))
	require.Len(t, adminListing, 1)
	assert.Equal(t, float64(5), adminListing[0]["averageRating"])
	assert.NotContains(t, adminListing[0], "myRating")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/stores/%d", store.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.StoreDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.RatingCount)
	require.Len(t, detail.Ratings, 1)
	require.NotNil(t, detail.Ratings[0].User)
	assert.Equal(t, "user@normal.com", detail.Ratings[0].User.Email)
}

func TestRatingValidationAndMissingStore(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@normal.com", model.RoleUser)

	rec := s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": 999, "rating": 4}, user)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Store not found", decodeError(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": 1, "rating": 6}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Rating must be between 1 and 5", decodeError(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": 1, "rating": 0}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Rating must be between 1 and 5", decodeError(t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/stores/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/stores/42", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRatingUpdateOnlyByAuthor(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, adminEmail, adminPassword)
	author := s.createUser(t, "author@example.com", model.RoleUser)
	other := s.createUser(t, "other@example.com", model.RoleStoreOwner)
	store := s.createStore(t, admin, "Fresh Foods Market", "202 Green Way")

	rec := s.do(t, http.MethodPost, "/api/ratings", map[string]int{"storeId": int(store.ID), "rating": 2}, author)
	require.Equal(t, http.StatusCreated, rec.Code)
	var rating model.Rating
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rating))
	path := fmt.Sprintf("/api/ratings/%d", rating.ID)

	tests := []struct {
		name    string
		session *http.Cookie
		path    string
		value   int
		status  int
	}{
		{"anonymous", nil, path, 4, http.StatusUnauthorized},
		{"other user", other, path, 4, http.StatusForbidden},
		{"admin is not the author", admin, path, 4, http.StatusForbidden},
		{"missing rating", author, "/api/ratings/999", 4, http.StatusNotFound},
		{"out of range", author, path, 9, http.StatusBadRequest},
		{"author", author, path, 4, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPut, tt.path, map[string]int{"rating": tt.value}, tt.session)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/stores/%d", store.ID), nil, nil)
	var detail model.StoreDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, float64(4), detail.AverageRating)
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "user@normal.com", model.RoleUser)

	tests := []struct {
		name    string
		current string
		next    string
		status  int
		message string
	}{
		{"wrong current", "Nope1234!", "NewPass1!", http.StatusBadRequest, "Incorrect current password"},
		{"wrong current with empty new", "WRONG", "", http.StatusBadRequest, "Incorrect current password"},
		{"empty current", "", "NewPass1!", http.StatusBadRequest, "Incorrect current password"},
		{"weak new", "Password1!", "weakpass", http.StatusBadRequest, "Password does not meet complexity requirements"},
		{"empty new", "Password1!", "", http.StatusBadRequest, "Password does not meet complexity requirements"},
		{"success", "Password1!", "NewPass1!", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/user/password", map[string]string{
				"currentPassword": tt.current,
				"newPassword":     tt.next,
			}, user)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeError(t, rec).Message)
			}
		})
	}

	s.login(t, "user@normal.com", "NewPass1!")
	rec := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "user@normal.com", "password": "Password1!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestSeedFillsOnlyEmptyTables(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/seed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Seed completed","users":0,"stores":2}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/stores?search=green", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing []model.EnrichedStore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, "Fresh Foods Market", listing[0].Name)
}
