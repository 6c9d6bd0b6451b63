package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/service/auth"
	"github.com/taskflow/notify/internal/store"
)

// mockUserStore implements store.UserStore with overridable behavior.
type mockUserStore struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

const testJWTSecret = "test-secret-key-at-least-32-bytes-long"

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	jwtService, err := auth.NewJWTService(testJWTSecret, 0)
	require.NoError(t, err)

	hashed, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	user := &domain.User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		Name:           "Alice",
		HashedPassword: hashed,
		Preference:     domain.PreferenceBoth,
	}

	users := &mockUserStore{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, store.ErrUserNotFound
		},
	}
	handler := NewAuthHandler(users, jwtService, testLogger())

	login := func(body string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		handler.Login(rr, req)
		return rr
	}

	t.Run("issues token for valid credentials", func(t *testing.T) {
		t.Parallel()

		rr := login(`{"email":"alice@example.com","password":"correct horse battery staple"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp LoginResponse
		require.NoError(t, decodeBody(rr, &resp))
		require.NotEmpty(t, resp.Token)

		gotUserID, err := jwtService.ValidateToken(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, gotUserID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		t.Parallel()

		rr := login(`{"email":"alice@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email gets the same response as wrong password", func(t *testing.T) {
		t.Parallel()

		wrongPassword := login(`{"email":"alice@example.com","password":"wrong"}`)
		unknownEmail := login(`{"email":"nobody@example.com","password":"whatever"}`)

		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		rr := login(`{not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		t.Parallel()

		rr := login(`{"email":"alice@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid email format", func(t *testing.T) {
		t.Parallel()

		rr := login(`{"email":"not-an-email","password":"whatever"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
