package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/store"
)

// UserStore implements the store.UserStore interface using a PostgreSQL
// database as the storage backend.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a new PostgreSQL implementation of the UserStore
// interface. It accepts a database connection that should be initialized and
// managed by the caller.
func NewUserStore(db store.DBTX) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO users (id, email, name, hashed_password, notification_preference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.HashedPassword,
		string(user.Preference), user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
		SELECT id, email, name, hashed_password, notification_preference, created_at
		FROM users
		WHERE id = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, email, name, hashed_password, notification_preference, created_at
		FROM users
		WHERE email = $1`

	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *UserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u    domain.User
		pref string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.HashedPassword, &pref, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.Preference = domain.DeliveryPreference(pref)
	return &u, nil
}
