package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/store"
)

// Default and maximum caps for notification listing.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// NotificationStore implements store.NotificationStore using PostgreSQL.
type NotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewNotificationStore creates a PostgreSQL implementation of
// store.NotificationStore. The database handle must be initialized and
// managed by the caller. If logger is nil, the default logger is used.
func NewNotificationStore(db store.DBTX, logger *slog.Logger) *NotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	const query = `
		INSERT INTO notifications (id, user_id, title, message, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID implements store.NotificationStore.GetByID.
func (s *NotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	const query = `
		SELECT id, user_id, title, message, type, read, created_at
		FROM notifications
		WHERE id = $1`

	n, err := scanNotification(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// ListByUser implements store.NotificationStore.ListByUser.
func (s *NotificationStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	unreadOnly bool,
	limit int,
) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, user_id, title, message, type, read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	notifications := make([]*domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead implements store.NotificationStore.MarkRead.
//
// The read flag is monotonic: the statement only flips false to true, and an
// ownership mismatch simply matches zero rows rather than erroring.
func (s *NotificationStore) MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	const query = `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

// MarkAllRead implements store.NotificationStore.MarkAllRead.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
		UPDATE notifications
		SET read = TRUE
		WHERE user_id = $1 AND read = FALSE`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

// CountUnread implements store.NotificationStore.CountUnread.
func (s *NotificationStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read = FALSE`

	var count int64
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	var (
		n        domain.Notification
		typeName string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typeName, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(typeName)
	return &n, nil
}
