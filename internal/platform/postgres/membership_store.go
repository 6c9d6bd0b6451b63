package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/store"
)

// MembershipStore implements store.MembershipStore using PostgreSQL.
// Membership rows are written by the main application; this service only
// reads them at dispatch time.
type MembershipStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMembershipStore creates a PostgreSQL implementation of
// store.MembershipStore.
func NewMembershipStore(db store.DBTX, logger *slog.Logger) *MembershipStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MembershipStore{
		db:     db,
		logger: logger.With(slog.String("component", "membership_store")),
	}
}

var _ store.MembershipStore = (*MembershipStore)(nil)

// ListProjectMembers implements store.MembershipStore.ListProjectMembers.
// Members whose preference is "none" are filtered out here so the dispatcher
// never sees them.
func (s *MembershipStore) ListProjectMembers(
	ctx context.Context,
	projectID uuid.UUID,
) ([]domain.ProjectMember, error) {
	const query = `
		SELECT u.id, u.notification_preference
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1 AND u.notification_preference <> 'none'`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var members []domain.ProjectMember
	for rows.Next() {
		var (
			m    domain.ProjectMember
			pref string
		)
		if err := rows.Scan(&m.UserID, &pref); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		m.Preference = domain.DeliveryPreference(pref)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate project members: %w", err)
	}

	return members, nil
}
