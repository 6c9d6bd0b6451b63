package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
)

// MembershipStore is the project-membership collaborator consumed by the
// dispatcher. Membership itself is owned by the main application; this
// service only reads it.
type MembershipStore interface {
	// ListProjectMembers returns the members of the given project whose
	// delivery preference is not "none". Iteration order is unspecified.
	ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMember, error)
}
