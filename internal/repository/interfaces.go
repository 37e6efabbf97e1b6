package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rush-skills/plane/internal/model"
)

// ErrNotFound is returned when a scoped lookup matches no row
var ErrNotFound = errors.New("record not found")

// All repository interfaces in one file
type (
	// NotificationRepository is the notification store
	NotificationRepository interface {
		FindMany(ctx context.Context, filter *model.NotificationFilter) ([]*model.Notification, error)
		FindOne(ctx context.Context, id, workspaceID, receiverID uuid.UUID) (*model.Notification, error)
		Save(ctx context.Context, notification *model.Notification) error
		Create(ctx context.Context, notification *model.Notification) error
	}

	// MembershipRepository resolves the issues a user is related to inside a workspace
	MembershipRepository interface {
		IssueIDsWatchedBy(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error)
		IssueIDsAssignedTo(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error)
		IssueIDsCreatedBy(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error)
	}

	WorkspaceRepository interface {
		GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)
		Create(ctx context.Context, workspace *model.Workspace) error
	}
)
