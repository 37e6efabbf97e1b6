package sqldb

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rush-skills/plane/internal/repository"
)

type membershipRepository struct {
	BaseRepository
}

func NewMembershipRepository(base BaseRepository) repository.MembershipRepository {
	return &membershipRepository{base}
}

func (r *membershipRepository) IssueIDsWatchedBy(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT issue_id
		FROM issue_subscribers
		WHERE workspace_id = ? AND subscriber_id = ?
	`
	return r.selectIDs(ctx, "subscribed", query, workspaceID, userID)
}

func (r *membershipRepository) IssueIDsAssignedTo(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT issue_id
		FROM issue_assignees
		WHERE workspace_id = ? AND assignee_id = ?
	`
	return r.selectIDs(ctx, "assigned", query, workspaceID, userID)
}

func (r *membershipRepository) IssueIDsCreatedBy(ctx context.Context, workspaceID, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM issues
		WHERE workspace_id = ? AND created_by_id = ?
	`
	return r.selectIDs(ctx, "created", query, workspaceID, userID)
}

func (r *membershipRepository) selectIDs(ctx context.Context, relation, query string, args ...interface{}) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, r.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list %s issues: %w", relation, err)
	}
	return ids, nil
}
