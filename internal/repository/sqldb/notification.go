package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rush-skills/plane/internal/model"
	"github.com/rush-skills/plane/internal/repository"
)

const notificationColumns = `
	id, workspace_id, project_id, data, entity_identifier, entity_name,
	title, message, message_html, message_stripped, sender, triggered_by_id,
	receiver_id, read_at, snoozed_till, archived_at, created_at, updated_at`

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) FindMany(ctx context.Context, filter *model.NotificationFilter) ([]*model.Notification, error) {
	if filter.RestrictEntities && len(filter.EntityIDs) == 0 {
		return []*model.Notification{}, nil
	}

	conditions := []string{"workspace_id = ?", "receiver_id = ?"}
	args := []interface{}{filter.WorkspaceID, filter.ReceiverID}

	switch filter.Snoozed {
	case model.BoolFalse:
		conditions = append(conditions, "(snoozed_till IS NULL OR snoozed_till >= ?)")
		args = append(args, filter.Now.UTC())
	case model.BoolTrue:
		if filter.SnoozePolicy == model.SnoozeStrict {
			conditions = append(conditions, "(snoozed_till IS NOT NULL AND snoozed_till < ?)")
			args = append(args, filter.Now.UTC())
		}
	}

	conditions = appendNullable(conditions, "read_at", filter.Read)
	conditions = appendNullable(conditions, "archived_at", filter.Archived)

	if filter.RestrictEntities {
		conditions = append(conditions, "entity_identifier IN (?)")
		args = append(args, filter.EntityIDs)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY %s`,
		notificationColumns,
		strings.Join(conditions, " AND "),
		filter.Order.SQL(),
	)

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand notification query: %w", err)
	}

	notifications := []*model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, r.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func appendNullable(conditions []string, column string, b model.BoolFilter) []string {
	switch b {
	case model.BoolTrue:
		return append(conditions, column+" IS NOT NULL")
	case model.BoolFalse:
		return append(conditions, column+" IS NULL")
	default:
		return conditions
	}
}

func (r *notificationRepository) FindOne(ctx context.Context, id, workspaceID, receiverID uuid.UUID) (*model.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE id = ? AND workspace_id = ? AND receiver_id = ?`,
		notificationColumns,
	)

	var notification model.Notification
	err := r.db.GetContext(ctx, &notification, r.rebind(query), id, workspaceID, receiverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// Save persists the mutable state timestamps of an existing notification
func (r *notificationRepository) Save(ctx context.Context, notification *model.Notification) error {
	query := `
		UPDATE notifications
		SET read_at = ?, snoozed_till = ?, archived_at = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ? AND receiver_id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		nullTime(notification.ReadAt),
		nullTime(notification.SnoozedTill),
		nullTime(notification.ArchivedAt),
		notification.UpdatedAt.UTC(),
		notification.ID,
		notification.WorkspaceID,
		notification.ReceiverID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Create inserts a notification. The feed never creates notifications itself;
// fan-out writers and fixtures do.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()

	query := fmt.Sprintf(`
		INSERT INTO notifications (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notificationColumns,
	)

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		n.ID,
		n.WorkspaceID,
		n.ProjectID,
		n.Data,
		n.EntityIdentifier,
		n.EntityName,
		n.Title,
		n.Message,
		n.MessageHTML,
		n.MessageStripped,
		n.Sender,
		n.TriggeredByID,
		n.ReceiverID,
		nullTime(n.ReadAt),
		nullTime(n.SnoozedTill),
		nullTime(n.ArchivedAt),
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// nullTime binds t in UTC. sqlite stores times as text, so comparisons and
// ordering are only correct when every value carries the same offset.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
