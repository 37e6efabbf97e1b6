package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schema is written for postgres; columnTypes rewrites it for other drivers
var schema = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspaces(id),
		name TEXT NOT NULL DEFAULT '',
		created_by_id UUID,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS issue_assignees (
		issue_id UUID NOT NULL REFERENCES issues(id),
		assignee_id UUID NOT NULL,
		workspace_id UUID NOT NULL,
		PRIMARY KEY (issue_id, assignee_id)
	)`,
	`CREATE TABLE IF NOT EXISTS issue_subscribers (
		issue_id UUID NOT NULL REFERENCES issues(id),
		subscriber_id UUID NOT NULL,
		workspace_id UUID NOT NULL,
		PRIMARY KEY (issue_id, subscriber_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		workspace_id UUID NOT NULL REFERENCES workspaces(id),
		project_id UUID,
		data JSONB,
		entity_identifier UUID,
		entity_name TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		message JSONB,
		message_html TEXT NOT NULL DEFAULT '<p></p>',
		message_stripped TEXT,
		sender TEXT NOT NULL DEFAULT '',
		triggered_by_id UUID,
		receiver_id UUID NOT NULL,
		read_at TIMESTAMPTZ,
		snoozed_till TIMESTAMPTZ,
		archived_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_feed
		ON notifications (workspace_id, receiver_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_issue_subscribers_subscriber
		ON issue_subscribers (workspace_id, subscriber_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issue_assignees_assignee
		ON issue_assignees (workspace_id, assignee_id)`,
}

// modernc/sqlite only decodes columns declared TIMESTAMP, DATETIME or DATE as time.Time
var sqliteTypes = strings.NewReplacer(
	"TIMESTAMPTZ", "TIMESTAMP",
	"JSONB", "TEXT",
	"UUID", "TEXT",
)

func columnTypes(driver, stmt string) string {
	if driver == DriverSQLite {
		return sqliteTypes.Replace(stmt)
	}
	return stmt
}

// EnsureSchema creates the tables the notification feed reads from when they do not exist yet
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	base := NewBaseRepository(db)
	return base.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, columnTypes(db.DriverName(), stmt)); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
