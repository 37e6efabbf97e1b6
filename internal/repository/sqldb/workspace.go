package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rush-skills/plane/internal/model"
	"github.com/rush-skills/plane/internal/repository"
)

type workspaceRepository struct {
	BaseRepository
}

func NewWorkspaceRepository(base BaseRepository) repository.WorkspaceRepository {
	return &workspaceRepository{base}
}

func (r *workspaceRepository) GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, r.rebind(`SELECT id FROM workspaces WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, repository.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return id, nil
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *model.Workspace) error {
	if workspace.ID == uuid.Nil {
		workspace.ID = uuid.New()
	}
	if workspace.CreatedAt.IsZero() {
		workspace.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO workspaces (id, slug, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.rebind(query),
		workspace.ID,
		workspace.Slug,
		workspace.Name,
		workspace.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}
