package workspace

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry provides access to workspace metadata stored in the meta-database.
type Registry interface {
	// GetByID retrieves workspace by UUID string.
	GetByID(ctx context.Context, workspaceID string) (*Workspace, error)

	// ListActive returns all active workspaces.
	ListActive(ctx context.Context) ([]*Workspace, error)

	// ListAll returns all workspaces.
	ListAll(ctx context.Context) ([]*Workspace, error)

	// Create inserts a new workspace row and populates w.ID.
	Create(ctx context.Context, w *Workspace) error

	// UpdateStatusByID updates workspace status by UUID string.
	UpdateStatusByID(ctx context.Context, workspaceID string, status Status) error
}

// PostgresRegistry implements Registry using the meta-database.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) GetByID(ctx context.Context, workspaceID string) (*Workspace, error) {
	var w Workspace
	err := pgxscan.Get(ctx, r.pool, &w, `
		SELECT id, slug, display_name, db_name, db_host, db_port,
		       status, plan, created_at, updated_at, settings
		FROM workspaces
		WHERE id = $1
	`, workspaceID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("get workspace by id: %w", err)
	}
	return &w, nil
}

func (r *PostgresRegistry) ListActive(ctx context.Context) ([]*Workspace, error) {
	var workspaces []*Workspace
	err := pgxscan.Select(ctx, r.pool, &workspaces, `
		SELECT id, slug, display_name, db_name, db_host, db_port,
		       status, plan, created_at, updated_at, settings
		FROM workspaces
		WHERE status = $1
		ORDER BY slug
	`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *PostgresRegistry) ListAll(ctx context.Context) ([]*Workspace, error) {
	var workspaces []*Workspace
	err := pgxscan.Select(ctx, r.pool, &workspaces, `
		SELECT id, slug, display_name, db_name, db_host, db_port,
		       status, plan, created_at, updated_at, settings
		FROM workspaces
		ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, w *Workspace) error {
	if w == nil {
		return fmt.Errorf("workspace is nil")
	}
	if w.Status == "" {
		w.Status = StatusActive
	}
	if w.Plan == "" {
		w.Plan = PlanFree
	}
	if w.Settings == nil {
		w.Settings = map[string]any{}
	}

	// Return generated UUID.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO workspaces (slug, display_name, db_name, db_host, db_port, status, plan, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, w.Slug, w.DisplayName, w.DBName, w.DBHost, w.DBPort, w.Status, w.Plan, w.Settings).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) UpdateStatusByID(ctx context.Context, workspaceID string, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workspaces
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, workspaceID, status)
	if err != nil {
		return fmt.Errorf("update workspace status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

var _ Registry = (*PostgresRegistry)(nil)
