// Package workspace provides multi-workspace database management.
// Every workspace owns an isolated PostgreSQL database; invoices, parties
// and products of different workspaces never share tables.
package workspace

import (
	"fmt"
	"strings"
	"time"
)

// Status represents workspace lifecycle state.
type Status string

const (
	// StatusActive - workspace can accept requests
	StatusActive Status = "active"

	// StatusSuspended - workspace is temporarily disabled (e.g., billing issues)
	StatusSuspended Status = "suspended"

	// StatusDeleted - workspace is marked for deletion
	StatusDeleted Status = "deleted"
)

// Plan represents workspace subscription plan.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Workspace represents a workspace record from the meta-database.
type Workspace struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`         // URL-safe identifier
	DisplayName string         `db:"display_name"` // Human-readable name
	DBName      string         `db:"db_name"`      // Database name
	DBHost      string         `db:"db_host"`      // Database host
	DBPort      int            `db:"db_port"`      // Database port
	Status      Status         `db:"status"`
	Plan        Plan           `db:"plan"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Settings    map[string]any `db:"settings"` // Additional settings (JSONB)
}

// IsActive returns true if the workspace can accept requests.
func (w *Workspace) IsActive() bool {
	return w.Status == StatusActive
}

// DSN builds a PostgreSQL connection string for this workspace's database.
func (w *Workspace) DSN(user, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user, password, w.DBHost, w.DBPort, w.DBName,
	)
}

// DSNWithSSL builds a PostgreSQL connection string with SSL enabled.
func (w *Workspace) DSNWithSSL(user, password, sslMode string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, w.DBHost, w.DBPort, w.DBName, sslMode,
	)
}

// CreateWorkspaceInput contains data for provisioning a new workspace.
type CreateWorkspaceInput struct {
	Slug        string
	DisplayName string
	Plan        Plan
	DBHost      string // Optional, defaults to localhost
	DBPort      int    // Optional, defaults to 5432
}

// Validate checks if input is valid.
func (i *CreateWorkspaceInput) Validate() error {
	if i.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	i.Slug = strings.ToLower(i.Slug)
	if len(i.Slug) > 63 {
		return fmt.Errorf("slug must be 63 characters or less")
	}
	if i.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	return nil
}

// GenerateDBName creates database name from slug.
// Format: ws_<slug>
func (i *CreateWorkspaceInput) GenerateDBName() string {
	return "ws_" + i.Slug
}
