// Package main provides CLI for workspace management.
// Usage: workspace create --slug acme --name "ACME Corp"
//        workspace list
//        workspace migrate --all
//        workspace suspend <workspace-id>
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"fakturo/internal/core/workspace"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		createWorkspace(ctx)
	case "list":
		listWorkspaces(ctx)
	case "migrate":
		migrateWorkspaces(ctx)
	case "suspend":
		suspendWorkspace(ctx)
	case "activate":
		activateWorkspace(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Fakturo Workspace Management CLI

Usage:
  workspace <command> [options]

Commands:
  create    Create a new workspace
  list      List all workspaces
  migrate   Run migrations for workspace(s)
  suspend   Suspend a workspace
  activate  Activate a suspended workspace
  help      Show this help

Environment Variables:
  META_DATABASE_URL       Connection string for meta database (required)
  WORKSPACE_DB_USER       Username for workspace databases (required)
  WORKSPACE_DB_PASSWORD   Password for workspace databases (required)
  POSTGRES_ADMIN_URL      Admin connection for creating databases

Examples:
  workspace create --slug acme --name "ACME Corporation"
  workspace list
  workspace migrate --all
  workspace migrate --id <workspace-uuid>
  workspace suspend <workspace-uuid>
  workspace activate <workspace-uuid>`)
}

func getMetaPool(ctx context.Context) *pgxpool.Pool {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		fmt.Println("Error: META_DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		fmt.Printf("Error connecting to meta database: %v\n", err)
		os.Exit(1)
	}

	return pool
}

func createWorkspace(ctx context.Context) {
	var slug, name, plan string

	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--slug":
			if i+1 < len(os.Args) {
				slug = os.Args[i+1]
				i++
			}
		case "--name":
			if i+1 < len(os.Args) {
				name = os.Args[i+1]
				i++
			}
		case "--plan":
			if i+1 < len(os.Args) {
				plan = os.Args[i+1]
				i++
			}
		}
	}

	if slug == "" || name == "" {
		fmt.Println("Error: --slug and --name are required")
		fmt.Println("Usage: workspace create --slug <slug> --name <name> [--plan standard|premium]")
		os.Exit(1)
	}

	if plan == "" {
		plan = "standard"
	}

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := workspace.NewPostgresRegistry(metaPool)

	dbName := "fk_" + strings.ToLower(slug)

	fmt.Printf("Creating workspace '%s'...\n", slug)

	// 1. Create database
	adminDSN := os.Getenv("POSTGRES_ADMIN_URL")
	if adminDSN == "" {
		// Try to construct from META_DATABASE_URL
		adminDSN = os.Getenv("META_DATABASE_URL")
		adminDSN = strings.Replace(adminDSN, "/fakturo_meta", "/postgres", 1)
	}

	if adminDSN != "" {
		fmt.Printf("  Creating database %s...\n", dbName)
		adminPool, err := pgxpool.New(ctx, adminDSN)
		if err != nil {
			fmt.Printf("  Warning: Could not connect as admin: %v\n", err)
			fmt.Println("  You may need to create the database manually.")
		} else {
			defer adminPool.Close()
			_, err = adminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
			if err != nil {
				if strings.Contains(err.Error(), "already exists") {
					fmt.Println("  Database already exists")
				} else {
					fmt.Printf("  Warning: Could not create database: %v\n", err)
				}
			} else {
				fmt.Println("  Database created")
			}
		}
	}

	// 2. Run migrations
	dbUser := os.Getenv("WORKSPACE_DB_USER")
	dbPassword := os.Getenv("WORKSPACE_DB_PASSWORD")
	if dbUser != "" && dbPassword != "" {
		fmt.Println("  Running migrations...")
		workspaceDSN := fmt.Sprintf("postgres://%s:%s@localhost:5432/%s?sslmode=disable",
			dbUser, dbPassword, dbName)

		cmd := exec.Command("goose", "-dir", "db/migrations", "postgres", workspaceDSN, "up")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Printf("  Warning: Migrations failed: %v\n", err)
			fmt.Println("  You may need to run migrations manually.")
		} else {
			fmt.Println("  Migrations completed")
		}
	}

	// 3. Register in meta database
	fmt.Println("  Registering workspace...")

	w := &workspace.Workspace{
		Slug:        slug,
		DisplayName: name,
		DBName:      dbName,
		DBHost:      "localhost",
		DBPort:      5432,
		Status:      workspace.StatusActive,
		Plan:        workspace.Plan(plan),
	}

	if err := registry.Create(ctx, w); err != nil {
		fmt.Printf("Error registering workspace: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✓ Workspace '%s' created successfully!\n", slug)
	fmt.Printf("  Workspace ID: %s\n", w.ID)
	fmt.Printf("  Database: %s\n", dbName)
	fmt.Printf("  Status: active\n")
	fmt.Printf("  Plan: %s\n", plan)
}

func listWorkspaces(ctx context.Context) {
	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := workspace.NewPostgresRegistry(metaPool)
	workspaces, err := registry.ListAll(ctx)
	if err != nil {
		fmt.Printf("Error listing workspaces: %v\n", err)
		os.Exit(1)
	}

	if len(workspaces) == 0 {
		fmt.Println("No workspaces found")
		return
	}

	fmt.Printf("%-36s %-20s %-30s %-15s %-12s %-10s\n", "WORKSPACE_ID", "SLUG", "NAME", "DATABASE", "PLAN", "STATUS")
	fmt.Println(strings.Repeat("-", 135))

	for _, w := range workspaces {
		fmt.Printf("%-36s %-20s %-30s %-15s %-12s %-10s\n",
			truncate(w.ID, 36),
			truncate(w.Slug, 20),
			truncate(w.DisplayName, 30),
			truncate(w.DBName, 15),
			w.Plan,
			w.Status,
		)
	}
}

func migrateWorkspaces(ctx context.Context) {
	var targetID string
	var all bool

	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--id":
			if i+1 < len(os.Args) {
				targetID = os.Args[i+1]
				i++
			}
		case "--all":
			all = true
		}
	}

	if !all && targetID == "" {
		fmt.Println("Error: specify --id <workspace-uuid> or --all")
		os.Exit(1)
	}

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := workspace.NewPostgresRegistry(metaPool)

	var workspaces []*workspace.Workspace
	var err error

	if all {
		workspaces, err = registry.ListActive(ctx)
	} else {
		w, e := registry.GetByID(ctx, targetID)
		if e != nil {
			fmt.Printf("Error: workspace '%s' not found\n", targetID)
			os.Exit(1)
		}
		workspaces = []*workspace.Workspace{w}
		err = e
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	dbUser := os.Getenv("WORKSPACE_DB_USER")
	dbPassword := os.Getenv("WORKSPACE_DB_PASSWORD")

	if dbUser == "" || dbPassword == "" {
		fmt.Println("Error: WORKSPACE_DB_USER and WORKSPACE_DB_PASSWORD are required")
		os.Exit(1)
	}

	for _, w := range workspaces {
		fmt.Printf("Migrating %s (%s)...\n", w.Slug, w.DBName)

		dsn := w.DSN(dbUser, dbPassword)
		cmd := exec.Command("goose", "-dir", "db/migrations", "postgres", dsn, "up")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			fmt.Printf("  ✗ Failed: %v\n", err)
		} else {
			fmt.Printf("  ✓ Done\n")
		}
	}
}

func suspendWorkspace(ctx context.Context) {
	if len(os.Args) < 3 {
		fmt.Println("Usage: workspace suspend <workspace-uuid>")
		os.Exit(1)
	}

	workspaceID := os.Args[2]

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := workspace.NewPostgresRegistry(metaPool)
	if err := registry.UpdateStatusByID(ctx, workspaceID, workspace.StatusSuspended); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Workspace '%s' suspended\n", workspaceID)
}

func activateWorkspace(ctx context.Context) {
	if len(os.Args) < 3 {
		fmt.Println("Usage: workspace activate <workspace-uuid>")
		os.Exit(1)
	}

	workspaceID := os.Args[2]

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := workspace.NewPostgresRegistry(metaPool)
	if err := registry.UpdateStatusByID(ctx, workspaceID, workspace.StatusActive); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Workspace '%s' activated\n", workspaceID)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
