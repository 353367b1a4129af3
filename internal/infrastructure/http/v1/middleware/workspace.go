package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/workspace"
	"fakturo/internal/infrastructure/storage/postgres"
	"fakturo/pkg/logger"
)

// WorkspaceHeader is the HTTP header for workspace identification.
const WorkspaceHeader = "X-Workspace-ID"

// WorkspaceDB middleware resolves the workspace from the header and
// injects its database pool into context. Must run before any database
// operations.
//
// Flow:
// 1. Extract workspace UUID from X-Workspace-ID header
// 2. Get pool from workspace.Manager
// 3. Create TxManager for this request
// 4. Inject pool, TxManager, and Workspace into context
func WorkspaceDB(manager *workspace.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rawWorkspaceID := c.GetHeader(WorkspaceHeader)
		if rawWorkspaceID == "" {
			_ = c.Error(
				apperror.NewValidation("workspace is required").
					WithDetail("header", WorkspaceHeader),
			)
			c.Abort()
			return
		}

		workspaceUUID, err := uuid.Parse(rawWorkspaceID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid workspace id").
					WithDetail("header", WorkspaceHeader).
					WithDetail("value", rawWorkspaceID),
			)
			c.Abort()
			return
		}
		workspaceID := workspaceUUID.String()

		managedPool, err := manager.GetPool(ctx, workspaceID)
		if err != nil {
			logger.Warn(ctx, "workspace pool error", "workspace_id", workspaceID, "error", err)

			switch {
			case errors.Is(err, workspace.ErrWorkspaceNotFound):
				_ = c.Error(apperror.NewNotFound("workspace", workspaceID))
			case errors.Is(err, workspace.ErrWorkspaceNotActive):
				_ = c.Error(apperror.NewForbidden("workspace is not active").WithDetail("workspace_id", workspaceID))
			case errors.Is(err, workspace.ErrMaxPoolLimit):
				appErr := apperror.NewInternal(err)
				appErr.HTTPStatus = http.StatusServiceUnavailable
				appErr.Message = "service temporarily unavailable"
				_ = c.Error(appErr.WithDetail("workspace_id", workspaceID))
			default:
				_ = c.Error(apperror.NewInternal(err).WithDetail("workspace_id", workspaceID))
			}
			c.Abort()
			return
		}

		// Track active request for graceful shutdown
		managedPool.AcquireRef()
		defer managedPool.ReleaseRef()

		txManager := postgres.NewTxManagerFromRawPool(managedPool.Pool())

		ctx = workspace.WithPool(ctx, managedPool.Pool())
		ctx = workspace.WithTxManager(ctx, txManager)
		ctx = workspace.WithWorkspace(ctx, managedPool.Workspace())

		c.Request = c.Request.WithContext(ctx)

		c.Set("workspace_id", managedPool.Workspace().ID)
		c.Set("tx_manager", txManager)

		c.Next()
	}
}

// GetTxManagerFromContext retrieves TxManager from Gin context.
// Returns nil if not found. Use this in handlers.
func GetTxManagerFromContext(c *gin.Context) *postgres.TxManager {
	if v, exists := c.Get("tx_manager"); exists {
		if txm, ok := v.(*postgres.TxManager); ok {
			return txm
		}
	}
	return nil
}
