// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fakturo/internal/domain/auth"
	"fakturo/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Reads need only authentication; writes require the editor role.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	editor := middleware.RequireRole(auth.RoleEditor)

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", editor, handler.Create)
	group.PUT("/:id", editor, handler.Update)
	group.DELETE("/:id", editor, handler.Delete)
	group.POST("/:id/deletion-mark", editor, handler.SetDeletionMark)
}
