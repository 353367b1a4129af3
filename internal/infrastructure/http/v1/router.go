// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	appctx "fakturo/internal/core/context"
	"fakturo/internal/core/workspace"
	"fakturo/internal/domain/activity"
	"fakturo/internal/domain/auth"
	"fakturo/internal/domain/invoice"
	"fakturo/internal/domain/party"
	"fakturo/internal/domain/product"
	"fakturo/internal/domain/ref"
	"fakturo/internal/infrastructure/http/v1/handlers"
	"fakturo/internal/infrastructure/http/v1/middleware"
	"fakturo/internal/infrastructure/storage/postgres/catalog_repo"
	"fakturo/internal/infrastructure/storage/postgres/document_repo"
	"fakturo/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// WorkspaceManager manages database connections for all workspaces
	WorkspaceManager *workspace.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// ActivityStore for the per-document change log. Optional: when
	// nil, saves are not recorded and activity listings come back empty.
	ActivityStore activity.Store
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no workspace required)
	healthHandler := handlers.NewHealthHandler(cfg.MetaPool, cfg.WorkspaceManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need WorkspaceDB middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints - WorkspaceDB runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.WorkspaceDB(cfg.WorkspaceManager)) // 1. Resolve workspace, get DB pool
		protected.Use(middleware.Auth(cfg.JWTValidator))            // 2. Validate JWT, fill user context

		registerCatalogRoutes(protected)
		registerInvoiceRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need workspace for DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.WorkspaceDB(cfg.WorkspaceManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.WorkspaceDB(cfg.WorkspaceManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
// Repos and services are created once; the TxManager is obtained from
// context per-request, so one instance serves every workspace.
func registerCatalogRoutes(rg *gin.RouterGroup) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PARTIES ---
	{
		repo := catalog_repo.NewPartyRepo()
		service := party.NewService(repo)
		handler := handlers.NewPartyHandler(baseHandler, service)

		group := catalogs.Group("/parties")
		RegisterCatalogRoutes(group, handler)
		group.GET("/search", handler.Search)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo()
		service := product.NewService(repo)
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler)
	}
}

// registerInvoiceRoutes registers invoice endpoints.
func registerInvoiceRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	partyRepo := catalog_repo.NewPartyRepo()
	productRepo := catalog_repo.NewProductRepo()

	// Both party kinds live in one table, so one repo resolves both;
	// same for products.
	clientResolvers := ref.NewResolverSet()
	clientResolvers.Register(party.RefPerson, partyRepo)
	clientResolvers.Register(party.RefOrganization, partyRepo)

	productResolvers := ref.NewResolverSet()
	productResolvers.Register(product.RefProduct, productRepo)
	productResolvers.Register(product.RefService, productRepo)

	service := invoice.NewService(invoice.ServiceConfig{
		Repo:             document_repo.NewInvoiceRepo(),
		ClientResolvers:  clientResolvers,
		ProductResolvers: productResolvers,
	})

	// Audit stamps come from the authenticated user.
	service.Hooks().OnPreSave(func(ctx context.Context, inv *invoice.Invoice) error {
		userID := appctx.GetUserID(ctx)
		if inv.CreatedBy == "" {
			inv.CreatedBy = userID
		}
		inv.UpdatedBy = userID
		return nil
	})

	if cfg.ActivityStore != nil {
		activity.NewRecorder(cfg.ActivityStore).Bind(service)
	}

	handler := handlers.NewInvoiceHandler(baseHandler, service, cfg.ActivityStore)
	editor := middleware.RequireRole(auth.RoleEditor)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", handler.List)
		invoices.GET("/new/number", handler.NewNumber)
		invoices.GET("/:id", handler.Get)
		invoices.GET("/:id/activity", handler.Activity)
		invoices.POST("", editor, handler.Create)
		invoices.PUT("/:id", editor, handler.Update)
		invoices.DELETE("/:id", editor, handler.Delete)
	}
}
