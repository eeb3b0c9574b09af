package router

import (
	"database/sql"

	"curtain_shop_backend/internal/handlers"
	"curtain_shop_backend/internal/repositories"
	"curtain_shop_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	accountService := services.NewAccountService(accountRepo, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	orderService := services.NewOrderService(orderRepo, catalogRepo, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	orderHandler := handlers.NewOrderHandler(orderService)

	apiV1 := engine.Group("/api/v1")

	SetupAuthRoutes(apiV1, authHandler)
	SetupAccountRoutes(apiV1, accountHandler)
	SetupCatalogRoutes(apiV1, catalogHandler)
	SetupOrderRoutes(apiV1, orderHandler)
	SetupStaffRoutes(apiV1, catalogHandler, orderHandler)
}
