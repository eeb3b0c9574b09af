package router

import (
	"curtain_shop_backend/internal/handlers"
	"curtain_shop_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up the authentication routes.
func SetupAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.RefreshToken)

		authRequiredRoutes := authRoutes.Group("")
		authRequiredRoutes.Use(middleware.AuthMiddleware())
		{
			authRequiredRoutes.GET("/me", authHandler.Me)
		}
	}
}

// SetupAccountRoutes sets up profile and address routes. All require auth.
func SetupAccountRoutes(apiGroup *gin.RouterGroup, accountHandler *handlers.AccountHandler) {
	accountRoutes := apiGroup.Group("/account")
	accountRoutes.Use(middleware.AuthMiddleware())
	{
		accountRoutes.GET("/profile", accountHandler.GetProfile)
		accountRoutes.PATCH("/profile", accountHandler.UpdateProfile)

		accountRoutes.GET("/addresses", accountHandler.GetAddresses)
		accountRoutes.POST("/addresses", accountHandler.CreateAddress)
		accountRoutes.PUT("/addresses/:id", accountHandler.UpdateAddress)
		accountRoutes.DELETE("/addresses/:id", accountHandler.DeleteAddress)
		accountRoutes.POST("/addresses/:id/default", accountHandler.SetDefaultAddress)
	}
}

// SetupCatalogRoutes sets up the public storefront catalog routes.
func SetupCatalogRoutes(apiGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	catalogRoutes := apiGroup.Group("")
	{
		catalogRoutes.GET("/categories", catalogHandler.GetCategories)
		catalogRoutes.GET("/colors", catalogHandler.GetColors)
		catalogRoutes.GET("/curtains", catalogHandler.GetCurtains)
		catalogRoutes.GET("/curtains/:id", catalogHandler.GetCurtainByID)
	}
}

// SetupOrderRoutes sets up the customer-facing order routes. Order creation
// and tracking work for guests too, so auth is optional there.
func SetupOrderRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := apiGroup.Group("/orders")
	{
		guestRoutes := orderRoutes.Group("")
		guestRoutes.Use(middleware.OptionalAuthMiddleware())
		{
			guestRoutes.POST("", orderHandler.CreateOrder)
			guestRoutes.GET("/track/:number", orderHandler.TrackOrder)
			guestRoutes.POST("/cancel/:number", orderHandler.CancelOrder)
		}

		authRoutes := orderRoutes.Group("")
		authRoutes.Use(middleware.AuthMiddleware())
		{
			authRoutes.GET("/my", orderHandler.GetMyOrders)
		}
	}
}

// SetupStaffRoutes sets up the staff panel: order management, statistics
// and catalog administration.
func SetupStaffRoutes(apiGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler, orderHandler *handlers.OrderHandler) {
	staffRoutes := apiGroup.Group("/staff")
	staffRoutes.Use(middleware.AuthMiddleware(), middleware.StaffOnlyMiddleware())
	{
		// Order management
		staffRoutes.GET("/orders", orderHandler.GetOrders)
		staffRoutes.GET("/orders/stats", orderHandler.GetOrderStats)
		staffRoutes.GET("/orders/:id", orderHandler.GetOrderByID)
		staffRoutes.GET("/orders/:id/history", orderHandler.GetOrderHistory)
		staffRoutes.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)
		staffRoutes.POST("/orders/bulk-status", orderHandler.BulkUpdateStatus)
		staffRoutes.DELETE("/orders/:id", orderHandler.DeleteOrder)

		// Catalog administration
		staffRoutes.POST("/categories", catalogHandler.CreateCategory)
		staffRoutes.PUT("/categories/:id", catalogHandler.UpdateCategory)
		staffRoutes.DELETE("/categories/:id", catalogHandler.DeleteCategory)

		staffRoutes.POST("/colors", catalogHandler.CreateColor)
		staffRoutes.DELETE("/colors/:id", catalogHandler.DeleteColor)

		staffRoutes.GET("/curtains", catalogHandler.GetAllCurtains)
		staffRoutes.POST("/curtains", catalogHandler.CreateCurtain)
		staffRoutes.PUT("/curtains/:id", catalogHandler.UpdateCurtain)
		staffRoutes.DELETE("/curtains/:id", catalogHandler.DeleteCurtain)
		staffRoutes.POST("/curtains/:id/images", catalogHandler.AddCurtainImage)
		staffRoutes.DELETE("/curtains/:id/images/:imageId", catalogHandler.DeleteCurtainImage)
	}
}
