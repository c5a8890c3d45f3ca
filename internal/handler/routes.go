package handler

import (
	"net/http"

	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes
type Handlers struct {
	Auth        *AuthHandler
	Category    *CategoryHandler
	Transaction *TransactionHandler
	Report      *ReportHandler
	Dashboard   *DashboardHandler
	WebSocket   *WebSocketHandler

	// APIDocs mounts the Swagger UI and the OpenAPI 3.0 document
	APIDocs bool
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if h.APIDocs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
		e.GET("/openapi.json", ServeOpenAPI3Spec)
	}

	// The token travels as a query parameter, checked by the handler
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Auth routes: a valid token is enough, the user may not exist yet
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", h.Auth.Callback)
	auth.GET("/me", h.Auth.Me)

	// Ledger routes require a registered user
	ledger := api.Group("")
	ledger.Use(authMiddleware.Authenticate(), authMiddleware.RequireUser())
	if rateLimiter != nil {
		ledger.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	categories := ledger.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)
	categories.GET("/:id/can-delete", h.Category.CanDeleteCategory)

	transactions := ledger.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	reports := ledger.Group("/reports")
	reports.GET("", h.Report.GetReport)
	reports.POST("/export", h.Report.ExportReport)

	ledger.GET("/dashboard", h.Dashboard.GetDashboard)
}
