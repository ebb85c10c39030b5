package server

import (
	"github.com/labstack/echo/v4"

	"example.com/finance-dashboard/backend/internal/handlers"
)

type routeHandlers struct {
	auth          *handlers.AuthHandler
	transactions  *handlers.TransactionHandler
	budgets       *handlers.BudgetHandler
	goals         *handlers.GoalHandler
	income        *handlers.IncomeHandler
	insights      *handlers.InsightsHandler
	tax           *handlers.TaxHandler
	documents     *handlers.DocumentHandler
	chat          *handlers.ChatHandler
	dashboard     *handlers.DashboardHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
	ready         echo.HandlerFunc
}

type routeMiddleware struct {
	auth          echo.MiddlewareFunc
	stream        echo.MiddlewareFunc
	admin         echo.MiddlewareFunc
	authRateLimit echo.MiddlewareFunc
	chatRateLimit echo.MiddlewareFunc
	uploadLimit   echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", handlers.Health)
	e.GET("/ready", h.ready)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", mw.authRateLimit)

	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.auth)

	api.POST("/calculators/emi", handlers.CalculateEMI)

	api.GET("/dashboard", h.dashboard.Get, mw.auth)

	transactions := api.Group("/transactions", mw.auth)
	transactions.GET("", h.transactions.List)
	transactions.POST("", h.transactions.Create)
	transactions.GET("/export.csv", h.transactions.ExportCSV)

	budgets := api.Group("/budgets", mw.auth)
	budgets.GET("", h.budgets.List)
	budgets.POST("", h.budgets.Create)
	budgets.PUT("/:id", h.budgets.Update)
	budgets.DELETE("/:id", h.budgets.Delete)

	goals := api.Group("/goals", mw.auth)
	goals.GET("", h.goals.List)
	goals.POST("", h.goals.Create)
	goals.PUT("/:id", h.goals.Update)
	goals.POST("/:id/funds", h.goals.AddFunds)
	goals.DELETE("/:id", h.goals.Delete)

	income := api.Group("/income", mw.auth)
	income.GET("", h.income.List)
	income.GET("/summary", h.income.Summary)
	income.POST("", h.income.Create)
	income.PUT("/:id", h.income.Update)
	income.DELETE("/:id", h.income.Delete)

	insights := api.Group("/insights", mw.auth)
	insights.GET("/spending", h.insights.Spending)
	insights.GET("/categories", h.insights.Categories)

	api.GET("/tax/report", h.tax.Report, mw.auth)

	documents := api.Group("/documents", mw.auth)
	documents.GET("", h.documents.List)
	documents.POST("", h.documents.Upload, mw.uploadLimit)
	documents.PATCH("/:id", h.documents.Rename)
	documents.DELETE("/:id", h.documents.Delete)

	api.POST("/chat", h.chat.Send, mw.auth, mw.chatRateLimit)

	notifications := api.Group("/notifications", mw.stream)
	notifications.GET("/stream", h.notifications.Stream)

	admin := api.Group("/admin", mw.auth, mw.admin)
	admin.GET("/users", h.admin.ListUsers)
	admin.GET("/chat-requests", h.admin.ListChatRequests)
	admin.GET("/usage", h.admin.Usage)
}
