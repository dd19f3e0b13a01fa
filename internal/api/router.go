package api

import (
	"finledger/internal/api/handlers"
	"finledger/pkg/auth"
	"finledger/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Accounts     *handlers.AccountHandler
	Transactions *handlers.TransactionHandler
	Categories   *handlers.CategoryHandler
	Debts        *handlers.DebtHandler
	Documents    *handlers.DocumentHandler
	Chat         *handlers.ChatHandler
	Insights     *handlers.InsightsHandler
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	accounts := protected.Group("/accounts")
	accounts.Post("", h.Accounts.Create)
	accounts.Get("", h.Accounts.List)
	accounts.Get("/:id", h.Accounts.Get)
	accounts.Delete("/:id", h.Accounts.Delete)

	transactions := protected.Group("/transactions")
	transactions.Post("", h.Transactions.Create)
	transactions.Get("", h.Transactions.List)
	transactions.Put("/:id", h.Transactions.Update)
	transactions.Delete("/:id", h.Transactions.Delete)

	categories := protected.Group("/categories")
	categories.Get("", h.Categories.List)
	categories.Get("/catalog", h.Categories.Catalog)

	debts := protected.Group("/debts")
	debts.Post("", h.Debts.Create)
	debts.Get("", h.Debts.List)
	debts.Post("/:id/settle", h.Debts.Settle)

	documents := protected.Group("/documents")
	documents.Post("/upload", h.Documents.Upload)
	documents.Get("", h.Documents.List)
	documents.Post("/:id/process", h.Documents.Process)

	chat := protected.Group("/chat")
	chat.Post("/message", h.Chat.Message)
	chat.Post("/confirm", h.Chat.ConfirmTransaction)

	protected.Get("/insights/summary", h.Insights.Summary)

	return app
}
