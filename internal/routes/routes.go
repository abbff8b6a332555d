// Package routes defines the API routing configuration. It wires the
// repositories and services together and registers every HTTP route with
// its middleware.
package routes

import (
	"log"

	"kosh/internal/config"
	"kosh/internal/handlers"
	"kosh/internal/middleware"
	"kosh/internal/repositories"
	"kosh/internal/services/auth"
	"kosh/internal/services/credentials"
	"kosh/internal/services/currency"
	"kosh/internal/services/ledger"
	"kosh/internal/services/notification"
	"kosh/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	productRepo := repositories.NewProductRepository(db)

	// Session authority: redis-backed revocation state when available,
	// in-process otherwise.
	var store auth.RevocationStore
	if repositories.RedisClient != nil {
		store = auth.NewRedisStore(repositories.RedisClient)
	} else {
		store = auth.NewMemoryStore()
	}
	verifier := credentials.NewBcryptVerifier(0)
	authService := auth.NewService(accountRepo, verifier, store, auth.Config{
		AccessSecret:  config.GetEnv("ACCESS_TOKEN_SECRET", "youraccesstokensecret"),
		RefreshSecret: config.GetEnv("REFRESH_TOKEN_SECRET", "yourrefreshtokensecret"),
		AccessTTL:     config.GetDurationEnv("ACCESS_TOKEN_EXPIRY", auth.DefaultAccessTTL),
		RefreshTTL:    config.GetDurationEnv("REFRESH_TOKEN_EXPIRY", auth.DefaultRefreshTTL),
	})

	// Notification sink
	var notifier ledger.Notifier
	var telegramService *notification.TelegramService
	if botToken := config.GetEnv("TELEGRAM_BOT_TOKEN", ""); botToken != "" {
		telegramService = notification.NewTelegramService(botToken, accountRepo)
		notifier = telegramService
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, transaction alerts go to the log")
		notifier = notification.NewLogService()
	}

	ledgerService := ledger.NewService(db, notifier, ledger.DefaultTransactionTimeout)

	var rates currency.RateSource
	if apiKey := config.GetEnv("CURRENCY_API_KEY", ""); apiKey != "" {
		rates = currency.NewClient(apiKey)
	}

	walletService := wallet.NewService(accountRepo, productRepo, ledgerService, rates, verifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService)
	productHandler := handlers.NewProductHandler(productRepo, walletService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	app.Get("/health", handlers.HealthCheck)

	user := app.Group("/user")
	user.Post("/register", walletHandler.Register)
	user.Post("/login", authHandler.Login)
	user.Post("/refresh-token", authHandler.RefreshToken)
	user.Post("/logout", authHandler.Logout)

	user.Post("/fund", authMiddleware.Handler, walletHandler.Fund)
	user.Post("/pay", authMiddleware.Handler, walletHandler.Pay)
	user.Get("/bal", authMiddleware.Handler, walletHandler.Balance)
	user.Get("/stmt", authMiddleware.Handler, walletHandler.Statement)
	user.Delete("/", authMiddleware.Handler, walletHandler.DeleteAccount)

	product := app.Group("/product")
	product.Post("/product", authMiddleware.Handler, productHandler.AddProduct)
	product.Get("/product", productHandler.ListProducts)
	product.Post("/buy", authMiddleware.Handler, productHandler.Buy)

	if telegramService != nil {
		telegramHandler := handlers.NewTelegramHandler(accountRepo, telegramService)
		app.Post("/telegram/webhook", telegramHandler.Webhook)
	}
}
