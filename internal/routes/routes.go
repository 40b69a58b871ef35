package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/speakci/internal/config"
	"github.com/example/speakci/internal/database"
	"github.com/example/speakci/internal/handlers"
	"github.com/example/speakci/internal/middleware"
	"github.com/example/speakci/internal/services"
)

// Services are the application services the routes expose.
type Services struct {
	Orders  *services.OrderService
	Admin   *services.AdminService
	Content *services.ContentService
}

// NewServices builds the services on top of the gorm store, the uploads
// directory and the notification channels.
func NewServices(db *gorm.DB, cfg *config.Config) (Services, error) {
	store := database.NewStore(db)

	blobs, err := services.NewDiskStorage(cfg.UploadsDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return Services{}, fmt.Errorf("uploads storage: %w", err)
	}

	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	mailer := services.NewMailer(cfg.ResendAPIKey, cfg.MailFrom, cfg.ContactWhatsApp)
	notifier := services.NewConfirmationNotifier(mailer, telegramService)
	calc := services.NewCalculator(cfg.PricePerPage, cfg.MaxPages)

	return Services{
		Orders:  services.NewOrderService(store, blobs, notifier, calc, cfg.MaxUploadBytes(), cfg.MaxFiles),
		Admin:   services.NewAdminService(store, blobs, cfg.TokenExpires(), cfg.MaxUploadBytes()),
		Content: services.NewContentService(store),
	}, nil
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, svc Services, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	levelTestHandler := handlers.NewLevelTestHandler(svc.Content)
	contentHandler := handlers.NewContentHandler(svc.Content)
	authHandler := handlers.NewAuthHandler(svc.Admin, cfg.JWTSecret)
	adminHandler := handlers.NewAdminHandler(svc.Admin)

	app.Static("/uploads", cfg.UploadsDir)

	api := app.Group("/api")

	// Translation orders
	api.Get("/translation/options", orderHandler.Options)
	api.Get("/translation/quote", orderHandler.Quote)
	api.Post("/orders", orderHandler.CreateOrder)
	api.Post("/orders/:id/payment", orderHandler.RecordPayment)
	api.Get("/orders/:id/summary", orderHandler.Summary)

	// Level test
	api.Get("/level-test/questions", levelTestHandler.Questions)
	api.Post("/level-test/score", levelTestHandler.Score)

	// Public site content
	api.Get("/packs", contentHandler.ListPacks)
	api.Get("/settings", contentHandler.GetSettings)

	// Back office
	admin := api.Group("/admin")
	admin.Post("/login", middleware.LoginRateLimiter(cfg.LoginPerMin), authHandler.Login)

	protected := admin.Group("", middleware.AdminAuth(cfg.JWTSecret))
	protected.Get("/session", authHandler.Session)
	protected.Put("/password", authHandler.ChangePassword)

	protected.Get("/dashboard", adminHandler.DashboardStats)
	protected.Get("/orders", adminHandler.ListOrders)
	protected.Get("/orders/:id", adminHandler.GetOrder)
	protected.Patch("/orders/:id/status", adminHandler.UpdateOrderStatus)
	protected.Post("/orders/:id/translated-file", adminHandler.UploadTranslatedFile)
	protected.Post("/orders/:id/confirm-payment", adminHandler.ConfirmPayment)
	protected.Delete("/orders/:id", adminHandler.DeleteOrder)
	protected.Get("/clients", adminHandler.ListClients)

	protected.Get("/questions", contentHandler.ListQuestions)
	protected.Post("/questions", contentHandler.CreateQuestion)
	protected.Put("/questions/:id", contentHandler.UpdateQuestion)
	protected.Patch("/questions/:id/toggle", contentHandler.ToggleQuestion)
	protected.Delete("/questions/:id", contentHandler.DeleteQuestion)

	protected.Post("/packs", contentHandler.CreatePack)
	protected.Put("/packs/:id", contentHandler.UpdatePack)
	protected.Delete("/packs/:id", contentHandler.DeletePack)

	protected.Put("/settings", contentHandler.UpdateSettings)
}
