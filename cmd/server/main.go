package main

import (
	"log"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/speakci/internal/config"
	"github.com/example/speakci/internal/database"
	"github.com/example/speakci/internal/handlers"
	"github.com/example/speakci/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())

	if err := database.Seed(db, cfg.AdminPassword, cfg.ContactWhatsApp); err != nil {
		log.Fatalf("database seed failed: %v", err)
	}

	svc, err := routes.NewServices(db, cfg)
	if err != nil {
		log.Fatalf("service setup failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "SPEAK ENGLISH CI Backend",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    cfg.BodyLimit(),
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, svc, cfg)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
