package main

import (
	"log"
	"time"

	config "github.com/anjiri1684/freelance_music/configs"
	"github.com/anjiri1684/freelance_music/database"
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/jobs"
	"github.com/anjiri1684/freelance_music/notifications"
	"github.com/anjiri1684/freelance_music/queue"
	"github.com/anjiri1684/freelance_music/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("🔥 JWT_SECRET is not set")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection successfully opened")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	log.Println("✅ Database migrated successfully")

	if err := database.SeedAdmin(db, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	mailer := notifications.NewEmailService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName)
	if mailer == nil {
		log.Println("⚠️ Brevo is not configured, emails are disabled.")
	}
	events := queue.NewPublisher(cfg.RabbitMQURL)
	if !events.Enabled() {
		log.Println("⚠️ RABBITMQ_URL not set, lesson events are disabled.")
	}

	h := handlers.New(db, cfg.JWTSecret, mailer, events)

	c := cron.New()
	if _, err := c.AddJob(cfg.RecurringBillingSchedule, jobs.NewRecurringBillingJob(h.Recurring(), mailer, events)); err != nil {
		log.Fatalf("🔥 Invalid recurring billing schedule %q: %v", cfg.RecurringBillingSchedule, err)
	}
	if _, err := c.AddJob(cfg.LessonReminderSchedule, jobs.NewLessonReminderJob(h.Bookings(), mailer)); err != nil {
		log.Fatalf("🔥 Invalid lesson reminder schedule %q: %v", cfg.LessonReminderSchedule, err)
	}
	c.Start()
	defer c.Stop()
	log.Println("✅ Cron jobs for billing and reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Freelance Music",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Freelance Music API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Register(app, h)

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
