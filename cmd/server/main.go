package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"officehourlens/internal/config"
	"officehourlens/internal/database"
	"officehourlens/internal/handlers"
	"officehourlens/internal/llm"
	"officehourlens/internal/logging"
	"officehourlens/internal/middleware"
	"officehourlens/internal/seed"
	"officehourlens/internal/services"
)

func main() {
	logging.Init()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("📋 No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	log.Printf("✅ Database ready (%s)", db.Driver())

	// Optional sample data on startup
	if cfg.SeedFile != "" {
		data, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			log.Printf("⚠️  Failed to load seed file %s: %v", cfg.SeedFile, err)
		} else if err := seed.Apply(db, data); err != nil {
			log.Printf("⚠️  Failed to apply seed data: %v", err)
		} else {
			log.Printf("🌱 Seed data applied from %s", cfg.SeedFile)
		}
	}

	// Prompts, with optional hot-reload from a YAML file
	prompts := llm.NewPromptStore()
	if cfg.PromptsFile != "" {
		if err := prompts.LoadFile(cfg.PromptsFile); err != nil {
			log.Printf("⚠️  Failed to load prompts file %s: %v", cfg.PromptsFile, err)
		}
		go prompts.Watch(cfg.PromptsFile)
	}

	// Generator client
	llmClient := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.GenerationTimeout)
	log.Printf("🤖 Generator: %s (model %s, timeout %s)", cfg.OllamaBaseURL, cfg.OllamaModel, cfg.GenerationTimeout)

	// Services
	hub := services.NewQueueHub()
	settingsService := services.NewSettingsService(db)
	courseDocService := services.NewCourseDocService(db)
	faqService := services.NewFAQService(db, llmClient.Generate, prompts)
	suggestionService := services.NewSuggestionService(courseDocService, faqService, llmClient.Generate, prompts)
	questionService := services.NewQuestionService(db, suggestionService, faqService, settingsService, hub)

	services.InitMetrics(func() float64 {
		return float64(questionService.QueueDepth())
	})

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "OfficeHourLens v1.0",
		ReadTimeout:  120 * time.Second, // local models can be slow to first token
		WriteTimeout: 120 * time.Second,
		BodyLimit:    25 * 1024 * 1024, // room for PDF uploads
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("officehourlens")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Rate limiting
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Submit=%d/min, WS=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.SubmitMax,
		rateLimitConfig.WebSocketMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: allowedOrigins != "*",
	}))

	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Handlers
	healthHandler := handlers.NewHealthHandler(hub)
	questionHandler := handlers.NewQuestionHandler(questionService)
	faqHandler := handlers.NewFAQHandler(faqService)
	courseDocHandler := handlers.NewCourseDocHandler(courseDocService)
	settingHandler := handlers.NewSettingHandler(settingsService)
	seedHandler := handlers.NewSeedHandler(db)
	queueWSHandler := handlers.NewQueueWebSocketHandler(hub)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")

	api.Post("/questions", middleware.SubmitRateLimiter(rateLimitConfig), questionHandler.Submit)
	api.Get("/questions/:id", questionHandler.Get)
	api.Delete("/questions/:id", questionHandler.Delete)
	api.Get("/queue", questionHandler.Queue)
	api.Post("/questions/:id/start", questionHandler.Start)
	api.Post("/questions/:id/resolve", questionHandler.Resolve)

	api.Get("/faq", faqHandler.List)
	api.Delete("/faq", faqHandler.DeleteAll)

	api.Get("/course_docs", courseDocHandler.List)
	api.Post("/course_docs", courseDocHandler.Create)
	api.Post("/course_docs/pdf", courseDocHandler.CreatePDF)
	api.Delete("/course_docs/:id", courseDocHandler.Delete)

	api.Get("/settings/:key", settingHandler.Get)
	api.Put("/settings/:key", settingHandler.Set)

	api.Post("/seed_sample", seedHandler.Handle)

	// WebSocket route for live queue updates
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Use("/ws/queue", middleware.WebSocketRateLimiter(rateLimitConfig))
	app.Get("/ws/queue", websocket.New(queueWSHandler.Handle, websocket.Config{
		Origins: strings.Split(allowedOrigins, ","),
	}))

	// Serve the frontend when the build directory exists
	if _, err := os.Stat(cfg.FrontendDir); err == nil {
		app.Static("/", cfg.FrontendDir, fiber.Static{
			Compress: true,
		})
		// SPA fallback for frontend routes; backend paths fall through
		app.Get("/*", func(c *fiber.Ctx) error {
			path := c.Path()
			if strings.HasPrefix(path, "/api/") ||
				strings.HasPrefix(path, "/ws/") ||
				path == "/health" ||
				path == "/metrics" {
				return c.Next()
			}
			return c.SendFile(filepath.Join(cfg.FrontendDir, "index.html"))
		})
		log.Printf("🌐 Frontend serving from %s", cfg.FrontendDir)
	}

	log.Printf("✅ Server ready on port %s", cfg.Port)
	log.Printf("🔗 Queue updates: ws://localhost:%s/ws/queue", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
