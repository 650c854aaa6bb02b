package main

import (
	"log"

	"kalvi/config"
	authController "kalvi/controllers/auth"
	contentController "kalvi/controllers/content"
	downloadController "kalvi/controllers/download"
	"kalvi/database"
	adminRoutes "kalvi/routers/adminRoutes"
	authRoutes "kalvi/routers/authRoutes"
	contentRoutes "kalvi/routers/contentRoutes"
	downloadRoutes "kalvi/routers/downloadRoutes"
	hierarchyRoutes "kalvi/routers/hierarchyRoutes"
	"kalvi/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	if err := authController.EnsureDefaultAdmin(database.Database.Db); err != nil {
		log.Printf("Warning: could not seed default admin: %v", err)
	}

	// Storage and mail clients are built once here and handed to the
	// controllers. A missing storage config keeps the server serving;
	// upload endpoints report the gap per request.
	var store utils.ObjectStore
	if oss, err := utils.NewOSSService(); err != nil {
		log.Printf("Warning: object storage disabled: %v", err)
	} else {
		store = oss
		utils.StartCleanupScheduler(store)
	}
	mailer := utils.NewEmailService()

	contentController.Init(store)
	downloadController.Init(mailer, store)

	app := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024 * 1024, // single uploaded file <= 1GB
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve the SPA bundle from the public folder
	app.Static("/", "./public")

	authRoutes.SetupAuthRoutes(app)
	hierarchyRoutes.SetupHierarchyRoutes(app)
	contentRoutes.SetupContentRoutes(app)
	downloadRoutes.SetupDownloadRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
