package main

import (
	"context"
	"log"
	"net/http"

	"github.com/beanline/beanline-api/config"
	"github.com/beanline/beanline-api/controllers"
	"github.com/beanline/beanline-api/middleware"
	"github.com/beanline/beanline-api/models"
	"github.com/beanline/beanline-api/realtime"
	"github.com/beanline/beanline-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Beanline API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Cafe{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Set up the realtime hub; with Redis configured, events fan out
	// across instances through the bridge
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	if cfg.RedisEnabled() {
		bridge, err := realtime.NewBridge(hub, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect realtime bridge: %v", err)
		}
		go bridge.Run(context.Background())
		publisher = bridge
		log.Println("Realtime Redis bridge enabled")
	}
	services.InitNotifier(publisher)

	// Photo storage is optional; without a bucket the menu photo
	// endpoints report storage unavailable
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitPhotoService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, photo uploads disabled")
	}

	router := setupRouter(cfg, hub)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires all routes. Split from main so tests can build the
// same router against a test database.
func setupRouter(cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	// WebSocket endpoint: anonymous connections watch public queues,
	// token-carrying connections join their private rooms
	router.GET("/ws", middleware.OptionalToken(cfg), controllers.WebSocket(hub))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Public endpoints, no authentication
		v1.GET("/cafes/:id/menu", controllers.GetMenu)
		v1.GET("/cafes/:id/queue/public", controllers.GetPublicQueue)
		v1.GET("/cafes/:id/queue/info", controllers.GetQueueInfo)

		// Everything below requires a valid token
		auth := v1.Group("")
		auth.Use(middleware.EnsureValidToken(cfg))
		{
			auth.POST("/users", controllers.CreateUser)
			auth.GET("/users/me", controllers.GetMyProfile)

			auth.POST("/orders",
				middleware.RequireCapability(middleware.CapPlaceOrder),
				controllers.CreateOrder)
			auth.GET("/orders/me",
				middleware.ResolveUser(),
				controllers.GetMyOrders)
			auth.PATCH("/orders/:id/status",
				middleware.RequireCapability(middleware.CapManageOrders),
				controllers.TransitionOrder)

			auth.GET("/cafes/:id/orders",
				middleware.RequireCapability(middleware.CapManageOrders),
				controllers.GetCafeOrders)
			auth.GET("/cafes/:id/queue",
				middleware.RequireCapability(middleware.CapManageOrders),
				controllers.GetQueue)
			auth.GET("/cafes/:id/stats",
				middleware.RequireCapability(middleware.CapViewStats),
				controllers.GetOrderStats)

			auth.POST("/cafes/:id/menu",
				middleware.RequireCapability(middleware.CapManageMenu),
				controllers.CreateMenuItem)
			auth.POST("/menu-items/:id/photo",
				middleware.RequireCapability(middleware.CapManageMenu),
				controllers.UploadMenuItemPhoto)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Beanline API is running",
	})
}
