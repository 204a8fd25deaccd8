package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/lib"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
	"github.com/theleywin/Backend-Link-Up/src/realtime"
	"github.com/theleywin/Backend-Link-Up/src/routes"
	"github.com/theleywin/Backend-Link-Up/src/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Connect to MongoDB
	lib.ConnectDB()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := lib.EnsureIndexes(ctx); err != nil {
		slog.Warn("failed to ensure indexes", "error", err)
	}
	cancel()

	// Contadores del rate limiter: Redis compartido si está configurado,
	// memoria del proceso si no
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Warn("redis unreachable, falling back to in-memory rate limiting", "error", err)
		} else {
			middleware.Limiter = ratelimit.NewRedisStore(client)
			slog.Info("rate limiter backed by redis", "addr", addr)
		}
	}
	if store, ok := middleware.Limiter.(*ratelimit.MemoryStore); ok {
		go func() {
			for range time.Tick(time.Minute) {
				store.Sweep()
			}
		}()
	}

	// Broadcaster en tiempo real y servicio de imágenes
	hub := realtime.NewHub()
	controllers.Broadcaster = hub
	controllers.Uploads = storage.NewLocalUploader()

	// Register routes
	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.PostRoutes(app)
	routes.ConnectionRoutes(app)
	routes.NotificationRoutes(app)

	// Canal en tiempo real para likes y comentarios
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(realtime.Handler(hub)))

	// Get the server port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	// Serve static files (uploaded images) from the public directory
	app.Static("/", "./public")

	slog.Info("server is running", "port", port)
	if err := app.Listen(":" + port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
