package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// ConnectionRoutes sets up connection-related routes for sending, resolving and inspecting connection requests
func ConnectionRoutes(app *fiber.App) {
	connection := app.Group("/api/connection", middleware.ProtectRoute)

	general := middleware.RateLimit(ratelimit.CategoryGeneral)

	connection.Post("/send/:id", middleware.RateLimit(ratelimit.CategoryConnection), controllers.SendConnectionRequest)
	connection.Put("/accept/:connectionId", general, controllers.AcceptConnectionRequest)
	connection.Put("/reject/:connectionId", general, controllers.RejectConnectionRequest)
	connection.Get("/getstatus/:userId", general, controllers.GetConnectionStatus)
	connection.Delete("/remove/:userId", general, controllers.RemoveConnection)
	connection.Get("/requests", general, controllers.GetConnectionRequests)
	connection.Get("/count", general, controllers.GetConnectionCount)
	connection.Get("/", general, controllers.GetUserConnections)
}
