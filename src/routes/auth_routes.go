package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// AuthRoutes sets up authentication-related routes for signup, login and logout
func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth", middleware.RateLimit(ratelimit.CategoryAuth))

	auth.Post("/signup", controllers.Signup)
	auth.Post("/login", controllers.Login)
	auth.Get("/logout", controllers.Logout)
}
