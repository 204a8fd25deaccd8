package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// UserRoutes sets up user-related routes for the current user, profile update, public profile, search and suggestions
func UserRoutes(app *fiber.App) {
	user := app.Group("/api/user", middleware.ProtectRoute)

	general := middleware.RateLimit(ratelimit.CategoryGeneral)
	feed := middleware.RateLimit(ratelimit.CategoryFeed)

	user.Get("/currentuser", general, controllers.GetCurrentUser)
	user.Put("/updateprofile", general, controllers.UpdateProfile)
	user.Get("/profile/:userName", feed, controllers.GetProfile)
	user.Get("/search", feed, controllers.SearchUsers)
	user.Get("/suggestedusers", feed, controllers.GetSuggestedUsers)
}
