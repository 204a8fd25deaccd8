package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// PostRoutes sets up post-related routes for creation, feed, likes and comments
func PostRoutes(app *fiber.App) {
	post := app.Group("/api/post", middleware.ProtectRoute)

	general := middleware.RateLimit(ratelimit.CategoryGeneral)

	post.Post("/create", general, controllers.CreatePost)
	post.Get("/getpost", middleware.RateLimit(ratelimit.CategoryFeed), controllers.GetFeedPosts)
	post.Get("/like/:id", general, controllers.LikePost)
	post.Post("/comment/:id", general, controllers.CreateComment)
	post.Get("/:id", general, controllers.GetPostByID)
	post.Delete("/:id", general, controllers.DeletePost)
}
