package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/Backend-Link-Up/src/controllers"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/ratelimit"
)

// NotificationRoutes sets up notification-related routes for listing, reading and deleting notifications
func NotificationRoutes(app *fiber.App) {
	notification := app.Group("/api/notification", middleware.ProtectRoute, middleware.RateLimit(ratelimit.CategoryGeneral))

	notification.Get("/get", controllers.GetNotifications)
	notification.Put("/:id/read", controllers.MarkNotificationAsRead)
	notification.Delete("/deleteone/:id", controllers.DeleteNotification)
	notification.Delete("/", controllers.ClearAllNotifications)
}
