package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/Backend-Link-Up/src/lib"
)

// CookieName carries the session token issued at login.
const CookieName = "jwt-linkup"

// ProtectRoute is a middleware that checks for a valid JWT token, authenticates the user, and attaches user data to the request context
func ProtectRoute(c *fiber.Ctx) error {

	// Obtener token de la cookie de sesión, o del header Authorization
	token := c.Cookies(CookieName)
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized - No token provided",
		})
	}

	decoded, err := lib.VerifyJWT(token)
	if err != nil || decoded == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized - Invalid token",
		})
	}

	userID, ok := decoded["userId"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized - Invalid token",
		})
	}

	objectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized - Invalid user ID",
		})
	}

	// Cargar el usuario sin la contraseña
	user, err := lib.FindUserByID(c, objectID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	c.Locals("user", *user)

	return c.Next()
}
