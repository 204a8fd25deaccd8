package lib

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theleywin/Backend-Link-Up/src/models"
)

// Returns a map with a message key for API responses
func MessageResponse(message string) fiber.Map {
	return fiber.Map{
		"message": message,
	}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "fallback-secret-key"
	}
	return []byte(secret)
}

// Generates a JWT token for the given user ID
func GenerateJWT(userID primitive.ObjectID) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(jwtSecret())
}

// Verifies and decodes a JWT token, returning its claims
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
}

// DisplayProjection limits a user lookup to the public display fields.
func DisplayProjection() *options.FindOneOptions {
	return options.FindOne().SetProjection(bson.M{
		"firstName":    1,
		"lastName":     1,
		"userName":     1,
		"profileImage": 1,
		"headline":     1,
	})
}

// FindUserByID searches for a user by ID and excludes the password from the result
func FindUserByID(c *fiber.Ctx, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := DB.Collection("users").FindOne(
		c.Context(),
		bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"password": 0}),
	).Decode(&user)

	if err != nil {
		return nil, err
	}

	return &user, nil
}
