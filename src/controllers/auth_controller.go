package controllers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/theleywin/Backend-Link-Up/src/lib"
	"github.com/theleywin/Backend-Link-Up/src/middleware"
	"github.com/theleywin/Backend-Link-Up/src/models"
)

func setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   false, // true en producción con HTTPS
		Path:     "/",
	})
}

// Signup handles user registration, validates input, checks for duplicates, hashes password, creates user, and sets JWT cookie
func Signup(c *fiber.Ctx) error {

	var userData struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		UserName  string `json:"userName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}

	if err := c.BodyParser(&userData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if userData.FirstName == "" || userData.LastName == "" || userData.UserName == "" || userData.Email == "" || userData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "All fields are required",
		})
	}

	if len(userData.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Password must be at least 8 characters",
		})
	}

	usersCollection := lib.DB.Collection("users")

	// Verificar duplicados de email y username
	var existingUser models.User
	err := usersCollection.FindOne(c.Context(), bson.M{"email": strings.ToLower(userData.Email)}).Decode(&existingUser)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already exists",
		})
	} else if err != mongo.ErrNoDocuments {
		slog.Error("failed to check existing email", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	err = usersCollection.FindOne(c.Context(), bson.M{"userName": userData.UserName}).Decode(&existingUser)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username already exists",
		})
	} else if err != mongo.ErrNoDocuments {
		slog.Error("failed to check existing username", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.Password), 11)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	// Crear usuario
	newUser := models.User{
		Id:          primitive.NewObjectID(),
		FirstName:   userData.FirstName,
		LastName:    userData.LastName,
		UserName:    userData.UserName,
		Email:       strings.ToLower(userData.Email),
		Password:    string(hashedPassword),
		Skills:      []string{},
		Education:   []models.Education{},
		Experience:  []models.Experience{},
		Connections: []primitive.ObjectID{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if _, err := usersCollection.InsertOne(c.Context(), newUser); err != nil {
		slog.Error("failed to create user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create user",
		})
	}

	token, err := lib.GenerateJWT(newUser.Id)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to generate token",
		})
	}

	setSessionCookie(c, token)

	newUser.Password = ""
	return c.Status(fiber.StatusCreated).JSON(newUser)
}

// Login authenticates a user by email and password, generates JWT, and sets cookie
func Login(c *fiber.Ctx) error {

	var loginData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&loginData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if loginData.Email == "" || loginData.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email and password are required",
		})
	}

	var user models.User
	err := lib.DB.Collection("users").FindOne(c.Context(), bson.M{"email": strings.ToLower(loginData.Email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		}
		slog.Error("failed to find user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginData.Password))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := lib.GenerateJWT(user.Id)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	setSessionCookie(c, token)

	user.Password = ""
	return c.JSON(user)
}

// Logout clears the authentication cookie to log out the user
func Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		HTTPOnly: true,
		SameSite: "Strict",
		Secure:   false,
		Path:     "/",
	})
	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Logged out successfully"))
}
