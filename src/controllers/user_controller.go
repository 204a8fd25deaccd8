package controllers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theleywin/Backend-Link-Up/src/lib"
	"github.com/theleywin/Backend-Link-Up/src/models"
)

// GetCurrentUser returns the currently authenticated user's data
func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user")
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}
	return c.JSON(user)
}

// GetProfile returns a user's public profile by username
func GetProfile(c *fiber.Ctx) error {
	userName := c.Params("userName")

	var user models.User
	err := lib.DB.Collection("users").FindOne(
		c.Context(),
		bson.M{"userName": userName},
		options.FindOne().SetProjection(bson.M{"password": 0, "email": 0}),
	).Decode(&user)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		slog.Error("failed to find profile", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateProfile updates the authenticated user's profile, validating the typed sub-documents and uploading images if present
func UpdateProfile(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	set := bson.M{"updatedAt": time.Now()}

	// Campos simples del formulario multipart
	for _, field := range []string{"firstName", "lastName", "userName", "headline", "location"} {
		if value := c.FormValue(field); value != "" {
			set[field] = value
		}
	}

	// Los arreglos llegan como JSON dentro del formulario; decodificar a
	// los tipos tipados y validar en el borde
	var skills []string
	var education []models.Education
	var experience []models.Experience

	if raw := c.FormValue("skills"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &skills); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid skills format",
			})
		}
		set["skills"] = skills
	}
	if raw := c.FormValue("education"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &education); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid education format",
			})
		}
		set["education"] = education
	}
	if raw := c.FormValue("experience"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &experience); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid experience format",
			})
		}
		set["experience"] = experience
	}

	if err := models.ValidateProfileUpdate(skills, education, experience); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid profile data: " + err.Error(),
		})
	}

	// Imágenes de perfil y portada a través del servicio de almacenamiento
	for field, key := range map[string]string{"profileImage": "profileImage", "coverImage": "coverImage"} {
		if file, err := c.FormFile(field); err == nil && file != nil {
			if Uploads == nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Image uploads are not configured",
				})
			}
			url, err := Uploads.Upload(file)
			if err != nil {
				slog.Error("failed to upload profile image", "field", field, "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Error uploading image",
				})
			}
			set[key] = url
		}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var updated models.User
	err := lib.DB.Collection("users").FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{"$set": set},
		opts,
	).Decode(&updated)

	if err != nil {
		slog.Error("failed to update profile", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// SearchUsers searches users by substring on name, username and skills
func SearchUsers(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Search query is required",
		})
	}

	// Búsqueda por subcadena, sin distinguir mayúsculas
	regex := bson.M{"$regex": query, "$options": "i"}
	filter := bson.M{
		"$or": []bson.M{
			{"firstName": regex},
			{"lastName": regex},
			{"userName": regex},
			{"skills": regex},
		},
	}

	opts := options.Find().
		SetProjection(bson.M{"password": 0, "email": 0}).
		SetLimit(20)

	cursor, err := lib.DB.Collection("users").Find(c.Context(), filter, opts)
	if err != nil {
		slog.Error("failed to search users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	results := make([]models.User, 0)
	if err := cursor.All(c.Context(), &results); err != nil {
		slog.Error("failed to decode search results", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(results)
}

// SuggestionExclusions builds the set of user IDs that must never appear
// in suggestions: the user themself, their connections, and anyone with a
// pending request to or from them.
func SuggestionExclusions(user models.User, pending []models.Connection) []primitive.ObjectID {
	seen := map[primitive.ObjectID]struct{}{user.Id: {}}
	excluded := []primitive.ObjectID{user.Id}

	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			excluded = append(excluded, id)
		}
	}

	for _, conn := range user.Connections {
		add(conn)
	}
	for _, req := range pending {
		add(req.Sender)
		add(req.Receiver)
	}

	return excluded
}

// GetSuggestedUsers returns users the authenticated user could connect with
func GetSuggestedUsers(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Buscar solicitudes pendientes que involucren al usuario, en ambas
	// direcciones
	connectionCollection := lib.DB.Collection("connections")
	pendingFilter := bson.M{
		"$or": []bson.M{
			{"sender": user.Id},
			{"receiver": user.Id},
		},
		"status": models.ConnectionStatusPending,
	}

	cursor, err := connectionCollection.Find(c.Context(), pendingFilter)
	if err != nil {
		slog.Error("failed to find pending requests", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	var pending []models.Connection
	if err := cursor.All(c.Context(), &pending); err != nil {
		slog.Error("failed to decode pending requests", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	// Excluir al usuario, sus conexiones y cualquier solicitud pendiente;
	// ordenar por cuenta más reciente como orden estable
	filter := bson.M{
		"_id": bson.M{"$nin": SuggestionExclusions(user, pending)},
	}
	opts := options.Find().
		SetProjection(bson.M{"password": 0, "email": 0}).
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(10)

	usersCursor, err := lib.DB.Collection("users").Find(c.Context(), filter, opts)
	if err != nil {
		slog.Error("failed to find suggested users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer usersCursor.Close(c.Context())

	suggestions := make([]models.User, 0)
	if err := usersCursor.All(c.Context(), &suggestions); err != nil {
		slog.Error("failed to decode suggested users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(suggestions)
}
