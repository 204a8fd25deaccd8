package controllers

import (
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

// CreateNotification inserts a notification as a side effect of a like,
// comment or accept. Self-notifications are dropped, and a failed insert
// is logged but never propagated: the originating mutation already
// committed and must not be rolled back or failed.
func CreateNotification(c *fiber.Ctx, recipient primitive.ObjectID, notifType models.NotificationType, actor primitive.ObjectID, relatedPost primitive.ObjectID) {
	// Nunca notificarse a uno mismo
	if recipient == actor {
		return
	}

	notification := models.Notification{
		Id:          primitive.NewObjectID(),
		Recipient:   recipient,
		Type:        notifType,
		RelatedUser: actor,
		RelatedPost: relatedPost,
		Read:        false,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := lib.DB.Collection("notifications").InsertOne(c.Context(), notification)
	if err != nil {
		slog.Error("failed to create notification", "type", string(notifType), "recipient", recipient.Hex(), "error", err)
	}
}

// truncatePreview shortens the post text for the notification list,
// cutting on a rune boundary so multi-byte text stays valid.
func truncatePreview(s string) string {
	const maxRunes = 120
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// GetNotifications returns all notifications for the authenticated user, populating actor and post preview data
func GetNotifications(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Obtener notificaciones del usuario, más recientes primero
	collection := lib.DB.Collection("notifications")
	filter := bson.M{"recipient": user.Id}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		slog.Error("failed to find notifications", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
	defer cursor.Close(c.Context())

	var notifications []models.Notification
	if err := cursor.All(c.Context(), &notifications); err != nil {
		slog.Error("failed to decode notifications", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	response := make([]models.NotificationDto, 0, len(notifications))

	// Popular el actor y la vista previa del post de cada notificación
	usersCollection := lib.DB.Collection("users")
	postsCollection := lib.DB.Collection("posts")
	for _, notification := range notifications {
		item := models.NotificationDto{
			ID:        notification.Id,
			Recipient: notification.Recipient,
			Type:      notification.Type,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
			UpdatedAt: notification.UpdatedAt,
		}

		if !notification.RelatedUser.IsZero() {
			var relatedUser models.UserDto
			err := usersCollection.FindOne(
				c.Context(),
				bson.M{"_id": notification.RelatedUser},
				lib.DisplayProjection(),
			).Decode(&relatedUser)

			if err == nil {
				item.RelatedUser = &relatedUser
			} else if err != mongo.ErrNoDocuments {
				slog.Error("failed to find related user", "error", err)
			}
		}

		if !notification.RelatedPost.IsZero() {
			var preview models.PostPreview
			err := postsCollection.FindOne(
				c.Context(),
				bson.M{"_id": notification.RelatedPost},
				options.FindOne().SetProjection(bson.M{
					"description": 1,
					"image":       1,
				}),
			).Decode(&preview)

			if err == nil {
				// Vista previa truncada para la lista
				preview.Description = truncatePreview(preview.Description)
				item.RelatedPost = &preview
			} else if err != mongo.ErrNoDocuments {
				slog.Error("failed to find related post", "error", err)
			}
		}

		response = append(response, item)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// MarkNotificationAsRead marks a notification as read for the authenticated user
func MarkNotificationAsRead(c *fiber.Ctx) error {
	// Obtener ID de la notificación desde los parámetros
	notificationIDStr := c.Params("id")
	notificationID, err := primitive.ObjectIDFromHex(notificationIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid notification ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Solo el destinatario puede actualizar sus notificaciones
	filter := bson.M{
		"_id":       notificationID,
		"recipient": user.Id,
	}
	update := bson.M{
		"$set": bson.M{
			"read":      true,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	collection := lib.DB.Collection("notifications")
	var updated models.Notification
	err = collection.FindOneAndUpdate(c.Context(), filter, update, opts).Decode(&updated)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Notification not found or you don't have permission to update it",
			})
		}
		slog.Error("failed to mark notification as read", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteNotification deletes a notification for the authenticated user
func DeleteNotification(c *fiber.Ctx) error {
	// Obtener ID de la notificación desde los parámetros
	notificationIDStr := c.Params("id")
	notificationID, err := primitive.ObjectIDFromHex(notificationIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid notification ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Solo permitir eliminar notificaciones propias
	filter := bson.M{
		"_id":       notificationID,
		"recipient": user.Id,
	}

	collection := lib.DB.Collection("notifications")
	result, err := collection.DeleteOne(c.Context(), filter)
	if err != nil {
		slog.Error("failed to delete notification", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Notification not found or you don't have permission to delete it",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Notification deleted successfully"))
}

// ClearAllNotifications removes every notification owned by the authenticated user
func ClearAllNotifications(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Borrado en bloque; sin notificaciones también cuenta como éxito
	collection := lib.DB.Collection("notifications")
	_, err := collection.DeleteMany(c.Context(), bson.M{"recipient": user.Id})
	if err != nil {
		slog.Error("failed to clear notifications", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("All notifications cleared"))
}
