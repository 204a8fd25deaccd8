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

// pendingBetween matches the one pending request between the pair, in
// either direction. A pending B→A blocks a new A→B until resolved.
func pendingBetween(a, b primitive.ObjectID) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"sender": a, "receiver": b},
			{"sender": b, "receiver": a},
		},
		"status": models.ConnectionStatusPending,
	}
}

// SendConnectionRequest sends a connection request from the authenticated user to another user
func SendConnectionRequest(c *fiber.Ctx) error {
	// Obtener ID del usuario destino desde los parámetros
	targetUserIDStr := c.Params("id")
	targetUserID, err := primitive.ObjectIDFromHex(targetUserIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Validar que no se envíe solicitud a uno mismo
	if user.Id == targetUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "You can't send a connection request to yourself",
		})
	}

	// Validar que no estén ya conectados
	if user.IsConnectedTo(targetUserID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "You are already connected with this user",
		})
	}

	// Verificar si ya existe una solicitud pendiente en cualquier dirección
	connectionCollection := lib.DB.Collection("connections")
	var existingRequest models.Connection
	err = connectionCollection.FindOne(c.Context(), pendingBetween(user.Id, targetUserID)).Decode(&existingRequest)
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A connection request already exists",
		})
	} else if err != mongo.ErrNoDocuments {
		slog.Error("failed to check existing connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	// Crear nueva solicitud de conexión
	newRequest := models.Connection{
		Id:        primitive.NewObjectID(),
		Sender:    user.Id,
		Receiver:  targetUserID,
		PairKey:   models.ConnectionPairKey(user.Id, targetUserID),
		Status:    models.ConnectionStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Guardar en la base de datos; el índice único parcial sobre pairKey
	// atrapa la solicitud que pierde la carrera contra otro envío
	_, err = connectionCollection.InsertOne(c.Context(), newRequest)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "A connection request already exists",
			})
		}
		slog.Error("failed to create connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to send connection request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newRequest)
}

// AcceptConnectionRequest accepts a pending connection request and updates both users' connections
func AcceptConnectionRequest(c *fiber.Ctx) error {
	// Obtener ID de la solicitud desde los parámetros
	requestIDStr := c.Params("connectionId")
	requestID, err := primitive.ObjectIDFromHex(requestIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Buscar la solicitud de conexión
	connectionCollection := lib.DB.Collection("connections")
	var request models.Connection
	err = connectionCollection.FindOne(c.Context(), bson.M{"_id": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection request not found",
			})
		}
		slog.Error("failed to find connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	// Verificar que el usuario es el destinatario de la solicitud
	if request.Receiver != user.Id {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized to accept this request",
		})
	}

	// Resolver la solicitud; el filtro por status garantiza un único
	// ganador si dos resoluciones llegan a la vez
	update := bson.M{
		"$set": bson.M{
			"status":    models.ConnectionStatusAccepted,
			"updatedAt": time.Now(),
		},
	}
	var resolved models.Connection
	err = connectionCollection.FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": requestID, "status": models.ConnectionStatusPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&resolved)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "This request has already been processed",
			})
		}
		slog.Error("failed to accept connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to accept connection request",
		})
	}

	// Agregar cada usuario al set de conexiones del otro; $addToSet hace
	// la inserción idempotente
	usersCollection := lib.DB.Collection("users")
	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": resolved.Sender},
		bson.M{"$addToSet": bson.M{"connection": user.Id}},
	)
	if err != nil {
		slog.Error("failed to update sender connections", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update connections",
		})
	}

	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{"$addToSet": bson.M{"connection": resolved.Sender}},
	)
	if err != nil {
		slog.Error("failed to update receiver connections", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update connections",
		})
	}

	// Notificar al remitente original; un fallo aquí no afecta la respuesta
	CreateNotification(c, resolved.Sender, models.NotificationTypeConnectionAccepted, user.Id, primitive.NilObjectID)

	return c.Status(fiber.StatusOK).JSON(resolved)
}

// RejectConnectionRequest rejects a pending connection request
func RejectConnectionRequest(c *fiber.Ctx) error {
	// Obtener ID de la solicitud desde los parámetros
	requestIDStr := c.Params("connectionId")
	requestID, err := primitive.ObjectIDFromHex(requestIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Buscar la solicitud de conexión
	connectionCollection := lib.DB.Collection("connections")
	var request models.Connection
	err = connectionCollection.FindOne(c.Context(), bson.M{"_id": requestID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Connection request not found",
			})
		}
		slog.Error("failed to find connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	// Verificar que el usuario es el destinatario de la solicitud
	if request.Receiver != user.Id {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not authorized to reject this request",
		})
	}

	// Marcar como rechazada; mismo guard de único ganador que accept
	update := bson.M{
		"$set": bson.M{
			"status":    models.ConnectionStatusRejected,
			"updatedAt": time.Now(),
		},
	}
	var resolved models.Connection
	err = connectionCollection.FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": requestID, "status": models.ConnectionStatusPending},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&resolved)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "This request has already been processed",
			})
		}
		slog.Error("failed to reject connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to reject connection request",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Connection request rejected"))
}

// GetConnectionStatus returns the connection status between the authenticated user and another user
func GetConnectionStatus(c *fiber.Ctx) error {
	// Obtener ID del usuario objetivo desde los parámetros
	targetUserIDStr := c.Params("userId")
	targetUserID, err := primitive.ObjectIDFromHex(targetUserIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	if user.Id == targetUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cannot check connection status with yourself",
		})
	}

	if user.IsConnectedTo(targetUserID) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": models.RelationConnected,
		})
	}

	// Buscar una solicitud pendiente en cualquier dirección
	connectionCollection := lib.DB.Collection("connections")
	var pending models.Connection
	err = connectionCollection.FindOne(c.Context(), pendingBetween(user.Id, targetUserID)).Decode(&pending)

	if err == nil {
		status := models.Relation(user.Id, false, &pending)
		if status == models.RelationReceived {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"status":    status,
				"requestId": pending.Id,
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": status,
		})
	} else if err != mongo.ErrNoDocuments {
		slog.Error("failed to check pending connection request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": models.RelationNotConnected,
	})
}

// RemoveConnection removes a connection between the authenticated user and another user
func RemoveConnection(c *fiber.Ctx) error {
	// Obtener ID del usuario a desconectar desde los parámetros
	targetUserIDStr := c.Params("userId")
	targetUserID, err := primitive.ObjectIDFromHex(targetUserIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	if user.Id == targetUserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "You cannot remove yourself as a connection",
		})
	}

	// Quitar la conexión de ambos lados; $pull sobre un valor ausente no
	// hace nada, así que repetir la operación es inofensivo
	usersCollection := lib.DB.Collection("users")
	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": user.Id},
		bson.M{"$pull": bson.M{"connection": targetUserID}},
	)
	if err != nil {
		slog.Error("failed to remove connection from current user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to remove connection",
		})
	}

	_, err = usersCollection.UpdateOne(
		c.Context(),
		bson.M{"_id": targetUserID},
		bson.M{"$pull": bson.M{"connection": user.Id}},
	)
	if err != nil {
		slog.Error("failed to remove connection from target user", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to remove connection completely",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Connection removed successfully"))
}

// GetConnectionRequests returns all pending connection requests addressed to the authenticated user
func GetConnectionRequests(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Buscar solicitudes pendientes, más recientes primero
	collection := lib.DB.Collection("connections")
	filter := bson.M{
		"receiver": user.Id,
		"status":   models.ConnectionStatusPending,
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		slog.Error("failed to find connection requests", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	var connections []models.Connection
	if err := cursor.All(c.Context(), &connections); err != nil {
		slog.Error("failed to decode connection requests", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	// Popular el perfil de cada remitente
	usersCollection := lib.DB.Collection("users")
	response := make([]models.ConnectionRequestDto, 0, len(connections))
	for _, conn := range connections {
		var sender models.UserDto
		err := usersCollection.FindOne(
			c.Context(),
			bson.M{"_id": conn.Sender},
			lib.DisplayProjection(),
		).Decode(&sender)

		if err != nil && err != mongo.ErrNoDocuments {
			slog.Error("failed to find request sender", "error", err)
			continue
		}

		response = append(response, models.ConnectionRequestDto{
			ID:        conn.Id,
			Sender:    sender,
			Receiver:  conn.Receiver,
			Status:    conn.Status,
			CreatedAt: conn.CreatedAt,
			UpdatedAt: conn.UpdatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserConnections returns all users connected to the authenticated user
func GetUserConnections(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Si no tiene conexiones, devolver array vacío
	if len(user.Connections) == 0 {
		return c.Status(fiber.StatusOK).JSON([]models.UserDto{})
	}

	// Buscar los usuarios conectados con los campos de perfil público
	usersCollection := lib.DB.Collection("users")
	filter := bson.M{
		"_id": bson.M{"$in": user.Connections},
	}
	opts := options.Find().SetProjection(bson.M{
		"firstName":    1,
		"lastName":     1,
		"userName":     1,
		"profileImage": 1,
		"headline":     1,
	})

	cursor, err := usersCollection.Find(c.Context(), filter, opts)
	if err != nil {
		slog.Error("failed to find connected users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	defer cursor.Close(c.Context())

	connections := make([]models.UserDto, 0)
	if err := cursor.All(c.Context(), &connections); err != nil {
		slog.Error("failed to decode connected users", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(connections)
}

// GetConnectionCount returns the size of the authenticated user's connection set
func GetConnectionCount(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": len(user.Connections),
	})
}
