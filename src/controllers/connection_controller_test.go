package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/theleywin/Backend-Link-Up/src/lib"
	"github.com/theleywin/Backend-Link-Up/src/models"
)

// newHandlerApp monta un handler detrás de una ruta que inyecta el
// usuario autenticado, igual que lo haría el middleware de sesión.
func newHandlerApp(user models.User, method, path string, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Add(method, path, func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return handler(c)
	})
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed
}

func TestSendConnectionRequestDuplicatePending(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second send between the same pair is rejected", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		// La búsqueda de pendientes encuentra la solicitud anterior
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "sender", Value: sender},
			{Key: "receiver", Value: receiver},
			{Key: "pairKey", Value: models.ConnectionPairKey(sender, receiver)},
			{Key: "status", Value: "pending"},
		}))

		app := newHandlerApp(models.User{Id: sender}, fiber.MethodPost, "/send/:id", SendConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/send/"+receiver.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Equal(mt.T, "A connection request already exists", body["message"])
	})

	mt.Run("reverse-direction pending also blocks a new send", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "sender", Value: receiver},
			{Key: "receiver", Value: sender},
			{Key: "pairKey", Value: models.ConnectionPairKey(sender, receiver)},
			{Key: "status", Value: "pending"},
		}))

		app := newHandlerApp(models.User{Id: sender}, fiber.MethodPost, "/send/:id", SendConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/send/"+receiver.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestSendConnectionRequestInsertRace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	// Dos envíos simultáneos pasan el chequeo de pendientes antes de que
	// el otro inserte; el índice único parcial sobre pairKey rechaza al
	// perdedor y el handler lo traduce al mismo 400 que el chequeo previo
	mt.Run("losing a concurrent insert maps to duplicate request", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error",
			}),
		)

		app := newHandlerApp(models.User{Id: sender}, fiber.MethodPost, "/send/:id", SendConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/send/"+receiver.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Equal(mt.T, "A connection request already exists", body["message"])
	})
}

func TestAcceptConnectionRequest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("accept resolves the request and links both users", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		requestID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		accepted := bson.D{
			{Key: "_id", Value: requestID},
			{Key: "sender", Value: sender},
			{Key: "receiver", Value: receiver},
			{Key: "pairKey", Value: models.ConnectionPairKey(sender, receiver)},
			{Key: "status", Value: "accepted"},
			{Key: "createdAt", Value: time.Now()},
			{Key: "updatedAt", Value: time.Now()},
		}

		mt.AddMockResponses(
			// Lectura inicial de la solicitud
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: requestID},
				{Key: "sender", Value: sender},
				{Key: "receiver", Value: receiver},
				{Key: "status", Value: "pending"},
			}),
			// findAndModify condicionado a status pending
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: accepted}),
			// $addToSet sobre las conexiones de cada usuario
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// Notificación al remitente
			mtest.CreateSuccessResponse(),
		)

		app := newHandlerApp(models.User{Id: receiver}, fiber.MethodPut, "/accept/:connectionId", AcceptConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/accept/"+requestID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Equal(mt.T, "accepted", body["status"])
	})

	mt.Run("already resolved request cannot be accepted again", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		requestID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		mt.AddMockResponses(
			// La solicitud existe pero ya fue resuelta
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: requestID},
				{Key: "sender", Value: sender},
				{Key: "receiver", Value: receiver},
				{Key: "status", Value: "rejected"},
			}),
			// El guard de status pending no encuentra nada que actualizar
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
		)

		app := newHandlerApp(models.User{Id: receiver}, fiber.MethodPut, "/accept/:connectionId", AcceptConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/accept/"+requestID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Equal(mt.T, "This request has already been processed", body["message"])
	})

	mt.Run("only the receiver can accept", func(mt *mtest.T) {
		lib.DB = mt.DB

		sender := primitive.NewObjectID()
		receiver := primitive.NewObjectID()
		requestID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".connections"

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: requestID},
			{Key: "sender", Value: sender},
			{Key: "receiver", Value: receiver},
			{Key: "status", Value: "pending"},
		}))

		// El propio remitente intenta aceptar su solicitud
		app := newHandlerApp(models.User{Id: sender}, fiber.MethodPut, "/accept/:connectionId", AcceptConnectionRequest)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/accept/"+requestID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusForbidden, resp.StatusCode)
	})
}
