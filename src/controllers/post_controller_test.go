package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/theleywin/Backend-Link-Up/src/lib"
	"github.com/theleywin/Backend-Link-Up/src/models"
)

func TestLikePostToggle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unlike removes an existing like", func(mt *mtest.T) {
		lib.DB = mt.DB

		// El autor del post es quien quita su propio like, así que no se
		// genera notificación
		userID := primitive.NewObjectID()
		postID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".posts"

		mt.AddMockResponses(
			// La rama $addToSet no coincide: el like ya estaba
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// La rama $pull lo quita
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			// Lectura del estado resultante
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: postID},
				{Key: "author", Value: userID},
				{Key: "description", Value: "hello"},
				{Key: "like", Value: bson.A{}},
				{Key: "comment", Value: bson.A{}},
			}),
		)

		app := newHandlerApp(models.User{Id: userID}, fiber.MethodPut, "/like/:id", LikePost)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/like/"+postID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Empty(mt.T, body["like"])
	})

	mt.Run("missing post returns not found", func(mt *mtest.T) {
		lib.DB = mt.DB

		userID := primitive.NewObjectID()
		postID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".posts"

		mt.AddMockResponses(
			// Ninguna de las dos ramas coincide
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// El conteo confirma que el post no existe
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		app := newHandlerApp(models.User{Id: userID}, fiber.MethodPut, "/like/:id", LikePost)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/like/"+postID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusNotFound, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Equal(mt.T, "Post not found", body["message"])
	})

	mt.Run("concurrent toggle forces a retry instead of not found", func(mt *mtest.T) {
		lib.DB = mt.DB

		// Un toggle concurrente del mismo usuario cambia el estado entre
		// las dos ramas: ambas fallan pero el post existe, así que el
		// handler reintenta en vez de responder 404
		userID := primitive.NewObjectID()
		postID := primitive.NewObjectID()
		ns := mt.DB.Name() + ".posts"

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			// El post sigue ahí
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: 1},
				{Key: "n", Value: int64(1)},
			}),
			// Segundo intento: el $addToSet ahora coincide
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: postID},
				{Key: "author", Value: userID},
				{Key: "like", Value: bson.A{userID}},
				{Key: "comment", Value: bson.A{}},
			}),
		)

		app := newHandlerApp(models.User{Id: userID}, fiber.MethodPut, "/like/:id", LikePost)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPut, "/like/"+postID.Hex(), nil))
		require.NoError(mt.T, err)

		assert.Equal(mt.T, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(mt.T, resp.Body)
		assert.Len(mt.T, body["like"], 1)
	})
}
