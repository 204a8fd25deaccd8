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
	"github.com/theleywin/Backend-Link-Up/src/realtime"
	"github.com/theleywin/Backend-Link-Up/src/storage"
)

// Broadcaster pushes like/comment deltas to connected clients. Set from
// main; a nil value disables broadcasting, which tests rely on.
var Broadcaster realtime.Publisher

// Uploads stores post and profile images and returns their URLs.
var Uploads storage.Uploader

func publish(event realtime.Event) {
	if Broadcaster != nil {
		Broadcaster.Publish(event)
	}
}

// GetFeedPosts returns posts for the authenticated user's feed, including posts from their connections and themselves
func GetFeedPosts(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Crear array de IDs para la consulta (connections + propio usuario)
	authorIDs := make([]primitive.ObjectID, 0, len(user.Connections)+1)
	authorIDs = append(authorIDs, user.Connections...)
	authorIDs = append(authorIDs, user.Id)

	collection := lib.DB.Collection("posts")
	filter := bson.M{
		"author": bson.M{
			"$in": authorIDs,
		},
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := collection.Find(c.Context(), filter, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching posts",
		})
	}
	defer cursor.Close(c.Context())

	var posts []models.Post
	if err := cursor.All(c.Context(), &posts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error decoding posts",
		})
	}

	// Popular manual de autores y comentarios
	populatedPosts, err := lib.PopulatePosts(c, posts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error populating posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(populatedPosts)
}

// CreatePost creates a new post for the authenticated user, optionally uploading an image
func CreatePost(c *fiber.Ctx) error {
	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	description := c.FormValue("description")

	var imageURL string

	// Si hay imagen, subirla al servicio de almacenamiento
	if file, err := c.FormFile("image"); err == nil && file != nil {
		if Uploads == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Image uploads are not configured",
			})
		}
		imageURL, err = Uploads.Upload(file)
		if err != nil {
			slog.Error("failed to upload post image", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error uploading image",
			})
		}
	}

	if description == "" && imageURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Post cannot be empty",
		})
	}

	// Crear nuevo post
	newPost := models.Post{
		Id:          primitive.NewObjectID(),
		Author:      user.Id,
		Description: description,
		Image:       imageURL,
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// Guardar en MongoDB
	collection := lib.DB.Collection("posts")
	_, err := collection.InsertOne(c.Context(), newPost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newPost)
}

// GetPostByID returns a post by its ID, including populated author and comments
func GetPostByID(c *fiber.Ctx) error {
	// Obtener ID del post desde los parámetros
	postIDStr := c.Params("id")
	postID, err := primitive.ObjectIDFromHex(postIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid post ID format",
		})
	}

	collection := lib.DB.Collection("posts")

	// Buscar el post por ID
	var post models.Post
	err = collection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Post not found",
		})
	}

	// Popular manualmente los datos del autor y comentarios
	populatedPost, err := lib.PopulatePosts(c, []models.Post{post})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error loading post data",
		})
	}

	return c.Status(fiber.StatusOK).JSON(populatedPost[0])
}

// DeletePost deletes a post by ID if the authenticated user is the author
func DeletePost(c *fiber.Ctx) error {
	// Obtener ID del post desde los parámetros
	postIDStr := c.Params("id")
	postID, err := primitive.ObjectIDFromHex(postIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid post ID",
		})
	}

	// Obtener usuario autenticado
	user := c.Locals("user").(models.User)

	collection := lib.DB.Collection("posts")

	// Buscar el post primero
	var post models.Post
	err = collection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Post not found",
		})
	}

	// Verificar que el usuario es el autor del post
	if post.Author != user.Id {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You are not authorized to delete this post",
		})
	}

	// Eliminar el post de la base de datos
	result, err := collection.DeleteOne(c.Context(), bson.M{"_id": postID})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete post",
		})
	}

	if result.DeletedCount == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Post not found",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lib.MessageResponse("Post deleted successfully"))
}

// LikePost toggles a like/unlike for a post by the authenticated user
func LikePost(c *fiber.Ctx) error {
	// Obtener ID del post desde los parámetros
	postIDStr := c.Params("id")
	postID, err := primitive.ObjectIDFromHex(postIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid post ID format",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	postsCollection := lib.DB.Collection("posts")

	// Toggle en dos pasos condicionales, cada uno atómico en Mongo: dos
	// toggles concurrentes de usuarios distintos nunca se pisan. Si un
	// toggle concurrente del mismo usuario cambia el estado entre ambos
	// pasos, ninguna rama coincide: ahí hay que distinguir un post
	// inexistente de un like ausente y reintentar
	liked := false
	resolved := false
	for attempt := 0; attempt < 3 && !resolved; attempt++ {
		result, err := postsCollection.UpdateOne(
			c.Context(),
			bson.M{"_id": postID, "like": bson.M{"$ne": user.Id}},
			bson.M{
				"$addToSet": bson.M{"like": user.Id},
				"$set":      bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			slog.Error("failed to like post", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to update like",
			})
		}
		if result.MatchedCount == 1 {
			liked = true
			resolved = true
			break
		}

		// Ya tenía el like: quitarlo (unlike)
		result, err = postsCollection.UpdateOne(
			c.Context(),
			bson.M{"_id": postID, "like": user.Id},
			bson.M{
				"$pull": bson.M{"like": user.Id},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			slog.Error("failed to unlike post", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to update like",
			})
		}
		if result.MatchedCount == 1 {
			resolved = true
			break
		}

		count, err := postsCollection.CountDocuments(c.Context(), bson.M{"_id": postID})
		if err != nil {
			slog.Error("failed to check post existence", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to update like",
			})
		}
		if count == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Post not found",
			})
		}
	}

	if !resolved {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update like",
		})
	}

	// Leer el estado resultante para la respuesta y el broadcast
	var post models.Post
	err = postsCollection.FindOne(c.Context(), bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching post",
		})
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}

	// Notificar al autor solo en la transición a "liked", nunca en unlike
	if liked {
		CreateNotification(c, post.Author, models.NotificationTypeLike, user.Id, post.Id)
	}

	// Broadcast en tiempo real; nunca bloquea ni afecta la respuesta
	publish(realtime.Event{
		Name: "likeUpdated",
		Data: realtime.LikeUpdatedEvent{PostID: post.Id, Likes: post.Likes},
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"like": post.Likes,
	})
}

// CreateComment adds a new comment to a post by its ID
func CreateComment(c *fiber.Ctx) error {
	// Obtener ID del post desde los parámetros
	postIDStr := c.Params("id")
	postID, err := primitive.ObjectIDFromHex(postIDStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid post ID format",
		})
	}

	// Parsear el cuerpo de la solicitud
	type CreateCommentRequest struct {
		Content string `json:"content"`
	}

	var req CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	// Validar que el contenido no esté vacío tras recortar espacios
	content, ok := models.NormalizeComment(req.Content)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Comment content cannot be empty",
		})
	}

	// Obtener usuario autenticado del middleware
	user := c.Locals("user").(models.User)

	// Crear el nuevo comentario
	newComment := models.Comment{
		Id:        primitive.NewObjectID(),
		User:      user.Id,
		Content:   content,
		CreatedAt: time.Now(),
	}

	// Append atómico; comentarios concurrentes de distintos usuarios
	// aparecen todos
	update := bson.M{
		"$push": bson.M{
			"comment": newComment,
		},
		"$set": bson.M{
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	postsCollection := lib.DB.Collection("posts")
	var updatedPost models.Post
	err = postsCollection.FindOneAndUpdate(
		c.Context(),
		bson.M{"_id": postID},
		update,
		opts,
	).Decode(&updatedPost)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Post not found",
			})
		}
		slog.Error("failed to add comment", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to add comment",
		})
	}

	// Notificar al autor del post (suprimido si comenta sobre lo suyo)
	CreateNotification(c, updatedPost.Author, models.NotificationTypeComment, user.Id, updatedPost.Id)

	// Popular los comentarios para la respuesta y el broadcast
	populatedPost, err := lib.PopulatePosts(c, []models.Post{updatedPost})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error loading post details",
		})
	}

	publish(realtime.Event{
		Name: "commentAdded",
		Data: realtime.CommentAddedEvent{PostID: updatedPost.Id, Comments: populatedPost[0].Comments},
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"comment": populatedPost[0].Comments,
	})
}
