package lib

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theleywin/Backend-Link-Up/src/models"
)

// PopulatePosts resolves author and comment-user references into display
// profiles, the manual equivalent of Mongoose populate().
func PopulatePosts(c *fiber.Ctx, posts []models.Post) ([]models.PostDto, error) {
	// Reunir todos los IDs de usuarios referenciados (autores y comentaristas)
	idSet := make(map[primitive.ObjectID]struct{})
	for _, post := range posts {
		idSet[post.Author] = struct{}{}
		for _, comment := range post.Comments {
			idSet[comment.User] = struct{}{}
		}
	}

	userIDs := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		userIDs = append(userIDs, id)
	}

	// Buscar todos los perfiles en una sola consulta
	users := make(map[primitive.ObjectID]models.UserDto, len(userIDs))
	if len(userIDs) > 0 {
		opts := options.Find().SetProjection(bson.M{
			"firstName":    1,
			"lastName":     1,
			"userName":     1,
			"profileImage": 1,
			"headline":     1,
		})

		cursor, err := DB.Collection("users").Find(c.Context(), bson.M{"_id": bson.M{"$in": userIDs}}, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(c.Context())

		var docs []models.UserDto
		if err := cursor.All(c.Context(), &docs); err != nil {
			return nil, err
		}
		for _, doc := range docs {
			users[doc.ID] = doc
		}
	}

	// Armar los DTOs; un autor borrado deja el perfil vacío en lugar de fallar
	dtos := make([]models.PostDto, 0, len(posts))
	for _, post := range posts {
		author, ok := users[post.Author]
		if !ok {
			slog.Warn("post author not found while populating", "post", post.Id.Hex())
		}

		dto := models.PostDto{
			ID:          post.Id,
			Author:      author,
			Description: post.Description,
			Image:       post.Image,
			Likes:       post.Likes,
			CreatedAt:   post.CreatedAt,
			UpdatedAt:   post.UpdatedAt,
		}
		if dto.Likes == nil {
			dto.Likes = []primitive.ObjectID{}
		}

		dto.Comments = make([]models.CommentDto, 0, len(post.Comments))
		for _, comment := range post.Comments {
			dto.Comments = append(dto.Comments, models.CommentDto{
				ID:        comment.Id,
				User:      users[comment.User],
				Content:   comment.Content,
				CreatedAt: comment.CreatedAt,
			})
		}

		dtos = append(dtos, dto)
	}

	return dtos, nil
}
