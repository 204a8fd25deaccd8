package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	Id          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Author      primitive.ObjectID   `json:"author" bson:"author"`
	Description string               `json:"description" bson:"description"`
	Image       string               `json:"image" bson:"image"`
	Likes       []primitive.ObjectID `json:"like" bson:"like"`
	Comments    []Comment            `json:"comment" bson:"comment"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type Comment struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

type PostDto struct {
	ID          primitive.ObjectID   `json:"id"`
	Author      UserDto              `json:"author"`
	Description string               `json:"description,omitempty"`
	Image       string               `json:"image,omitempty"`
	Likes       []primitive.ObjectID `json:"like"`
	Comments    []CommentDto         `json:"comment"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type CommentDto struct {
	ID        primitive.ObjectID `json:"id"`
	User      UserDto            `json:"user"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NormalizeComment trims the submitted text and reports whether anything
// is left to append. Whitespace-only comments are rejected.
func NormalizeComment(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	return trimmed, trimmed != ""
}
