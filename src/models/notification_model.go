package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	Id          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Recipient   primitive.ObjectID `json:"recipient" bson:"recipient"`
	Type        NotificationType   `json:"type" bson:"type"`
	RelatedUser primitive.ObjectID `json:"relatedUser" bson:"relatedUser"`
	RelatedPost primitive.ObjectID `json:"relatedPost,omitempty" bson:"relatedPost,omitempty"`
	Read        bool               `json:"read" bson:"read"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type NotificationType string

const (
	NotificationTypeLike               NotificationType = "like"
	NotificationTypeComment            NotificationType = "comment"
	NotificationTypeConnectionAccepted NotificationType = "connectionAccepted"
)

// PostPreview is the truncated post the notification list embeds.
type PostPreview struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image,omitempty" bson:"image"`
}

type NotificationDto struct {
	ID          primitive.ObjectID `json:"id"`
	Recipient   primitive.ObjectID `json:"recipient"`
	Type        NotificationType   `json:"type"`
	RelatedUser *UserDto           `json:"relatedUser,omitempty"`
	RelatedPost *PostPreview       `json:"relatedPost,omitempty"`
	Read        bool               `json:"read"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
