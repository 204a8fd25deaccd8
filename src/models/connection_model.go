package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Connection struct {
	Id        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Sender    primitive.ObjectID `json:"sender" bson:"sender"`
	Receiver  primitive.ObjectID `json:"receiver" bson:"receiver"`
	PairKey   string             `json:"-" bson:"pairKey"`
	Status    ConnectionStatus   `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ConnectionPairKey normalizes the unordered pair {a,b} into one key.
// A partial unique index on it, filtered to pending, makes the store
// enforce at most one pending request per pair even under racing sends.
func ConnectionPairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if bh < ah {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// RelationStatus is what GET /connection/getstatus reports to the client.
type RelationStatus string

const (
	RelationConnected    RelationStatus = "connected"
	RelationPending      RelationStatus = "pending"
	RelationReceived     RelationStatus = "received"
	RelationNotConnected RelationStatus = "not_connected"
)

// Relation derives the viewer-facing status from a pending request between
// the two users, if any. connected takes precedence over any stale request.
func Relation(viewer primitive.ObjectID, connected bool, pending *Connection) RelationStatus {
	if connected {
		return RelationConnected
	}
	if pending == nil {
		return RelationNotConnected
	}
	if pending.Sender == viewer {
		return RelationPending
	}
	return RelationReceived
}

// ConnectionRequestDto is a pending request enriched with the sender's
// display profile for the requests inbox.
type ConnectionRequestDto struct {
	ID        primitive.ObjectID `json:"_id"`
	Sender    UserDto            `json:"sender"`
	Receiver  primitive.ObjectID `json:"receiver"`
	Status    ConnectionStatus   `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
