package lib

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var DB *mongo.Database

// ConnectDB initializes the MongoDB connection and sets the global DB variable
func ConnectDB() {
	uri := os.Getenv("MONGODB_URL")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "linkup"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	if err := client.Ping(ctx, nil); err != nil {
		panic("Failed to ping database: " + err.Error())
	}

	DB = client.Database(dbName)

	slog.Info("Connected to MongoDB", "database", dbName)
}

// EnsureIndexes creates the indexes the queries depend on. Safe to run on
// every startup; Mongo ignores already-existing definitions.
func EnsureIndexes(ctx context.Context) error {
	users := DB.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userName", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	connections := DB.Collection("connections")
	_, err = connections.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "status", Value: 1}}},
		// Solo puede existir una solicitud pendiente por par de usuarios,
		// sin importar la dirección
		{
			Keys: bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
	})
	if err != nil {
		return err
	}

	notifications := DB.Collection("notifications")
	_, err = notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
