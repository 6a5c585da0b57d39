package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbName = "farmlink_db"

// Client is the shared MongoDB connection.
var Client *mongo.Client

// Account records live in three collections: "users" is canonical,
// "buyers" and "farmers" hold role-specific shadow copies that share
// the canonical _id.
var UserCollection *mongo.Collection
var BuyerCollection *mongo.Collection
var FarmerCollection *mongo.Collection

var ProductCollection *mongo.Collection
var ReviewCollection *mongo.Collection
var ChatCollection *mongo.Collection
var MessageCollection *mongo.Collection

// InitDB connects to MongoDB and binds the collection handles.
func InitDB() {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI not set in .env")
	}

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}

	Client = client
	UserCollection = client.Database(dbName).Collection("users")
	BuyerCollection = client.Database(dbName).Collection("buyers")
	FarmerCollection = client.Database(dbName).Collection("farmers")
	ProductCollection = client.Database(dbName).Collection("products")
	ReviewCollection = client.Database(dbName).Collection("reviews")
	ChatCollection = client.Database(dbName).Collection("chats")
	MessageCollection = client.Database(dbName).Collection("messages")

	log.Println("Connected to MongoDB")
}

// EnsureIndexes creates the indexes the data model relies on: unique
// phone per account collection, one review per (product, user) pair,
// and a 2dsphere index for nearby-seller queries.
func EnsureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	phoneIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{UserCollection, BuyerCollection, FarmerCollection} {
		if _, err := coll.Indexes().CreateOne(ctx, phoneIndex); err != nil {
			log.Println("Failed to create phone index on", coll.Name(), ":", err)
		}
	}

	_, err := ReviewCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("Failed to create review index:", err)
	}

	_, err = UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		log.Println("Failed to create location index:", err)
	}
}

// DisconnectDB closes the MongoDB connection.
func DisconnectDB() {
	if Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Client.Disconnect(ctx)
	if err != nil {
		log.Println("Failed to disconnect MongoDB:", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// OpenCollection returns a collection handle by name.
func OpenCollection(collectionName string) *mongo.Collection {
	return Client.Database(dbName).Collection(collectionName)
}
