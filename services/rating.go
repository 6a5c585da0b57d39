package services

import (
	"context"
	"log"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	db "farmlink/database"
)

// Round1 rounds to one decimal place, the precision stored on the
// product's aggregate rating.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RecomputeProductRating recalculates a product's average rating and
// review count from its current review set and persists both. A
// product with no reviews resets to (0, 0). Review controllers call
// this synchronously after every create, update, and delete,
// including update paths that mutate fields directly.
func RecomputeProductRating(ctx context.Context, productID primitive.ObjectID) error {
	pipeline := []bson.M{
		{"$match": bson.M{"product": productID}},
		{"$group": bson.M{
			"_id":           "$product",
			"averageRating": bson.M{"$avg": "$rating"},
			"numOfReviews":  bson.M{"$sum": 1},
		}},
	}

	cursor, err := db.ReviewCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var results []struct {
		AverageRating float64 `bson:"averageRating"`
		NumOfReviews  int     `bson:"numOfReviews"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return err
	}

	averageRating := 0.0
	numOfReviews := 0
	if len(results) > 0 {
		averageRating = Round1(results[0].AverageRating)
		numOfReviews = results[0].NumOfReviews
	}

	_, err = db.ProductCollection.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"averageRating": averageRating, "numOfReviews": numOfReviews}})
	if err != nil {
		log.Printf("Failed to update rating for product %s: %v", productID.Hex(), err)
	}
	return err
}
