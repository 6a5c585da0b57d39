package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "farmlink/database"
)

var ErrDuplicateReview = errors.New("product already reviewed by this user")

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Rating    int                `json:"rating" bson:"rating"` // 1-5
	Text      string             `json:"text" bson:"text"`
	Product   primitive.ObjectID `json:"product" bson:"product"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CreateReview inserts a review. The unique (product, user) index
// rejects a second review for the same pair.
func CreateReview(ctx context.Context, review Review) (Review, error) {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()

	_, err := db.ReviewCollection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Review{}, ErrDuplicateReview
		}
		return Review{}, err
	}
	return review, nil
}

// GetReviewByID loads a single review.
func GetReviewByID(ctx context.Context, id primitive.ObjectID) (Review, error) {
	var review Review
	err := db.ReviewCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return review, nil
}

// FindReviewByProductAndUser returns the user's existing review for
// the product, if any.
func FindReviewByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (Review, error) {
	var review Review
	err := db.ReviewCollection.FindOne(ctx,
		bson.M{"product": productID, "user": userID}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return review, nil
}

// ListReviewsByProduct returns a product's reviews, newest first.
func ListReviewsByProduct(ctx context.Context, productID primitive.ObjectID) ([]Review, error) {
	cursor, err := db.ReviewCollection.Find(ctx, bson.M{"product": productID},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// UpdateReview applies the field set and returns the new document.
func UpdateReview(ctx context.Context, id primitive.ObjectID, fields bson.M) (Review, error) {
	var review Review
	err := db.ReviewCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return review, nil
}

// DeleteReview removes a review.
func DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	result, err := db.ReviewCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReviewsByProduct cascade-deletes a product's reviews.
func DeleteReviewsByProduct(ctx context.Context, productID primitive.ObjectID) error {
	_, err := db.ReviewCollection.DeleteMany(ctx, bson.M{"product": productID})
	return err
}
