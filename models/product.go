package models

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "farmlink/database"
)

// Categories a product listing may carry.
var ProductCategories = []string{"Vegetables", "Fruits", "Grains", "Others"}

type Product struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	Quantity      string             `json:"quantity" bson:"quantity"` // free form, e.g. "500kg"
	Category      string             `json:"category" bson:"category"`
	Image         string             `json:"image" bson:"image"`
	IsVerified    bool               `json:"isVerified" bson:"isVerified"`
	Seller        primitive.ObjectID `json:"seller" bson:"seller"`
	AverageRating float64            `json:"averageRating" bson:"averageRating"`
	NumOfReviews  int                `json:"numOfReviews" bson:"numOfReviews"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

// ValidCategory reports whether cat is one of the listing categories.
func ValidCategory(cat string) bool {
	for _, c := range ProductCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// CreateProduct inserts a new listing. Listings start unverified and
// stay off the public list until an admin approves them.
func CreateProduct(ctx context.Context, product Product) (Product, error) {
	product.ID = primitive.NewObjectID()
	if product.Category == "" {
		product.Category = "Others"
	}
	if product.Image == "" {
		product.Image = DefaultImage
	}
	product.IsVerified = false
	product.AverageRating = 0
	product.NumOfReviews = 0
	product.CreatedAt = time.Now()

	_, err := db.ProductCollection.InsertOne(ctx, product)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

// GetProductByID loads a single listing.
func GetProductByID(ctx context.Context, id primitive.ObjectID) (Product, error) {
	var product Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

// ListVerifiedProducts returns publicly visible listings, optionally
// restricted to the given seller ids (geospatial filter path).
func ListVerifiedProducts(ctx context.Context, sellerIDs []primitive.ObjectID) ([]Product, error) {
	filter := bson.M{"isVerified": true}
	if sellerIDs != nil {
		filter["seller"] = bson.M{"$in": sellerIDs}
	}

	cursor, err := db.ProductCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchVerifiedProducts matches the keyword against listing names
// and descriptions, case-insensitively. Only verified listings are
// searchable.
func SearchVerifiedProducts(ctx context.Context, keyword string) ([]Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	filter := bson.M{
		"isVerified": true,
		"$or": []bson.M{
			{"name": pattern},
			{"description": pattern},
		},
	}

	cursor, err := db.ProductCollection.Find(ctx, filter,
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductsBySeller returns a seller's own listings regardless of
// verification state.
func ListProductsBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]Product, error) {
	cursor, err := db.ProductCollection.Find(ctx, bson.M{"seller": sellerID},
		options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListPendingProducts returns listings awaiting admin verification.
func ListPendingProducts(ctx context.Context) ([]Product, error) {
	cursor, err := db.ProductCollection.Find(ctx, bson.M{"isVerified": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct applies the field set and returns the new document.
func UpdateProduct(ctx context.Context, id primitive.ObjectID, fields bson.M) (Product, error) {
	var product Product
	err := db.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

// DeleteProduct removes the listing. Its reviews are cascade-deleted
// by the controller.
func DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	result, err := db.ProductCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
