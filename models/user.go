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

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

const DefaultImage = "no-photo.jpg"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicatePhone = errors.New("phone number already registered")
)

// GeoPoint is a GeoJSON point, coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// User is an account record. The same document shape is stored in the
// canonical "users" collection and, for buyers and sellers, duplicated
// into the matching shadow collection under the same _id.
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Phone     string             `json:"phone" bson:"phone"`
	FullName  string             `json:"fullName" bson:"fullName"`
	Password  string             `json:"-" bson:"password"`
	Role      string             `json:"role" bson:"role"`
	Image     string             `json:"image" bson:"image"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Dob       string             `json:"dob,omitempty" bson:"dob,omitempty"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	City      string             `json:"city,omitempty" bson:"city,omitempty"`
	District  string             `json:"district,omitempty" bson:"district,omitempty"`
	Province  string             `json:"province,omitempty" bson:"province,omitempty"`
	AltPhone  string             `json:"altPhone,omitempty" bson:"altPhone,omitempty"`
	Location  GeoPoint           `json:"location" bson:"location"`
	IsAdmin   bool               `json:"isAdmin,omitempty" bson:"isAdmin,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CollectionForRole maps a role to its shadow collection: "seller"
// goes to farmers, everything else to buyers.
func CollectionForRole(role string) *mongo.Collection {
	if role == RoleSeller {
		return db.FarmerCollection
	}
	return db.BuyerCollection
}

// StaleShadowCollection is the shadow store an account leaves behind
// when its role changes away from it.
func StaleShadowCollection(role string) *mongo.Collection {
	if role == RoleSeller {
		return db.BuyerCollection
	}
	return db.FarmerCollection
}

// CreateUser inserts the account into the canonical users collection
// and, for buyers and sellers, duplicates it into the shadow
// collection with the same _id. The shadow write is best effort; only
// a duplicate phone aborts registration.
func CreateUser(ctx context.Context, user User) (User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Role == "" {
		user.Role = RoleBuyer
	}
	if user.Image == "" {
		user.Image = DefaultImage
	}
	if user.Location.Type == "" {
		user.Location = GeoPoint{Type: "Point", Coordinates: []float64{0, 0}}
	}
	user.CreatedAt = time.Now()

	_, err := db.UserCollection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return User{}, ErrDuplicatePhone
		}
		return User{}, err
	}

	if user.Role == RoleBuyer || user.Role == RoleSeller {
		_, err = CollectionForRole(user.Role).InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return User{}, ErrDuplicatePhone
			}
			return User{}, err
		}
	}

	return user, nil
}

// FindUserByPhone looks the phone up in the canonical collection
// first, then the buyer and farmer shadows in that order.
func FindUserByPhone(ctx context.Context, phone string) (User, error) {
	var user User
	for _, coll := range []*mongo.Collection{db.UserCollection, db.BuyerCollection, db.FarmerCollection} {
		err := coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
		if err == nil {
			return user, nil
		}
		if err != mongo.ErrNoDocuments {
			return User{}, err
		}
	}
	return User{}, ErrNotFound
}

// FindUserByID loads an account by id from the collection selected
// for the given role, falling back to the canonical collection. An
// empty role (legacy tokens carried none) scans every store.
func FindUserByID(ctx context.Context, id primitive.ObjectID, role string) (User, error) {
	var colls []*mongo.Collection
	if role == "" {
		colls = []*mongo.Collection{db.BuyerCollection, db.FarmerCollection, db.UserCollection}
	} else {
		colls = []*mongo.Collection{CollectionForRole(role), db.UserCollection}
	}

	var user User
	for _, coll := range colls {
		err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
		if err == nil {
			return user, nil
		}
		if err != mongo.ErrNoDocuments {
			return User{}, err
		}
	}
	return User{}, ErrNotFound
}

// UpdateUser applies the field set to the canonical record, then
// replaces the shadow copy for the account's current role with the
// updated document, creating it when a role change moved the account
// to a store it never lived in. The old role's shadow is dropped when
// the field set changed the role. The writes are not atomic; a partial
// failure leaves the shadows stale until the reconciler repairs them.
func UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) (User, error) {
	var user User
	err := db.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	if user.Role == RoleBuyer || user.Role == RoleSeller {
		_, err = CollectionForRole(user.Role).ReplaceOne(ctx,
			bson.M{"_id": id}, user,
			options.Replace().SetUpsert(true))
		if err != nil {
			return user, err
		}
		if _, changed := fields["role"]; changed {
			_, err = StaleShadowCollection(user.Role).DeleteOne(ctx, bson.M{"_id": id})
			if err != nil {
				return user, err
			}
		}
	}

	return user, nil
}

// DeleteUser removes the canonical record only, matching the
// administrative delete path.
func DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	result, err := db.UserCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns every canonical account.
func ListUsers(ctx context.Context) ([]User, error) {
	cursor, err := db.UserCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// NearbySellerIDs finds seller accounts within radius meters of the
// given point using the 2dsphere index on the canonical collection.
func NearbySellerIDs(ctx context.Context, lat, lng float64, radius int) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"role": RoleSeller,
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radius,
			},
		},
	}

	cursor, err := db.UserCollection.Find(ctx, filter,
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
