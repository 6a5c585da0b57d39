package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "farmlink/database"
	"farmlink/models"
)

// ReconcileResult summarizes one reconciler pass over the shadow
// collections.
type ReconcileResult struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

// ReconcileShadows walks every canonical buyer and seller account,
// upserts its shadow copy where the shadow is missing or has drifted,
// and drops any copy left behind in the other role's store by a role
// change. The dual-write on register/update is not atomic, so drift
// is expected; this pass is the repair path.
func ReconcileShadows(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	cursor, err := db.UserCollection.Find(ctx, bson.M{
		"role": bson.M{"$in": []string{models.RoleBuyer, models.RoleSeller}},
	})
	if err != nil {
		return result, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			result.Failed++
			continue
		}
		result.Checked++

		shadowColl := models.CollectionForRole(user.Role)
		repaired := false

		var shadow models.User
		err := shadowColl.FindOne(ctx, bson.M{"_id": user.ID}).Decode(&shadow)
		if err != nil && err != mongo.ErrNoDocuments {
			result.Failed++
			continue
		}
		if err == mongo.ErrNoDocuments || !shadowMatches(user, shadow) {
			_, err = shadowColl.ReplaceOne(ctx,
				bson.M{"_id": user.ID}, user,
				options.Replace().SetUpsert(true))
			if err != nil {
				log.Printf("Reconcile: failed to repair shadow for %s: %v", user.ID.Hex(), err)
				result.Failed++
				continue
			}
			repaired = true
		}

		stale, err := models.StaleShadowCollection(user.Role).DeleteOne(ctx, bson.M{"_id": user.ID})
		if err != nil {
			log.Printf("Reconcile: failed to drop stale shadow for %s: %v", user.ID.Hex(), err)
			result.Failed++
			continue
		}
		if stale.DeletedCount > 0 {
			repaired = true
		}

		if repaired {
			result.Repaired++
		}
	}

	return result, cursor.Err()
}

func shadowMatches(canonical, shadow models.User) bool {
	return canonical.Phone == shadow.Phone &&
		canonical.FullName == shadow.FullName &&
		canonical.Password == shadow.Password &&
		canonical.Image == shadow.Image &&
		canonical.Address == shadow.Address &&
		canonical.City == shadow.City &&
		canonical.District == shadow.District &&
		canonical.Province == shadow.Province
}

// StartReconciler schedules the nightly reconciler pass and returns
// the cron so main can stop it on shutdown.
func StartReconciler() *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		result, err := ReconcileShadows(ctx)
		if err != nil {
			log.Println("Reconciler pass failed:", err)
			return
		}
		log.Printf("Reconciler pass: checked=%d repaired=%d failed=%d",
			result.Checked, result.Repaired, result.Failed)
	})
	if err != nil {
		log.Println("Failed to schedule reconciler:", err)
	}
	c.Start()
	return c
}
