package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	db "farmlink/database"
	"farmlink/models"
)

func reviewRouter(user models.User) *gin.Engine {
	r := gin.New()
	r.POST("/products/:id/reviews", func(c *gin.Context) {
		c.Set("user", user)
	}, AddReview)
	return r
}

func postReview(r *gin.Engine, productID primitive.ObjectID, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products/"+productID.Hex()+"/reviews", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func bindReviewCollections(mt *mtest.T) {
	d := mt.Client.Database("farmlink_db")
	db.ProductCollection = d.Collection("products")
	db.ReviewCollection = d.Collection("reviews")
}

func TestAddReviewUpdatesExistingInPlace(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second post updates, never inserts", func(mt *mtest.T) {
		bindReviewCollections(mt)

		buyer := models.User{ID: primitive.NewObjectID(), Role: models.RoleBuyer}
		productID := primitive.NewObjectID()
		reviewID := primitive.NewObjectID()

		mt.AddMockResponses(
			// product lookup
			mtest.CreateCursorResponse(0, "farmlink_db.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "name", Value: "Organic Rice"},
				{Key: "seller", Value: primitive.NewObjectID()},
			}),
			// the buyer's existing review
			mtest.CreateCursorResponse(0, "farmlink_db.reviews", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: reviewID},
				{Key: "rating", Value: 2},
				{Key: "text", Value: "mediocre"},
				{Key: "product", Value: productID},
				{Key: "user", Value: buyer.ID},
			}),
			// in-place update
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: reviewID},
				{Key: "rating", Value: 5},
				{Key: "text", Value: "much better this season"},
				{Key: "product", Value: productID},
				{Key: "user", Value: buyer.ID},
			}}),
			// rating recompute: aggregate then product update
			mtest.CreateCursorResponse(0, "farmlink_db.reviews", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "averageRating", Value: 5.0},
				{Key: "numOfReviews", Value: 1},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		w := postReview(reviewRouter(buyer), productID, `{"rating":5,"text":"much better this season"}`)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), "much better this season")

		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			assert.NotEqual(mt, "insert", evt.CommandName)
		}
	})
}

func TestAddReviewCreatesFirstReview(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first review inserts and recomputes", func(mt *mtest.T) {
		bindReviewCollections(mt)

		buyer := models.User{ID: primitive.NewObjectID(), Role: models.RoleBuyer}
		productID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "farmlink_db.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "seller", Value: primitive.NewObjectID()},
			}),
			// no existing review
			mtest.CreateCursorResponse(0, "farmlink_db.reviews", mtest.FirstBatch),
			// insert
			mtest.CreateSuccessResponse(),
			// recompute
			mtest.CreateCursorResponse(0, "farmlink_db.reviews", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "averageRating", Value: 4.0},
				{Key: "numOfReviews", Value: 1},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		w := postReview(reviewRouter(buyer), productID, `{"rating":4,"text":"fresh and fast"}`)
		assert.Equal(mt, http.StatusCreated, w.Code)
	})
}

func TestAddReviewSurvivesRecomputeFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stored review still returns 201", func(mt *mtest.T) {
		bindReviewCollections(mt)

		buyer := models.User{ID: primitive.NewObjectID(), Role: models.RoleBuyer}
		productID := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "farmlink_db.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: productID},
				{Key: "seller", Value: primitive.NewObjectID()},
			}),
			mtest.CreateCursorResponse(0, "farmlink_db.reviews", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
			// aggregate fails; the review is already stored
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11600,
				Message: "interrupted at shutdown",
				Name:    "InterruptedAtShutdown",
			}),
		)

		w := postReview(reviewRouter(buyer), productID, `{"rating":4,"text":"fresh and fast"}`)
		assert.Equal(mt, http.StatusCreated, w.Code)
	})
}

func TestAddReviewRejectsOwnProduct(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("seller cannot review own listing", func(mt *mtest.T) {
		bindReviewCollections(mt)

		seller := models.User{ID: primitive.NewObjectID(), Role: models.RoleSeller}
		productID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "farmlink_db.products", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: productID},
			{Key: "seller", Value: seller.ID},
		}))

		w := postReview(reviewRouter(seller), productID, `{"rating":5,"text":"excellent"}`)
		assert.Equal(mt, http.StatusBadRequest, w.Code)
		assert.Contains(mt, w.Body.String(), "You cannot review your own product")
	})
}
