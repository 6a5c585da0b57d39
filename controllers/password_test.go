package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	db "farmlink/database"
	"farmlink/models"
	"farmlink/utils"
)

func TestUpdatePasswordReturnsCurrentAccountState(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("response reflects the stored record, not the login snapshot", func(mt *mtest.T) {
		mt.Setenv("JWT_SECRET", "test-secret")
		d := mt.Client.Database("farmlink_db")
		db.UserCollection = d.Collection("users")
		db.BuyerCollection = d.Collection("buyers")
		db.FarmerCollection = d.Collection("farmers")

		hash, err := utils.HashPassword("oldpassword")
		require.NoError(mt, err)
		user := models.User{
			ID:       primitive.NewObjectID(),
			FullName: "Stale Snapshot",
			Password: hash,
			Role:     models.RoleBuyer,
		}

		mt.AddMockResponses(
			// canonical update returns the current record
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: user.ID},
				{Key: "fullName", Value: "Fresh Record"},
				{Key: "role", Value: models.RoleBuyer},
			}}),
			// shadow replace
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		r := gin.New()
		r.PUT("/updatepassword", func(c *gin.Context) {
			c.Set("user", user)
		}, UpdatePassword)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/updatepassword",
			strings.NewReader(`{"currentPassword":"oldpassword","newPassword":"newpassword1"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(mt, http.StatusOK, w.Code)
		assert.Contains(mt, w.Body.String(), "Fresh Record")
		assert.NotContains(mt, w.Body.String(), "Stale Snapshot")
	})

	mt.Run("wrong current password is rejected", func(mt *mtest.T) {
		mt.Setenv("JWT_SECRET", "test-secret")

		hash, err := utils.HashPassword("oldpassword")
		require.NoError(mt, err)
		user := models.User{ID: primitive.NewObjectID(), Password: hash, Role: models.RoleBuyer}

		r := gin.New()
		r.PUT("/updatepassword", func(c *gin.Context) {
			c.Set("user", user)
		}, UpdatePassword)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/updatepassword",
			strings.NewReader(`{"currentPassword":"guess","newPassword":"newpassword1"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(mt, http.StatusUnauthorized, w.Code)
	})
}
