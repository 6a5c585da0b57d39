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

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterValidation(t *testing.T) {
	r := gin.New()
	r.POST("/register", Register)

	w := postJSON(r, "/register", `{"phone":"0812345678"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/register", `{"fullName":"Somchai","phone":"0812345678","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(r, "/register", `{"fullName":"Somchai","phone":"0812345678","password":"secret123","role":"wizard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid role")
}

func TestLoginValidation(t *testing.T) {
	r := gin.New()
	r.POST("/login", Login)

	for _, body := range []string{`{}`, `{"phone":"0812345678"}`, `{"password":"secret123"}`, `not json`} {
		w := postJSON(r, "/login", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "Please provide phone and password")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r := gin.New()
	r.POST("/logout", Logout)

	w := postJSON(r, "/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == "token" {
			found = true
			assert.Empty(t, cookie.Value)
			assert.Negative(t, cookie.MaxAge)
		}
	}
	assert.True(t, found, "expected the token cookie to be cleared")
}

func TestLoginErrorsDoNotLeakWhichCredentialFailed(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown phone and wrong password are indistinguishable", func(mt *mtest.T) {
		d := mt.Client.Database("farmlink_db")
		db.UserCollection = d.Collection("users")
		db.BuyerCollection = d.Collection("buyers")
		db.FarmerCollection = d.Collection("farmers")

		r := gin.New()
		r.POST("/login", Login)

		// phone registered nowhere: users, buyers, farmers all miss
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "farmlink_db.users", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "farmlink_db.buyers", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "farmlink_db.farmers", mtest.FirstBatch),
		)
		unknownPhone := postJSON(r, "/login", `{"phone":"0800000000","password":"whatever1"}`)

		hash, err := utils.HashPassword("rightpassword")
		require.NoError(mt, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "farmlink_db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "phone", Value: "0812345678"},
			{Key: "password", Value: hash},
			{Key: "role", Value: models.RoleBuyer},
		}))
		wrongPassword := postJSON(r, "/login", `{"phone":"0812345678","password":"not-the-password"}`)

		assert.Equal(mt, http.StatusUnauthorized, unknownPhone.Code)
		assert.Equal(mt, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(mt, unknownPhone.Body.String(), wrongPassword.Body.String())
	})
}
