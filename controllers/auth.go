package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middlewares "farmlink/middleware"
	"farmlink/models"
	"farmlink/utils"
)

// sendTokenResponse issues a bearer token for the account, sets it as
// a cookie, and writes the standard auth envelope.
func sendTokenResponse(c *gin.Context, status int, user models.User) {
	token, err := utils.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.SetCookie("token", token, utils.TokenExpireDays()*24*3600, "/", "", false, true)
	c.JSON(status, gin.H{"success": true, "token": token, "data": user})
}

// Register creates an account in the canonical store and, for buyers
// and sellers, the matching shadow store.
func Register(c *gin.Context) {
	var input struct {
		FullName string  `json:"fullName" binding:"required"`
		Phone    string  `json:"phone" binding:"required"`
		Password string  `json:"password" binding:"required,min=6"`
		Role     string  `json:"role"`
		Address  string  `json:"address"`
		City     string  `json:"city"`
		District string  `json:"district"`
		Province string  `json:"province"`
		Email    string  `json:"email"`
		Dob      string  `json:"dob"`
		AltPhone string  `json:"altPhone"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if input.Role != "" && input.Role != models.RoleBuyer && input.Role != models.RoleSeller && input.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid role"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
		return
	}

	user := models.User{
		FullName: input.FullName,
		Phone:    input.Phone,
		Password: hash,
		Role:     input.Role,
		Address:  input.Address,
		City:     input.City,
		District: input.District,
		Province: input.Province,
		Email:    input.Email,
		Dob:      input.Dob,
		AltPhone: input.AltPhone,
		Location: models.GeoPoint{Type: "Point", Coordinates: []float64{input.Lng, input.Lat}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err = models.CreateUser(ctx, user)
	if err != nil {
		if err == models.ErrDuplicatePhone {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to register"})
		return
	}

	sendTokenResponse(c, http.StatusCreated, user)
}

// Login authenticates by phone and password. An unknown phone and a
// wrong password produce the same error.
func Login(c *gin.Context) {
	var input struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Phone == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Please provide phone and password"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := models.FindUserByPhone(ctx, input.Phone)
	if err != nil || !utils.CheckPassword(input.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	sendTokenResponse(c, http.StatusOK, user)
}

// Logout clears the auth cookie.
func Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMe returns the caller's account.
func GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": middlewares.CurrentUser(c)})
}

// UpdateDetails updates the caller's profile, optionally replacing
// the profile image. The canonical record is written first, then the
// shadow copy for the caller's role.
func UpdateDetails(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	if c.Param("id") != user.ID.Hex() {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to update this user"})
		return
	}

	var input struct {
		FullName string   `form:"fullName" json:"fullName"`
		Address  string   `form:"address" json:"address"`
		City     string   `form:"city" json:"city"`
		District string   `form:"district" json:"district"`
		Province string   `form:"province" json:"province"`
		Email    string   `form:"email" json:"email"`
		Dob      string   `form:"dob" json:"dob"`
		AltPhone string   `form:"altPhone" json:"altPhone"`
		Lat      *float64 `form:"lat" json:"lat"`
		Lng      *float64 `form:"lng" json:"lng"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fields := bson.M{}
	setIfPresent(fields, "fullName", input.FullName)
	setIfPresent(fields, "address", input.Address)
	setIfPresent(fields, "city", input.City)
	setIfPresent(fields, "district", input.District)
	setIfPresent(fields, "province", input.Province)
	setIfPresent(fields, "email", input.Email)
	setIfPresent(fields, "dob", input.Dob)
	setIfPresent(fields, "altPhone", input.AltPhone)
	if input.Lat != nil && input.Lng != nil {
		fields["location"] = models.GeoPoint{Type: "Point", Coordinates: []float64{*input.Lng, *input.Lat}}
	}

	image, err := middlewares.SaveImage(c, "profile", user.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if image != "" {
		fields["image"] = image
	}

	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updated, err := models.UpdateUser(ctx, user.ID, fields)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

func setIfPresent(fields bson.M, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

// parseObjectID is shared by handlers taking an :id param.
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
