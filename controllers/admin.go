package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	db "farmlink/database"
	middlewares "farmlink/middleware"
	"farmlink/models"
	"farmlink/services"
	"farmlink/utils"
)

// GetUsers lists every canonical account.
func GetUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := models.ListUsers(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "data": users})
}

// GetUser returns one canonical account.
func GetUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// CreateUser is the admin account-creation path; image attachment
// optional.
func CreateUser(c *gin.Context) {
	var input struct {
		FullName string `form:"fullName" json:"fullName" binding:"required"`
		Phone    string `form:"phone" json:"phone" binding:"required"`
		Password string `form:"password" json:"password" binding:"required,min=6"`
		Role     string `form:"role" json:"role"`
		Address  string `form:"address" json:"address"`
		City     string `form:"city" json:"city"`
		District string `form:"district" json:"district"`
		Province string `form:"province" json:"province"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
		return
	}

	image, err := middlewares.SaveImage(c, "profile", input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := models.CreateUser(ctx, models.User{
		FullName: input.FullName,
		Phone:    input.Phone,
		Password: hash,
		Role:     input.Role,
		Image:    image,
		Address:  input.Address,
		City:     input.City,
		District: input.District,
		Province: input.Province,
	})
	if err != nil {
		if err == models.ErrDuplicatePhone {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "User already exists with that phone number"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}

// UpdateUser is the admin edit path. A new password is hashed here,
// at the write boundary; untouched passwords are never re-hashed.
func UpdateUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var existing models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	var input struct {
		FullName string `form:"fullName" json:"fullName"`
		Phone    string `form:"phone" json:"phone"`
		Password string `form:"password" json:"password"`
		Role     string `form:"role" json:"role"`
		Address  string `form:"address" json:"address"`
		City     string `form:"city" json:"city"`
		District string `form:"district" json:"district"`
		Province string `form:"province" json:"province"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fields := bson.M{}
	setIfPresent(fields, "fullName", input.FullName)
	setIfPresent(fields, "phone", input.Phone)
	setIfPresent(fields, "role", input.Role)
	setIfPresent(fields, "address", input.Address)
	setIfPresent(fields, "city", input.City)
	setIfPresent(fields, "district", input.District)
	setIfPresent(fields, "province", input.Province)

	if input.Password != "" {
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
			return
		}
		fields["password"] = hash
	}

	image, err := middlewares.SaveImage(c, "profile", existing.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if image != "" {
		removeUploadedImage(existing.Image)
		fields["image"] = image
	}

	updated := existing
	if len(fields) > 0 {
		updated, err = models.UpdateUser(ctx, id, fields)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteUser removes the canonical account record and its stored
// image.
func DeleteUser(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	removeUploadedImage(user.Image)

	if err := models.DeleteUser(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

func removeUploadedImage(image string) {
	if image == "" || image == models.DefaultImage {
		return
	}
	path := filepath.Join(middlewares.UploadDir(), image)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Println("Failed to delete image file:", err)
	}
}

// GetPendingProducts lists products awaiting verification.
func GetPendingProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products, err := models.ListPendingProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
		return
	}

	data := attachSellers(ctx, products)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// VerifyProduct approves a listing for public display.
func VerifyProduct(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.UpdateProduct(ctx, id, bson.M{"isVerified": true})
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to verify product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetSystemStats returns the dashboard counters.
func GetSystemStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totalUsers, err := db.UserCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count users"})
		return
	}
	pendingProducts, err := db.ProductCollection.CountDocuments(ctx, bson.M{"isVerified": false})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"totalUsers":      totalUsers,
		"pendingProducts": pendingProducts,
	}})
}

// Reconcile runs a shadow-consistency pass on demand.
func Reconcile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := services.ReconcileShadows(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Reconcile failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
