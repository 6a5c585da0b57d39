package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	middlewares "farmlink/middleware"
	"farmlink/models"
	"farmlink/utils"
)

// UpdatePassword changes the caller's password. The new password is
// hashed here, at the write boundary, and the hash is propagated to
// the shadow copy alongside the canonical record.
func UpdatePassword(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !utils.CheckPassword(input.CurrentPassword, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Current password is incorrect"})
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updated, err := models.UpdateUser(ctx, user.ID, bson.M{"password": hash})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update password"})
		return
	}

	sendTokenResponse(c, http.StatusOK, updated)
}
