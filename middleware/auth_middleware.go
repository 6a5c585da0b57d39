package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"farmlink/models"
	"farmlink/utils"
)

// TokenFromRequest pulls the bearer token from the Authorization
// header, falling back to the token cookie. Header wins when both are
// present.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// Protect verifies the bearer token and loads the full account from
// the store matching the token's role. Legacy tokens without a role
// claim trigger a scan across every account store. The account lands
// in the context under "user".
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
			c.Abort()
			return
		}

		id, role, err := utils.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
			c.Abort()
			return
		}

		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		user, err := models.FindUserByID(ctx, objID, role)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to access this route"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// Authorize grants access when the account's role is in the allowed
// set, or the account carries the admin flag.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user.IsAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "User role " + user.Role + " is not authorized to access this route",
		})
		c.Abort()
	}
}

// CurrentUser returns the account Protect stored on the context.
func CurrentUser(c *gin.Context) models.User {
	user, _ := c.Get("user")
	account, _ := user.(models.User)
	return account
}
