package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middlewares "farmlink/middleware"
	"farmlink/models"
	"farmlink/services"
)

// GetReviews lists a product's reviews, newest first.
func GetReviews(c *gin.Context) {
	productID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reviews, err := models.ListReviewsByProduct(ctx, productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(reviews), "data": reviews})
}

// GetReview returns a single review.
func GetReview(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review, err := models.GetReviewByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No review found with that ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": review})
}

// AddReview creates the caller's review for a product, or updates the
// existing one: a (product, user) pair never holds two reviews. The
// product's aggregate rating is recomputed before responding.
func AddReview(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	productID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Rating int    `json:"rating" binding:"required,min=1,max=5"`
		Text   string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.GetProductByID(ctx, productID)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No product found with that ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
		return
	}

	if product.Seller == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "You cannot review your own product"})
		return
	}

	existing, err := models.FindReviewByProductAndUser(ctx, productID, user.ID)
	if err == nil {
		updated, err := models.UpdateReview(ctx, existing.ID, bson.M{
			"rating":    input.Rating,
			"text":      input.Text,
			"createdAt": time.Now(),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update review"})
			return
		}
		recomputeRating(ctx, productID)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
		return
	}
	if err != models.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch review"})
		return
	}

	review, err := models.CreateReview(ctx, models.Review{
		Rating:  input.Rating,
		Text:    input.Text,
		Product: productID,
		User:    user.ID,
	})
	if err != nil {
		if err == models.ErrDuplicateReview {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save review"})
		return
	}

	recomputeRating(ctx, productID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": review})
}

// UpdateReview edits a review. Author or admin only; the aggregate is
// recomputed even though this path bypasses AddReview.
func UpdateReview(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review, err := models.GetReviewByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No review found with that ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch review"})
		return
	}

	if review.User != user.ID && user.Role != models.RoleAdmin && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to update review"})
		return
	}

	var input struct {
		Rating int    `json:"rating" binding:"omitempty,min=1,max=5"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fields := bson.M{}
	if input.Rating != 0 {
		fields["rating"] = input.Rating
	}
	setIfPresent(fields, "text", input.Text)

	updated := review
	if len(fields) > 0 {
		updated, err = models.UpdateReview(ctx, id, fields)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update review"})
			return
		}
		recomputeRating(ctx, review.Product)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteReview removes a review. Author or admin only; the
// aggregate is recomputed afterwards, resetting to zero when the last
// review goes.
func DeleteReview(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	review, err := models.GetReviewByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No review found with that ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch review"})
		return
	}

	if review.User != user.ID && user.Role != models.RoleAdmin && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to delete review"})
		return
	}

	if err := models.DeleteReview(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete review"})
		return
	}

	recomputeRating(ctx, review.Product)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// recomputeRating refreshes the product aggregate after a review
// mutation. A failed recompute leaves the stored aggregate stale, so
// it is logged, but it never fails the request that caused it.
func recomputeRating(ctx context.Context, productID primitive.ObjectID) {
	if err := services.RecomputeProductRating(ctx, productID); err != nil {
		log.Printf("Failed to recompute rating for product %s: %v", productID.Hex(), err)
	}
}
