package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	middlewares "farmlink/middleware"
	"farmlink/models"
)

// SellerSummary is the slice of an account embedded in product
// responses.
type SellerSummary struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"fullName"`
	Phone    string             `json:"phone"`
	Address  string             `json:"address,omitempty"`
	Location models.GeoPoint    `json:"location"`
}

// ProductWithSeller replaces the raw seller id with the trimmed
// seller record.
type ProductWithSeller struct {
	models.Product
	Seller SellerSummary `json:"seller"`
}

func summarize(user models.User) SellerSummary {
	return SellerSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Phone:    user.Phone,
		Address:  user.Address,
		Location: user.Location,
	}
}

// attachSellers loads each product's seller once and embeds the
// trimmed record.
func attachSellers(ctx context.Context, products []models.Product) []ProductWithSeller {
	cache := map[primitive.ObjectID]SellerSummary{}
	out := make([]ProductWithSeller, 0, len(products))
	for _, p := range products {
		summary, ok := cache[p.Seller]
		if !ok {
			if user, err := models.FindUserByID(ctx, p.Seller, models.RoleSeller); err == nil {
				summary = summarize(user)
			} else {
				summary = SellerSummary{ID: p.Seller}
			}
			cache[p.Seller] = summary
		}
		out = append(out, ProductWithSeller{Product: p, Seller: summary})
	}
	return out
}

// GetAllProducts lists verified products. With lat/lng query params
// the list is narrowed to sellers within radius meters (default
// 2000).
func GetAllProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var sellerIDs []primitive.ObjectID
	if c.Query("lat") != "" && c.Query("lng") != "" {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid coordinates"})
			return
		}
		radius := 2000
		if r := c.Query("radius"); r != "" {
			if parsed, err := strconv.Atoi(r); err == nil && parsed > 0 {
				radius = parsed
			}
		}

		ids, err := models.NearbySellerIDs(ctx, lat, lng, radius)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		sellerIDs = ids
	}

	products, err := models.ListVerifiedProducts(ctx, sellerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
		return
	}

	data := attachSellers(ctx, products)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// SearchProducts finds verified products matching a keyword.
func SearchProducts(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Keyword is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	products, err := models.SearchVerifiedProducts(ctx, keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to search products"})
		return
	}

	data := attachSellers(ctx, products)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// GetProduct returns one product with its seller and reviews.
func GetProduct(c *gin.Context) {
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.GetProductByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
		return
	}

	reviews, err := models.ListReviewsByProduct(ctx, product.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch reviews"})
		return
	}

	withSeller := attachSellers(ctx, []models.Product{product})[0]
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"product": withSeller,
		"reviews": reviews,
	}})
}

// CreateProduct adds a listing for the calling seller. Listings wait
// for admin verification before showing up publicly.
func CreateProduct(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input struct {
		Name        string `form:"name" json:"name" binding:"required"`
		Description string `form:"description" json:"description" binding:"required"`
		Price       string `form:"price" json:"price" binding:"required"`
		Quantity    string `form:"quantity" json:"quantity" binding:"required"`
		Category    string `form:"category" json:"category"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	price, err := strconv.ParseFloat(input.Price, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid price"})
		return
	}
	if input.Category != "" && !models.ValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid category"})
		return
	}

	image, err := middlewares.SaveImage(c, "products", user.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.CreateProduct(ctx, models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       price,
		Quantity:    input.Quantity,
		Category:    input.Category,
		Image:       image,
		Seller:      user.ID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": product})
}

// UpdateProduct edits a listing. Only the owning seller or an admin
// may edit.
func UpdateProduct(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.GetProductByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
		return
	}

	if product.Seller != user.ID && user.Role != models.RoleAdmin && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to update this product"})
		return
	}

	var input struct {
		Name        string `form:"name" json:"name"`
		Description string `form:"description" json:"description"`
		Price       string `form:"price" json:"price"`
		Quantity    string `form:"quantity" json:"quantity"`
		Category    string `form:"category" json:"category"`
	}
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	fields := bson.M{}
	setIfPresent(fields, "name", input.Name)
	setIfPresent(fields, "description", input.Description)
	setIfPresent(fields, "quantity", input.Quantity)
	if input.Price != "" {
		price, err := strconv.ParseFloat(input.Price, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid price"})
			return
		}
		fields["price"] = price
	}
	if input.Category != "" {
		if !models.ValidCategory(input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid category"})
			return
		}
		fields["category"] = input.Category
	}

	image, err := middlewares.SaveImage(c, "products", user.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if image != "" {
		fields["image"] = image
	}

	updated := product
	if len(fields) > 0 {
		updated, err = models.UpdateProduct(ctx, id, fields)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update product"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteProduct removes a listing and cascades its reviews. Only the
// owning seller or an admin may delete.
func DeleteProduct(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	id, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	product, err := models.GetProductByID(ctx, id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch product"})
		return
	}

	if product.Seller != user.ID && user.Role != models.RoleAdmin && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to delete this product"})
		return
	}

	if err := models.DeleteReviewsByProduct(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete reviews"})
		return
	}
	if err := models.DeleteProduct(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

// GetMyProducts lists the calling seller's products, verified or not.
func GetMyProducts(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	products, err := models.ListProductsBySeller(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(products), "data": products})
}
