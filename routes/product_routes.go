package routes

import (
	"github.com/gin-gonic/gin"

	"farmlink/controllers"
	middlewares "farmlink/middleware"
	"farmlink/models"
)

func SetupProductRoutes(r *gin.Engine) {
	products := r.Group("/api/v1/products")
	{
		products.GET("", controllers.GetAllProducts)
		products.GET("/search", controllers.SearchProducts)
		products.GET("/my-products",
			middlewares.Protect(), middlewares.Authorize(models.RoleSeller),
			controllers.GetMyProducts)
		products.GET("/:id", controllers.GetProduct)
		products.POST("",
			middlewares.Protect(), middlewares.Authorize(models.RoleSeller),
			controllers.CreateProduct)
		products.PUT("/:id",
			middlewares.Protect(), middlewares.Authorize(models.RoleSeller, models.RoleAdmin),
			controllers.UpdateProduct)
		products.DELETE("/:id",
			middlewares.Protect(), middlewares.Authorize(models.RoleSeller, models.RoleAdmin),
			controllers.DeleteProduct)

		products.GET("/:id/reviews", controllers.GetReviews)
		products.POST("/:id/reviews",
			middlewares.Protect(), middlewares.Authorize(models.RoleBuyer, models.RoleAdmin),
			controllers.AddReview)
	}

	reviews := r.Group("/api/v1/reviews")
	{
		reviews.GET("/:id", controllers.GetReview)
		reviews.PUT("/:id",
			middlewares.Protect(), middlewares.Authorize(models.RoleBuyer, models.RoleAdmin),
			controllers.UpdateReview)
		reviews.DELETE("/:id",
			middlewares.Protect(), middlewares.Authorize(models.RoleBuyer, models.RoleAdmin),
			controllers.DeleteReview)
	}
}
