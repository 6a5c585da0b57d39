package routes

import (
	"github.com/gin-gonic/gin"

	"farmlink/controllers"
	middlewares "farmlink/middleware"
	"farmlink/models"
)

func SetupAdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(middlewares.Protect(), middlewares.Authorize(models.RoleAdmin))
	{
		admin.GET("/users", controllers.GetUsers)
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)

		admin.GET("/products/pending", controllers.GetPendingProducts)
		admin.PUT("/products/:id/verify", controllers.VerifyProduct)

		admin.GET("/stats", controllers.GetSystemStats)
		admin.POST("/reconcile", controllers.Reconcile)
	}
}
