package routes

import (
	"github.com/gin-gonic/gin"

	"farmlink/controllers"
	middlewares "farmlink/middleware"
)

func SetupAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/logout", controllers.Logout)
		auth.GET("/me", middlewares.Protect(), controllers.GetMe)
		auth.PUT("/updatepassword", middlewares.Protect(), controllers.UpdatePassword)
		auth.PUT("/:id", middlewares.Protect(), controllers.UpdateDetails)
	}

	// legacy alias kept for older clients
	r.PUT("/api/v1/users/:id", middlewares.Protect(), controllers.UpdateDetails)
}
