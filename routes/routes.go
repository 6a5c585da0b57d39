package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	middlewares "farmlink/middleware"
	"farmlink/ws"
)

// SetupRoutes wires CORS, static uploads, the REST surface, and the
// websocket endpoint.
func SetupRoutes(r *gin.Engine, hub *ws.Hub) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", middlewares.UploadDir())

	SetupAuthRoutes(r)
	SetupProductRoutes(r)
	SetupChatRoutes(r, hub)
	SetupAdminRoutes(r)
}

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return []string{"http://localhost:3000", "http://localhost:5001"}
}
