package routes

import (
	"github.com/gin-gonic/gin"

	"farmlink/controllers"
	middlewares "farmlink/middleware"
	"farmlink/ws"
)

func SetupChatRoutes(r *gin.Engine, hub *ws.Hub) {
	chats := r.Group("/api/v1/chats")
	chats.Use(middlewares.Protect())
	{
		chats.GET("", controllers.GetChats)
		chats.POST("", controllers.CreateChat)
		chats.GET("/:chatId/messages", controllers.GetMessages)
		chats.POST("/:chatId/messages", controllers.SendMessage)
	}

	r.GET("/ws", ws.ServeWS(hub))
}
