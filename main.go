package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"farmlink/controllers"
	db "farmlink/database"
	"farmlink/gcs"
	"farmlink/routes"
	"farmlink/services"
	"farmlink/ws"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: error loading .env file:", err)
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set in .env")
	}

	db.InitDB()
	defer db.DisconnectDB()
	db.EnsureIndexes()

	gcs.InitGCS()
	defer gcs.Close()

	hub := ws.NewHub()
	go hub.Run()
	controllers.InitChatHub(hub)

	reconciler := services.StartReconciler()
	defer reconciler.Stop()

	r := gin.Default()
	routes.SetupRoutes(r, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Println("Starting server on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
