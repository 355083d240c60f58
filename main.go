package main

import (
	"fmt"
	"log"
	"os"

	"github.com/garane84/shynne-autowash-backend/config"
	"github.com/garane84/shynne-autowash-backend/routes"
	"github.com/garane84/shynne-autowash-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	if err := config.Migrate(config.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

func main() {
	// Notify the daily draw winner every evening
	notifier := services.NewWinnerNotifier(config.DB)
	notifier.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
