package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tabstat/app"
	"tabstat/internal"
	"tabstat/internal/config"
	"tabstat/internal/dataset"
	"tabstat/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	internal.DefaultLogger = logger
	gin.SetMode(appConfig.Server.GinMode)

	store := dataset.NewMemoryStore()
	service := app.NewAnalysisService(store, appConfig.Analysis, logger)

	server := ui.NewServer(service, appConfig.Server, logger)
	server.Initialize()

	log.Printf("Analysis limits: %d concurrent, %d MB uploads, parallelism %d",
		appConfig.Server.MaxConcurrentAnalyses, appConfig.Server.MaxUploadMB, appConfig.Analysis.MaxParallelism)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
