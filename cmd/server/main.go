package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"spa_salon_backend/internal/database"
	"spa_salon_backend/internal/notifications"
	"spa_salon_backend/internal/router"
	"spa_salon_backend/pkg/utils"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	utils.InitLogger()
	utils.RegisterCustomValidators()

	dbCfg := database.Config{
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "salon_user"),
		Password:   utils.Getenv("DB_PASSWORD", "salon_password"),
		Name:       utils.Getenv("DB_NAME", "salon_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Database initialization failed")
	}
	defer db.Close()

	notifier := notifications.NewDispatcher(notifications.LogSender{}, 0, 0)
	defer notifier.Close()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	// CORS configuration
	var allowedOrigins []string
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, db, notifier)

	port := utils.Getenv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: engine,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": port})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shut down")
	}
}
