package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/AquaServicesBR/carwash-scheduler/internal/config"
	dbpkg "github.com/AquaServicesBR/carwash-scheduler/internal/db"
	"github.com/AquaServicesBR/carwash-scheduler/internal/logging"
	"github.com/AquaServicesBR/carwash-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()

	logger := logging.New(cfg.Env)
	defer logger.Sync()

	db := dbpkg.NewDB(cfg)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := routes.RegisterRoutes(r, db, rdb, logger, cfg); err != nil {
		log.Fatalf("failed to register routes: %v", err)
	}

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
