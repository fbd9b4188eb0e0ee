package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/koding/multiconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nathantgray/tesp/internal/api/handlers"
	"github.com/nathantgray/tesp/internal/api/middleware"
	"github.com/nathantgray/tesp/internal/logging"
)

// Config is the server process configuration, read from API_* environment
// variables (API_PORT, API_ENV, API_LOG_LEVEL, API_PRETTY) over the
// defaults below.
type Config struct {
	Port     string `default:"8080"`
	Env      string `default:"development"`
	LogLevel string `default:"info"`
	Pretty   bool   `default:"false"`
}

func main() {
	conf := &Config{}
	loader := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{Prefix: "API", CamelCase: true},
	)
	if err := loader.Load(conf); err != nil {
		log.Fatal().Err(err).Msg("failed to load server config")
	}
	if err := logging.Setup(conf.LogLevel, conf.Pretty); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	// Set up Gin router
	if conf.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	simulateHandler := handlers.NewSimulateHandler()
	bidHandler := handlers.NewBidHandler()
	houseHandler := handlers.NewHouseHandler()
	strategyHandler := handlers.NewStrategyHandler()
	rankHandler := handlers.NewRankHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/simulate", simulateHandler.RunSimulation)
		api.POST("/simulate/compare", simulateHandler.CompareSimulations)

		api.POST("/bid", bidHandler.FormBid)
		api.POST("/bid/aggregate", bidHandler.AggregateBids)

		api.GET("/houses", houseHandler.ListHouses)
		api.GET("/strategies", strategyHandler.ListStrategies)

		api.GET("/rank", rankHandler.RankHouses)

		api.GET("/series", handlers.ListSeries)
	}

	// Start server
	addr := fmt.Sprintf(":%s", conf.Port)
	log.Info().Str("addr", addr).Str("env", conf.Env).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
