package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/accounts-portal/accounts-portal/services/portal/webhandlers"
)

func main() {
	router := gin.New()
	router.Use(gin.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.LoadHTMLGlob(conf.TemplatesPath + "/*.html")
	router.Static("/static", conf.StaticPath)

	handlers := webhandlers.NewHTTPHandler(
		accountDBService,
		sessionManager,
		resetTokens,
		emailService,
		conf.BaseURL,
	)

	router.Use(gin.CustomRecovery(handlers.RecoveryHandle))

	root := router.Group("")
	handlers.AddPageRoutes(root)
	handlers.AddAuthRoutes(root)
	handlers.AddPasswordResetRoutes(root)

	router.GET("/healthz", webhandlers.HealthCheckHandle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(handlers.NotFoundHandle)

	slog.Info("Starting Accounts Portal", slog.String("port", conf.GinConfig.Port))
	if err := router.Run(":" + conf.GinConfig.Port); err != nil {
		slog.Error("Exited Accounts Portal", slog.String("error", err.Error()))
	}
}
