package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	"pmmbridge"
	"pmmbridge/internal/api/handler/endpoints"
	"pmmbridge/internal/api/handler/middleware"
	"pmmbridge/internal/api/service"
)

func main() {
	pmmbridge.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)
	if pmmbridge.GetConfig().Mode == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(pmmbridge.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SessionMiddleware(pmmbridge.GetConfig()))

	workflow := service.NewWorkflowService(
		service.NewRedisSessionStore(),
		service.NewCloudService(),
		service.NewPMMService(),
		pmmbridge.Logger,
	)
	initAPI(router, workflow)

	pmmbridge.Logger.Debug().Msgf("Starting PMM bridge API on port %s", pmmbridge.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		pmmbridge.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func initAPI(router *graceful.Graceful, workflow *service.WorkflowService) {
	endpoints.CredentialsHandler(router, workflow)
	endpoints.EngineHandler(router, workflow)
	endpoints.DatabaseHandler(router, workflow)
	endpoints.IntegrationHandler(router, workflow)
}
