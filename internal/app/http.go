package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/taskhub/taskhub/internal/cache"
	"github.com/taskhub/taskhub/internal/config"
	v1 "github.com/taskhub/taskhub/internal/delivery/http/v1"
	"github.com/taskhub/taskhub/internal/models"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/services"
	"github.com/taskhub/taskhub/internal/token"
)

const apiVersion = "1.0.0"

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(v1.RequestIDMiddleware())
	mustApplyCORS(router)
	mustApplyRateLimit(router)
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func mustApplyCORS(router *gin.Engine) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = config.Global().CORS.AllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))
}

func mustApplyRateLimit(router *gin.Engine) {
	limitCfg := config.Global().RateLimit
	if !limitCfg.Enabled {
		return
	}

	rate, err := limiter.NewRateFromFormatted(limitCfg.Rate)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("rate", limitCfg.Rate).
			Msg("failed to parse rate limit")
		panic(err)
	}

	router.Use(mgin.NewMiddleware(limiter.New(memorystore.NewStore(), rate)))
	globalLogger.Info().
		Str("rate", limitCfg.Rate).
		Msg("enabled rate limiting")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()

	tokenIssuer := token.NewIssuer(
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
	)
	listings := cache.NewListing(cfg.Cache.ListingTTL)

	userRepository := repository.NewUserRepository(globalLogger, globalPostgresPool)
	taskRepository := repository.NewTaskRepository(globalLogger, globalPostgresPool)

	authService := services.NewAuthService(globalLogger, userRepository)
	taskService := services.NewTaskService(globalLogger, taskRepository, listings)

	v1Handler := v1.New(globalLogger, authService, taskService, tokenIssuer)

	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":    "TaskHub API",
			"version": apiVersion,
			"endpoints": gin.H{
				"auth":  "/api/v1/auth",
				"tasks": "/api/v1/tasks",
				"admin": "/api/v1/admin",
			},
		})
	})

	authRouter := api.Group("/auth")
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/login", v1Handler.HandleLogin)

	taskRouter := api.Group("/tasks", v1Handler.HandleAuthMiddleware)
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.GET("", v1Handler.HandleListTasks)
	taskRouter.GET("/:id", v1Handler.HandleGetTask)
	taskRouter.PUT("/:id", v1Handler.HandleUpdateTask)
	taskRouter.DELETE("/:id", v1Handler.HandleDeleteTask)

	adminRouter := api.Group("/admin",
		v1Handler.HandleAuthMiddleware,
		v1Handler.RequireRole(models.RoleAdmin),
	)
	adminRouter.GET("/tasks", v1Handler.HandleListAllTasks)
	adminRouter.DELETE("/tasks/:id", v1Handler.HandleDeleteAnyTask)
}
