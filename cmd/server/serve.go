package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/rueidis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hextras/hextras-api/internal/config"
	"github.com/hextras/hextras-api/internal/constants"
	"github.com/hextras/hextras-api/internal/database"
	"github.com/hextras/hextras-api/internal/geo"
	"github.com/hextras/hextras-api/internal/handlers"
	"github.com/hextras/hextras-api/internal/logger"
	"github.com/hextras/hextras-api/internal/middleware"
	"github.com/hextras/hextras-api/internal/realtime"
	"github.com/hextras/hextras-api/internal/repository"
	"github.com/hextras/hextras-api/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	cfg := config.Load()

	if err := logger.Init(cfg.GinMode != "release"); err != nil {
		return err
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return err
	}

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr()},
	})
	if err != nil {
		return err
	}
	defer redisClient.Close()

	feed := realtime.NewRedisFeed(redisClient, cfg.FeedChannel)

	db := database.GetDB()
	profileRepo := repository.NewProfileRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	authService := services.NewAuthService(profileRepo)
	profileService := services.NewProfileService(profileRepo, services.DefaultRetryPolicy())
	taskService := services.NewTaskService(taskRepo, profileRepo, feedbackRepo, feed)
	geocoder := geo.NewClient(cfg.GeocoderURL, cfg.GeocoderRPS)

	authHandler := handlers.NewAuthHandler(authService, profileService)
	profileHandler := handlers.NewProfileHandler(profileService)
	taskHandler := handlers.NewTaskHandler(taskService)
	geocodeHandler := handlers.NewGeocodeHandler(geocoder)

	r := gin.New()
	r.Use(gin.Recovery())

	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr(),
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return err
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Hextras API is running",
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		profiles := api.Group("/profiles")
		profiles.Use(middleware.RequireAuth())
		{
			profiles.GET("/:id", profileHandler.GetProfile)
			profiles.PATCH("/me", profileHandler.UpdateProfile)
		}

		api.GET("/referrals", middleware.RequireAuth(), profileHandler.ListReferrals)
		api.GET("/geocode/search", middleware.RequireAuth(), geocodeHandler.Search)

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/map", taskHandler.ListMapMarkers)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.LoadTask(), taskHandler.GetTask)
			tasks.DELETE("/:id", middleware.LoadTask(), taskHandler.DeleteTask)
			tasks.POST("/:id/claim", middleware.LoadTask(), taskHandler.ClaimTask)
			tasks.POST("/:id/complete", middleware.LoadTask(), taskHandler.CompleteTask)
			tasks.POST("/:id/cancel", middleware.LoadTask(), taskHandler.CancelTask)
			tasks.POST("/:id/ratings", middleware.LoadTask(), taskHandler.RateTask)
			tasks.POST("/:id/reports", middleware.LoadTask(), taskHandler.ReportTask)
			tasks.POST("/:id/applications", middleware.LoadTask(), taskHandler.ApplyToTask)
			tasks.GET("/:id/applications", middleware.LoadTask(), taskHandler.ListApplications)
			tasks.POST("/:id/applications/:application_id/accept", middleware.LoadTask(), taskHandler.AcceptApplication)
		}
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.ServerAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
