package router

import (
	"context"
	"net/http"

	"socialexplore/config"
	"socialexplore/internal/handler"
	"socialexplore/internal/middleware"
	"socialexplore/internal/repository"
	"socialexplore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers into a gin engine.
// Background work owned by the engine (rate limiter eviction) stops when ctx
// is done.
func Setup(ctx context.Context, cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	discoveryRepo := repository.NewDiscoveryRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	friendRepo := repository.NewFriendRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readMarkRepo := repository.NewReadMarkRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	// Services
	authSvc := service.NewAuthService(&cfg.JWT, userRepo)
	notifSvc := service.NewNotificationService(service.NotificationSources{
		Activities:     activityRepo,
		Participations: participationRepo,
		FriendRequests: friendRepo,
		Messages:       messageRepo,
	}, readMarkRepo, log.With().Str("component", "notifications").Logger())

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	activityHandler := handler.NewActivityHandler(activityRepo, participationRepo, discoveryRepo)
	participationHandler := handler.NewParticipationHandler(participationRepo, activityRepo)
	friendHandler := handler.NewFriendHandler(friendRepo, userRepo)
	meHandler := handler.NewMeHandler(userRepo, participationRepo, friendRepo)
	messageHandler := handler.NewMessageHandler(messageRepo, activityRepo, participationRepo)
	statisticsHandler := handler.NewStatisticsHandler(statsRepo)
	searchHandler := handler.NewSearchHandler(discoveryRepo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimit(limiter))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		authed := api.Group("")
		authed.Use(middleware.AuthRequired(&cfg.JWT), middleware.RateLimit(limiter))

		notifications := authed.Group("/notifications")
		{
			notifications.GET("/count", notificationHandler.Count)
			notifications.GET("", notificationHandler.List)
			notifications.POST("/:type/:id/read", notificationHandler.MarkRead)
			notifications.GET("/:type/:id", notificationHandler.Status)
		}

		activities := authed.Group("/activities")
		{
			activities.POST("", activityHandler.Create)
			activities.GET("", activityHandler.List)
			activities.GET("/nearby", activityHandler.Nearby)
			activities.GET("/:id", activityHandler.Get)
			activities.PUT("/:id", activityHandler.Update)
			activities.DELETE("/:id", activityHandler.Delete)
		}
		me := authed.Group("/me")
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/activities", activityHandler.ListMine)
		}
		authed.GET("/users/:id", meHandler.GetUser)
		authed.GET("/search/users/nearby", searchHandler.NearbyUsers)

		statistics := authed.Group("/statistics")
		{
			statistics.GET("/general", statisticsHandler.General)
			statistics.GET("/personal", statisticsHandler.Personal)
		}

		participations := authed.Group("/participations")
		{
			participations.POST("", participationHandler.Join)
			participations.GET("/my", participationHandler.Mine)
			participations.GET("/activity/:activity_id", participationHandler.ListForActivity)
			participations.PUT("/:id", participationHandler.Respond)
			participations.DELETE("/:id", participationHandler.Leave)
		}

		friends := authed.Group("/friends")
		{
			friends.GET("", friendHandler.List)
			friends.POST("/requests", friendHandler.SendRequest)
			friends.GET("/requests/received", friendHandler.Received)
			friends.GET("/requests/sent", friendHandler.Sent)
			friends.PUT("/requests/:id", friendHandler.Respond)
			friends.DELETE("/requests/:id", friendHandler.Withdraw)
			friends.DELETE("/:friend_id", friendHandler.Remove)
		}

		messages := authed.Group("/messages")
		{
			messages.POST("", messageHandler.Post)
			messages.GET("/activity/:activity_id", messageHandler.List)
		}
	}

	return r
}
