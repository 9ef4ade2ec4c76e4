package routes

import (
	"net/http"
	"time"

	"github.com/LovationAdmin/tripchalo-api/handlers"
	"github.com/LovationAdmin/tripchalo-api/middleware"
	"github.com/LovationAdmin/tripchalo-api/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const Version = "1.0.0"

// Deps is what the router needs to serve requests.
type Deps struct {
	Users          *services.UserService
	Trips          *services.TripService
	Tokens         middleware.TokenParser
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter builds the engine with middleware, /health and /api/v1.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(d.Logger))
	router.Use(middleware.RequestLogger(d.Logger))

	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           86400 * time.Second,
		}))
	}
	if d.Limiter != nil {
		router.Use(d.Limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": Version,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")
	{
		SetupAuthRoutes(v1, d.Users, d.Logger)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(d.Tokens))
		{
			SetupUserRoutes(protected, d.Users, d.Logger)
			SetupTripRoutes(protected, d.Trips, d.Logger)
		}
	}

	return router
}

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, users *services.UserService, logger *zap.Logger) {
	authHandler := handlers.NewAuthHandler(users, logger)

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, users *services.UserService, logger *zap.Logger) {
	userHandler := handlers.NewUserHandler(users, logger)

	rg.GET("/users/me/profile", userHandler.GetProfile)
}

// SetupTripRoutes sets up protected trip, itinerary and chat routes.
func SetupTripRoutes(rg *gin.RouterGroup, trips *services.TripService, logger *zap.Logger) {
	h := handlers.NewTripHandler(trips, logger)

	rg.POST("/trips", h.CreateTrip)
	rg.POST("/trips/join", h.JoinTrip)
	rg.GET("/trips/:id", h.GetTrip)
	rg.DELETE("/trips/:id", h.DeleteTrip)
	rg.DELETE("/trips/:id/leave", h.LeaveTrip)
	rg.POST("/trips/:id/lock", h.LockTrip)

	// Itinerary and voting
	rg.POST("/trips/:id/generate", h.GenerateItinerary)
	rg.GET("/trips/:id/itinerary", h.GetItinerary)
	rg.POST("/trips/:id/vote", h.Vote)
	rg.POST("/trips/:id/finalize", h.Finalize)

	// Confirmed trip
	rg.GET("/trips/:id/confirmed-details", h.ConfirmedDetails)
	rg.POST("/trips/:id/chat", h.Chat)
}
