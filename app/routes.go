package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/common"
	"github.com/princinho/weatherbackend/controllers"
	"github.com/princinho/weatherbackend/logging"
	"github.com/princinho/weatherbackend/middleware"
	"github.com/princinho/weatherbackend/utils"
)

func (a *App) buildRouter() *gin.Engine {
	if a.cfg.Server.Mode != "" {
		gin.SetMode(a.cfg.Server.Mode)
	}
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range a.cfg.Server.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	a.logger.Debug("cors allow-list", "origins", a.cfg.Server.AllowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-access-token", "access-token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logging.Middleware(a.logger))
	r.Use(gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, common.NotFound("Route not found"))
	})

	authH := controllers.NewAuthController(a.Auth, a.Tokens)
	usersH := controllers.NewUsersController(a.Auth)
	weatherH := controllers.NewWeatherController(a.Stations, a.cfg.Server.PublicURL)
	commentsH := controllers.NewCommentsController(a.Stations, a.cfg.Server.PublicURL)
	readingsH := controllers.NewReadingsController(a.Stations, a.cfg.Server.PublicURL)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Weather API",
			"available_routes": gin.H{
				"auth":     []string{"/register", "/login", "/logout", "/token/refresh"},
				"weather":  []string{"/weather", "/weather/:id", "/weather/stats", "/weather/alerts", "/weather/trends/all"},
				"comments": []string{"/weather/:id/comments"},
				"readings": []string{"/weather/:id/readings"},
			},
		})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/register", authH.Register())
	r.POST("/login", authH.Login())

	r.GET("/weather", weatherH.GetStations())
	r.GET("/weather/stats", weatherH.GetStats())
	r.GET("/weather/alerts", weatherH.GetAlerts())
	r.GET("/weather/trends/all", weatherH.GetGlobalTrends())
	r.GET("/weather/:id", weatherH.GetStation())
	r.GET("/weather/:id/trends", weatherH.GetTrends())
	r.GET("/weather/:id/comments", commentsH.GetComments())
	r.GET("/weather/:id/readings", readingsH.GetReadings())

	session := r.Group("/", middleware.SessionRequired(a.Tokens))
	{
		session.POST("/logout", authH.Logout())
		session.POST("/token/refresh", authH.Refresh())
		session.POST("/users/me/password", usersH.ChangeMyPassword())

		session.POST("/weather/:id/comments", commentsH.AddComment())
		session.PUT("/weather/:id/comments/:cid", commentsH.UpdateComment())
		session.DELETE("/weather/:id/comments/:cid", commentsH.DeleteComment())

		session.POST("/weather/:id/readings", readingsH.AddReading())
		session.PUT("/weather/:id/readings/:rid", readingsH.UpdateReading())
		session.DELETE("/weather/:id/readings/:rid", readingsH.DeleteReading())
	}

	admin := session.Group("/", middleware.ElevatedRequired())
	{
		admin.POST("/users", usersH.CreateUser())
		admin.POST("/weather", weatherH.AddStation())
		admin.PUT("/weather/:id", weatherH.UpdateStation())
		admin.DELETE("/weather/:id", weatherH.DeleteStation())
	}

	return r
}
