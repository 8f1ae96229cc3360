package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/studyhub-dev/studyhub/internal/handlers"
	"github.com/studyhub-dev/studyhub/internal/metrics"
	"github.com/studyhub-dev/studyhub/internal/middleware"
	"github.com/studyhub-dev/studyhub/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(metrics.Middleware())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/signup", handlers.Signup)
	r.POST("/signin", handlers.Signin)

	authorized := r.Group("", middleware.AuthMiddleware())
	{
		authorized.GET("/logout", handlers.Logout)
		authorized.GET("/me", handlers.Me)
		authorized.GET("/lookups", handlers.GetLookups)

		authorized.GET("/dashboard", handlers.Dashboard)
		authorized.POST("/add_subject", handlers.CreateSubject)
		authorized.GET("/subject/:subject_id", handlers.ViewSubject)
		authorized.GET("/delete_subject/:subject_id", handlers.DeleteSubject)
		authorized.POST("/invite_user/:subject_id", handlers.InviteUser)
		authorized.GET("/accept_invite/:membership_id", handlers.AcceptInvite)

		authorized.POST("/add_task", handlers.CreateTask)
		authorized.GET("/complete_task/:task_id", handlers.CompleteTask)

		authorized.POST("/log_session/:subject_id", handlers.LogStudySession)
		authorized.POST("/send_message/:subject_id", handlers.SendMessage)
	}

	return r
}
