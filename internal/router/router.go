package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Projects      *handlers.ProjectHandler
	Tasks         *handlers.TaskHandler
	Comments      *handlers.CommentHandler
	Notifications *handlers.NotificationHandler
	Cron          *handlers.CronHandler
}

func New(conn *gorm.DB, h Handlers) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.Auth(conn)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.Me)
		}

		users := api.Group("/users", requireAuth)
		{
			users.GET("/search", h.Users.Search)
			users.GET("/:user_id", h.Users.Get)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.POST("", h.Projects.Create)
			projects.GET("", h.Projects.List)
			projects.GET("/:project_id", h.Projects.Get)
			projects.PATCH("/:project_id", h.Projects.Update)
			projects.DELETE("/:project_id", h.Projects.Delete)

			// Membership endpoints
			projects.POST("/:project_id/members", h.Projects.AddMember)
			projects.DELETE("/:project_id/members/:user_id", h.Projects.RemoveMember)
			projects.PATCH("/:project_id/members/:user_id", h.Projects.UpdateMemberRole)

			// Task endpoints
			projects.POST("/:project_id/tasks", h.Tasks.Create)
			projects.GET("/:project_id/tasks", h.Tasks.List)
			projects.GET("/:project_id/tasks/:task_id", h.Tasks.Get)
			projects.PATCH("/:project_id/tasks/:task_id/status", h.Tasks.UpdateStatus)
			projects.DELETE("/:project_id/tasks/:task_id", h.Tasks.Delete)

			// Comment endpoints
			projects.POST("/:project_id/tasks/:task_id/comments", h.Comments.Create)
			projects.GET("/:project_id/tasks/:task_id/comments", h.Comments.List)
			projects.DELETE("/:project_id/tasks/:task_id/comments/:comment_id", h.Comments.Delete)
		}

		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", h.Notifications.List)
			notifications.PUT("/mark-all-read", h.Notifications.MarkAllRead)
			notifications.PUT("/:notification_id/read", h.Notifications.MarkRead)
		}

		cron := api.Group("/cron")
		{
			cron.POST("/status-update", h.Cron.StatusUpdate)
			cron.POST("/deadline-check", h.Cron.DeadlineCheck)
		}
	}

	return r
}
