package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/logger"
	"github.com/taskhive-dev/taskhive/internal/router"
	"github.com/taskhive-dev/taskhive/internal/scheduler"
	"github.com/taskhive-dev/taskhive/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment")
	}

	appLog := logger.New("taskhive")
	defer appLog.Sync()

	if err := auth.InitJWTSecret(); err != nil {
		appLog.Fatalw("Failed to initialize JWT secret", "error", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		appLog.Fatal("DATABASE_URL environment variable is not set")
	}

	conn, err := db.Connect(dsn)

	if err != nil {
		appLog.Fatalw("Failed to connect to database", "error", err)
	}

	if err := db.Migrate(conn); err != nil {
		appLog.Fatalw("Failed to migrate database", "error", err)
	}

	notify := services.NewDispatcher(conn, appLog)
	membership := services.NewMembership(conn, notify, appLog)
	status := services.NewStatusEngine(conn, notify, appLog)
	projects := services.NewProjects(conn, notify, appLog)
	tasks := services.NewTasks(conn, notify, appLog)
	comments := services.NewComments(conn, notify, appLog)
	maintenance := services.NewMaintenance(conn, notify, status, appLog)

	jobs := scheduler.New(maintenance, status, appLog)
	jobs.Start()
	defer jobs.Stop()

	r := router.New(conn, router.Handlers{
		Auth:          handlers.NewAuthHandler(conn),
		Users:         handlers.NewUserHandler(conn),
		Projects:      handlers.NewProjectHandler(projects, membership),
		Tasks:         handlers.NewTaskHandler(tasks),
		Comments:      handlers.NewCommentHandler(comments),
		Notifications: handlers.NewNotificationHandler(notify),
		Cron:          handlers.NewCronHandler(maintenance, status),
	})

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		appLog.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		appLog.Fatalw("Failed to start server", "error", err)
	}
}
