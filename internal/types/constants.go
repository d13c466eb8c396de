package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Team roles. RoleAdmin is accepted as a synonym-level role that carries the
// same write surface as editor.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Task statuses. Everything except StatusDone is derived from the task's
// date window; Done is set manually and is terminal.
const (
	StatusNotStarted = "Not Started"
	StatusOngoing    = "Ongoing"
	StatusOverdue    = "Overdue"
	StatusDone       = "Done"
)

// Notification types.
const (
	NotificationInfo     = "info"
	NotificationDeadline = "deadline"
	NotificationMessage  = "message"
	NotificationStatus   = "status"
)

func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleEditor, RoleMember, RoleAdmin:
		return true
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
