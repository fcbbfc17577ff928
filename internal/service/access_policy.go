package service

import (
	"strings"

	"github.com/noah-isme/campus-id-api/internal/models"
)

// AccessLevel is the protection applied to a view.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessProtected
	AccessAdmin
)

// String returns the lowercase name of the level.
func (l AccessLevel) String() string {
	switch l {
	case AccessProtected:
		return "protected"
	case AccessAdmin:
		return "admin"
	default:
		return "public"
	}
}

// Redirect targets of denied views.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of evaluating a view's access level against a session.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Decide evaluates level for session. A nil session is unauthenticated.
func Decide(level AccessLevel, session *models.Session) Decision {
	switch level {
	case AccessProtected:
		if session == nil {
			return Decision{Redirect: LoginPath, Reason: "authentication required"}
		}
	case AccessAdmin:
		if session == nil {
			return Decision{Redirect: LoginPath, Reason: "authentication required"}
		}
		if !session.IsAdmin() {
			return Decision{Redirect: DashboardPath, Reason: "admin role required"}
		}
	}
	return Decision{Allowed: true}
}

// ViewLevel classifies the application's view paths.
func ViewLevel(path string) AccessLevel {
	p := "/" + strings.Trim(strings.TrimSpace(path), "/")
	switch {
	case p == "/admin" || strings.HasPrefix(p, "/admin/"):
		return AccessAdmin
	case p == "/", p == "/dashboard", p == "/request-id",
		p == "/track-request" || strings.HasPrefix(p, "/track-request/"):
		return AccessProtected
	default:
		return AccessPublic
	}
}
