package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
)

// ViewRoute is one navigable view of the console and what it requires.
type ViewRoute struct {
	Path        string
	Name        string
	Requirement models.Requirement
}

// ViewRoutes is the console's route table.
var ViewRoutes = []ViewRoute{
	{"/", "home", models.RequirePublic},
	{"/about-us", "about-us", models.RequirePublic},
	{"/contact", "contact", models.RequirePublic},
	{"/advertise", "advertise", models.RequirePublic},
	{"/privacy-policy", "privacy-policy", models.RequirePublic},
	{"/terms-of-service", "terms-of-service", models.RequirePublic},
	{"/article/:slug", "article", models.RequirePublic},
	{"/page/:slug", "page", models.RequirePublic},
	{"/category/:slug", "category", models.RequirePublic},
	{"/search", "search", models.RequirePublic},
	{"/login", "login", models.RequirePublic},
	{"/register", "register", models.RequirePublic},
	{"/access-denied", "access-denied", models.RequirePublic},
	{"/profile", "profile", models.RequireAuthenticated},
	{"/admin", "admin-dashboard", models.RequireStaff},
	{"/admin/articles", "admin-articles", models.RequireStaff},
	{"/admin/categories", "admin-categories", models.RequireStaff},
	{"/admin/users", "admin-users", models.RequireStaff},
	{"/admin/comments", "admin-comments", models.RequireStaff},
	{"/admin/messages", "admin-messages", models.RequireStaff},
	{"/admin/newsletters", "admin-newsletters", models.RequireStaff},
	{"/admin/polls", "admin-polls", models.RequireStaff},
	{"/admin/ads", "admin-ads", models.RequireStaff},
	{"/admin/bulk-upload", "admin-bulk-upload", models.RequireStaff},
	{"/admin/navigation", "admin-navigation", models.RequireStaff},
	{"/admin/themes", "admin-themes", models.RequireStaff},
	{"/admin/settings", "admin-settings", models.RequireStaff},
	{"/admin/pages", "admin-pages", models.RequireStaff},
}

// ViewModel is what the shell renders for a granted view.
type ViewModel struct {
	View    string              `json:"view"`
	Params  map[string]string   `json:"params,omitempty"`
	Session models.SessionState `json:"session"`
}

// ViewHandler answers navigations that passed the guard.
type ViewHandler struct{}

// NewViewHandler constructs a ViewHandler.
func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

// Render returns the handler of the named view.
func (h *ViewHandler) Render(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, ok := browserFromContext(c)
		if !ok {
			return
		}
		var params map[string]string
		if len(c.Params) > 0 {
			params = make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
		}
		respond(c, http.StatusOK, ViewModel{View: name, Params: params, Session: b.Session.State()})
	}
}
