package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/response"
)

const (
	loginPath        = "/login"
	accessDeniedPath = "/access-denied"
	pendingRetry     = "1"

	// ViewHeader lets the shell tell API routes which view it was showing.
	ViewHeader = "X-Console-View"
)

// Decide evaluates a view requirement against the session. Public views are
// always granted; anything else waits for restoration to finish.
func Decide(state models.SessionState, requirement models.Requirement) models.Decision {
	if requirement == models.RequirePublic || requirement == "" {
		return models.DecisionGranted
	}
	if state.Loading {
		return models.DecisionPending
	}
	if !state.IsAuthenticated() {
		return models.DecisionDeniedUnauthenticated
	}
	if requirement == models.RequireStaff && !state.IsStaff() {
		return models.DecisionDeniedForbidden
	}
	return models.DecisionGranted
}

// LoginRedirect is the login location carrying the originally requested one.
func LoginRedirect(from string) string {
	if from == "" {
		return loginPath
	}
	return loginPath + "?from=" + url.QueryEscape(from)
}

// PendingView is the neutral placeholder served while the session restores.
type PendingView struct {
	View    string `json:"view"`
	Pending bool   `json:"pending"`
}

// GuardView protects a navigable view. Pending answers 202 with Retry-After so
// the shell shows a loader and asks again; denials redirect.
func GuardView(requirement models.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch decide(c, requirement) {
		case models.DecisionGranted:
			c.Next()
		case models.DecisionPending:
			c.Header("Retry-After", pendingRetry)
			response.JSON(c, http.StatusAccepted, PendingView{View: "loading", Pending: true})
			c.Abort()
		case models.DecisionDeniedUnauthenticated:
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
		default:
			c.Redirect(http.StatusFound, accessDeniedPath)
			c.Abort()
		}
	}
}

// GuardAPI protects an API route. Denials are error envelopes whose
// meta.redirect tells the shell where to go.
func GuardAPI(requirement models.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch decide(c, requirement) {
		case models.DecisionGranted:
			c.Next()
		case models.DecisionPending:
			c.Header("Retry-After", pendingRetry)
			response.Error(c, appErrors.ErrSessionPending)
			c.Abort()
		case models.DecisionDeniedUnauthenticated:
			SetRedirect(c, LoginRedirect(c.GetHeader(ViewHeader)))
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
		default:
			SetRedirect(c, accessDeniedPath)
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
		}
	}
}

func decide(c *gin.Context, requirement models.Requirement) models.Decision {
	state := models.SessionState{}
	if browser := BrowserFrom(c); browser != nil {
		state = browser.Session.State()
	}
	return Decide(state, requirement)
}
