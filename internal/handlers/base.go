package handlers

import (
	"net/http"

	"libris/internal/authz"
	"libris/internal/middleware"
	"libris/internal/models"

	"github.com/gin-gonic/gin"
)

// Render injects shared template variables like the signed-in account.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if account, exists := c.Get(middleware.CheckAccountKey); exists {
		obj["CurrentAccount"] = account
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	obj["CurrentPath"] = c.Request.URL.Path

	// Pages outside the main nav sections leave Active unset.
	if _, ok := obj["Active"]; !ok {
		obj["Active"] = ""
	}

	c.HTML(code, name, obj)
}

// HtmxRedirect asks the client to navigate via the HX-Redirect header.
func HtmxRedirect(c *gin.Context, path string) {
	c.Header("HX-Redirect", path)
	c.Status(http.StatusOK)
}

// RenderError shows the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": "Oops", "Error": message})
}

// currentAccount returns the signed-in account, or nil for guests.
func currentAccount(c *gin.Context) *models.Account {
	if v, exists := c.Get(middleware.CheckAccountKey); exists {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}

// actorFor converts an account into an authorization actor. Guests
// map to nil, which the evaluator treats as unauthenticated.
func actorFor(account *models.Account) *authz.Actor {
	if account == nil {
		return nil
	}
	return authz.NewActor(account.ID, account.RoleNames()...)
}

// renderDenial turns a permission decision into the right response:
// guests go to the login form, everyone else gets the 403 page.
func renderDenial(c *gin.Context, d authz.Decision) {
	if d.Reason == authz.ReasonUnauthenticated {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	RenderError(c, http.StatusForbidden, "You do not have permission to do that.")
}
