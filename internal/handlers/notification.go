package handlers

import (
	"net/http"

	"libris/internal/db"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *store.NotificationRepo
}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{notifications: store.NewNotificationRepo(db.DB)}
}

func (h *NotificationHandler) List(c *gin.Context) {
	account := currentAccount(c)

	notifications, err := h.notifications.ListForAccount(account.ID, 50)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load your notifications.")
		return
	}

	Render(c, http.StatusOK, "notification/list.html", gin.H{
		"Title":         "Notifications",
		"Notifications": notifications,
		"Active":        "notifications",
	})
}

// Read marks one notification as read. Looking it up scoped to the
// receiver keeps members out of each other's inboxes.
func (h *NotificationHandler) Read(c *gin.Context) {
	account := currentAccount(c)

	notification, err := h.notifications.FindForAccount(utils.StringToUint(c.Param("id")), account.ID)
	if err != nil || notification == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.notifications.MarkRead(notification); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	account := currentAccount(c)

	if err := h.notifications.MarkAllRead(account.ID); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not update your notifications.")
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	account := currentAccount(c)

	notification, err := h.notifications.FindForAccount(utils.StringToUint(c.Param("id")), account.ID)
	if err != nil || notification == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.notifications.Delete(notification); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	// HTMX removes the row on an empty 200.
	c.Status(http.StatusOK)
}
