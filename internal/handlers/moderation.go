package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

// ModerationHandler is the approvers' desk for pending news.
type ModerationHandler struct {
	news          *store.NewsRepo
	notifications *store.NotificationRepo
}

func NewModerationHandler() *ModerationHandler {
	return &ModerationHandler{
		news:          store.NewNewsRepo(db.DB),
		notifications: store.NewNotificationRepo(db.DB),
	}
}

// Queue lists pending submissions, oldest first so nothing rots at
// the bottom.
func (h *ModerationHandler) Queue(c *gin.Context) {
	account := currentAccount(c)

	if d := authz.CanPerform(actorFor(account), authz.ActionApproveNews, nil); !d.Allowed {
		renderDenial(c, d)
		return
	}

	pending, err := h.news.ListPending()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the moderation queue.")
		return
	}

	Render(c, http.StatusOK, "moderation/news.html", gin.H{
		"Title":   "Moderation queue",
		"Active":  "moderation",
		"Pending": pending,
	})
}

// Approve publishes a pending submission and tells its author.
func (h *ModerationHandler) Approve(c *gin.Context) {
	account := currentAccount(c)

	if d := authz.CanPerform(actorFor(account), authz.ActionApproveNews, nil); !d.Allowed {
		renderDenial(c, d)
		return
	}

	item, err := h.news.FindByNid(c.Param("nid"))
	if err != nil || item == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if item.Approved {
		c.Status(http.StatusOK)
		return
	}

	if err := h.news.Approve(item.ID, account.ID, time.Now()); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	// The freshly approved item belongs on the front page now.
	utils.GetCache().Delete("news:list:page:1")

	if item.AuthorID != account.ID {
		n := &models.Notification{
			AccountID: item.AuthorID,
			ActorID:   &account.ID,
			Type:      models.NotificationTypeSystem,
			Reason: fmt.Sprintf("approved your story <a href=\"/n/%s\" class=\"notification-link\">%s</a>",
				item.Nid, template.HTMLEscapeString(item.Title)),
		}
		_ = h.notifications.Create(n)
	}

	c.Header("HX-Refresh", "true")
	c.Status(http.StatusOK)
}
