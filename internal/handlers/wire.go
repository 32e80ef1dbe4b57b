package handlers

import (
	"errors"
	"log"
	"net/http"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/models"
	"libris/internal/services"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

// WireHandler runs the shared newswire: feed sources the approvers
// subscribe to, and the stream of entries they can pick up as pending
// news submissions.
type WireHandler struct {
	wire    *store.WireRepo
	news    *store.NewsRepo
	fetcher *services.NewswireService
}

func NewWireHandler() *WireHandler {
	return &WireHandler{
		wire:    store.NewWireRepo(db.DB),
		news:    store.NewNewsRepo(db.DB),
		fetcher: services.NewNewswireService(db.DB),
	}
}

// gate keeps the wire desk to the same crowd that approves news.
func (h *WireHandler) gate(c *gin.Context) bool {
	account := currentAccount(c)
	if d := authz.CanPerform(actorFor(account), authz.ActionApproveNews, nil); !d.Allowed {
		renderDenial(c, d)
		return false
	}
	return true
}

// wireErrors maps redirect codes to the copy shown above the page.
var wireErrors = map[string]string{
	"url_required": "Feed URL is required.",
	"duplicate":    "That feed is already on the wire.",
	"unreadable":   "Could not read that feed.",
	"refresh":      "Could not refresh that feed.",
	"picked":       "That story was already picked up.",
	"submitted":    "That link was already submitted as news.",
}

func (h *WireHandler) Index(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	sources, err := h.wire.ListSources()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the newswire.")
		return
	}
	items, err := h.wire.ListRecentItems(60)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the newswire.")
		return
	}

	Render(c, http.StatusOK, "wire/index.html", gin.H{
		"Title":   "Newswire",
		"Sources": sources,
		"Items":   items,
		"Error":   wireErrors[c.Query("error")],
	})
}

func (h *WireHandler) AddSource(c *gin.Context) {
	if !h.gate(c) {
		return
	}
	account := currentAccount(c)

	url := c.PostForm("url")
	if url == "" {
		c.Redirect(http.StatusFound, "/wire?error=url_required")
		return
	}

	if _, err := h.fetcher.AddSource(url, account.ID); err != nil {
		if errors.Is(err, services.ErrDuplicateSource) {
			c.Redirect(http.StatusFound, "/wire?error=duplicate")
			return
		}
		log.Printf("❌ Failed to subscribe %s: %v", url, err)
		c.Redirect(http.StatusFound, "/wire?error=unreadable")
		return
	}

	c.Redirect(http.StatusFound, "/wire")
}

func (h *WireHandler) DeleteSource(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	id := uint(utils.StringToInt(c.Param("id")))
	source, err := h.wire.FindSourceByID(id)
	if err != nil || source == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.wire.DeleteSource(source); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	// Items from the source vanish with it, so redraw the whole page.
	c.Header("HX-Refresh", "true")
	c.Status(http.StatusOK)
}

func (h *WireHandler) RefreshSource(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	id := uint(utils.StringToInt(c.Param("id")))
	source, err := h.wire.FindSourceByID(id)
	if err != nil || source == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.fetcher.Refresh(source); err != nil {
		log.Printf("❌ Manual refresh of %s failed: %v", source.URL, err)
		c.Redirect(http.StatusFound, "/wire?error=refresh")
		return
	}

	c.Redirect(http.StatusFound, "/wire")
}

// Pickup turns a wire entry into a pending news submission credited to
// the approver who picked it. It lands in the moderation queue like
// any member submission.
func (h *WireHandler) Pickup(c *gin.Context) {
	if !h.gate(c) {
		return
	}
	account := currentAccount(c)

	id := uint(utils.StringToInt(c.Param("id")))
	item, err := h.wire.FindItemByID(id)
	if err != nil || item == nil {
		c.Status(http.StatusNotFound)
		return
	}
	if item.PickedNewsID != nil {
		c.Redirect(http.StatusFound, "/wire?error=picked")
		return
	}

	if existing, err := h.news.FindByURL(item.Link); err == nil && existing != nil {
		c.Redirect(http.StatusFound, "/wire?error=submitted")
		return
	}

	news := &models.News{
		Nid:      utils.RandomString(8),
		AuthorID: account.ID,
		Title:    item.Title,
		URL:      item.Link,
		Content:  item.Excerpt,
	}
	if err := h.news.Create(news); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not pick up that story.")
		return
	}

	if err := h.wire.MarkPicked(item.ID, news.ID); err != nil {
		log.Printf("⚠️ Picked item %d but could not mark it: %v", item.ID, err)
	}

	c.Redirect(http.StatusFound, "/n/"+news.Nid)
}
