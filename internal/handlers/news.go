package handlers

import (
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/models"
	"libris/internal/services"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

const newsPerPage = 30

type NewsHandler struct {
	news          *store.NewsRepo
	comments      *store.CommentRepo
	notifications *store.NotificationRepo
	mail          *services.MailService
	preview       *services.LinkPreviewService
}

func NewNewsHandler() *NewsHandler {
	return &NewsHandler{
		news:          store.NewNewsRepo(db.DB),
		comments:      store.NewCommentRepo(db.DB),
		notifications: store.NewNotificationRepo(db.DB),
		mail:          services.GetMailService(),
		preview:       services.NewLinkPreviewService(),
	}
}

// fillCommentCounts batch-loads comment counts for a page of items.
func (h *NewsHandler) fillCommentCounts(items []models.News) {
	if len(items) == 0 {
		return
	}
	ids := make([]uint, len(items))
	for i, n := range items {
		ids[i] = n.ID
	}
	counts, err := h.comments.CountForNews(ids)
	if err != nil {
		return
	}
	for i := range items {
		items[i].CommentCount = counts[items[i].ID]
	}
}

// List shows the approved news desk, newest first.
func (h *NewsHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if n := utils.StringToInt(p); n > 0 {
			page = n
		}
	}

	cacheKey := fmt.Sprintf("news:list:page:%d", page)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "news/list.html", data)
			return
		}
	}

	total, err := h.news.CountApproved()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the news desk.")
		return
	}
	totalPages := int(math.Ceil(float64(total) / float64(newsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	items, err := h.news.ListApproved((page-1)*newsPerPage, newsPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the news desk.")
		return
	}
	h.fillCommentCounts(items)

	data := gin.H{
		"News":        items,
		"Active":      "news",
		"Title":       "News desk",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	}

	// Cached for a minute, approvals and deletions invalidate page 1.
	utils.GetCache().Set(cacheKey, data, time.Minute)

	Render(c, http.StatusOK, "news/list.html", data)
}

// Detail shows one news item with its comment thread. Pending items
// stay hidden from everyone but their author and the approvers: other
// viewers get the same 404 an unknown nid produces.
func (h *NewsHandler) Detail(c *gin.Context) {
	nid := c.Param("nid")
	account := currentAccount(c)
	actor := actorFor(account)

	item, err := h.news.FindByNid(nid)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the story.")
		return
	}
	if item == nil {
		RenderError(c, http.StatusNotFound, "There is no such story.")
		return
	}

	if !item.Approved {
		isAuthor := account != nil && account.ID == item.AuthorID
		if !isAuthor && !authz.CanPerform(actor, authz.ActionApproveNews, nil).Allowed {
			RenderError(c, http.StatusNotFound, "There is no such story.")
			return
		}
	}

	comments, err := h.comments.ListForNews(item.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the story.")
		return
	}

	type renderedComment struct {
		models.Comment
		ContentHTML template.HTML
		Floor       int
		CanDelete   bool
	}
	rendered := make([]renderedComment, len(comments))
	for i, com := range comments {
		rendered[i] = renderedComment{
			Comment:     com,
			ContentHTML: utils.RenderMarkdown(com.Content),
			Floor:       i + 1,
			CanDelete:   authz.CanPerform(actor, authz.ActionDeleteComment, com).Allowed,
		}
	}

	Render(c, http.StatusOK, "news/detail.html", gin.H{
		"Item":       item,
		"Content":    utils.RenderMarkdown(item.Content),
		"Comments":   rendered,
		"Title":      item.Title,
		"CanEdit":    authz.CanPerform(actor, authz.ActionEditNews, item).Allowed,
		"CanApprove": authz.CanPerform(actor, authz.ActionApproveNews, nil).Allowed && !item.Approved,
	})
}

func (h *NewsHandler) ShowSubmit(c *gin.Context) {
	Render(c, http.StatusOK, "news/create.html", gin.H{"Title": "Submit news"})
}

// Preview fills the submit form from the linked page. It swaps the
// title field in place and never overwrites notes the author already
// typed.
func (h *NewsHandler) Preview(c *gin.Context) {
	typedTitle := strings.TrimSpace(c.Query("title"))
	typedContent := c.Query("content")

	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.HTML(http.StatusOK, "news/preview.html", gin.H{
			"FormTitle": typedTitle,
			"Error":     "Paste a link first.",
		})
		return
	}

	result, err := h.preview.Fetch(url)
	if err != nil {
		log.Printf("Preview of %s failed: %v", url, err)
		c.HTML(http.StatusOK, "news/preview.html", gin.H{
			"FormTitle": typedTitle,
			"Error":     "Could not read that page.",
		})
		return
	}

	title := typedTitle
	if result.Title != "" {
		title = result.Title
	}
	content := ""
	if typedContent == "" && result.Excerpt != "" {
		content = result.Excerpt
	}

	c.HTML(http.StatusOK, "news/preview.html", gin.H{
		"FormTitle": title,
		"Content":   content,
	})
}

// Submit stores a new item in the moderation queue.
func (h *NewsHandler) Submit(c *gin.Context) {
	account := currentAccount(c)

	title := strings.TrimSpace(c.PostForm("title"))
	url := strings.TrimSpace(c.PostForm("url"))
	content := c.PostForm("content")

	if title == "" {
		Render(c, http.StatusBadRequest, "news/create.html", gin.H{
			"Title":   "Submit news",
			"Error":   "A title is required.",
			"URL":     url,
			"Content": content,
		})
		return
	}

	item := &models.News{
		Nid:      utils.RandomString(8),
		AuthorID: account.ID,
		Title:    title,
		URL:      url,
		Content:  content,
	}
	if err := h.news.Create(item); err != nil {
		Render(c, http.StatusInternalServerError, "news/create.html", gin.H{
			"Title":     "Submit news",
			"Error":     "Could not save the submission.",
			"FormTitle": title,
			"URL":       url,
			"Content":   content,
		})
		return
	}

	// The author lands on their own pending page while the item
	// waits for a moderator.
	c.Redirect(http.StatusFound, "/n/"+item.Nid)
}

func (h *NewsHandler) ShowEdit(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.news.FindByNid(c.Param("nid"))
	if err != nil || item == nil {
		RenderError(c, http.StatusNotFound, "There is no such story.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditNews, item); !d.Allowed {
		renderDenial(c, d)
		return
	}

	Render(c, http.StatusOK, "news/edit.html", gin.H{
		"Title": "Edit story",
		"Item":  item,
	})
}

func (h *NewsHandler) Update(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.news.FindByNid(c.Param("nid"))
	if err != nil || item == nil {
		RenderError(c, http.StatusNotFound, "There is no such story.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditNews, item); !d.Allowed {
		renderDenial(c, d)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		Render(c, http.StatusBadRequest, "news/edit.html", gin.H{
			"Error": "A title is required.",
			"Item":  item,
		})
		return
	}

	item.Title = title
	item.URL = strings.TrimSpace(c.PostForm("url"))
	item.Content = c.PostForm("content")

	if err := h.news.Update(item); err != nil {
		Render(c, http.StatusInternalServerError, "news/edit.html", gin.H{
			"Error": "Could not save the story.",
			"Item":  item,
		})
		return
	}

	utils.GetCache().Delete("news:list:page:1")

	c.Redirect(http.StatusFound, "/n/"+item.Nid)
}

// Delete removes a story outright. Edit rights cover removal.
func (h *NewsHandler) Delete(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.news.FindByNid(c.Param("nid"))
	if err != nil || item == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if !authz.CanPerform(actorFor(account), authz.ActionEditNews, item).Allowed {
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.news.Delete(item); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	utils.GetCache().Delete("news:list:page:1")

	// HTMX callers remove the row on 200, full pages go home.
	if strings.Contains(c.GetHeader("HX-Current-URL"), "/n/") {
		c.Header("HX-Redirect", "/")
	}
	c.Status(http.StatusOK)
}

// CreateComment appends to a story's thread and notifies the people
// involved.
func (h *NewsHandler) CreateComment(c *gin.Context) {
	account := currentAccount(c)
	nid := c.Param("nid")

	item, err := h.news.FindByNid(nid)
	if err != nil || item == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.Redirect(http.StatusFound, "/n/"+nid)
		return
	}

	var parentID *uint
	if raw := c.PostForm("parent_id"); raw != "" {
		if id := utils.StringToUint(raw); id > 0 {
			parentID = &id
		}
	}

	comment := &models.Comment{
		Cid:      utils.RandomString(8),
		NewsID:   &item.ID,
		AuthorID: account.ID,
		ParentID: parentID,
		Content:  content,
	}
	if err := h.comments.Create(comment); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not post the comment.")
		return
	}

	go h.notifyNewsComment(item, comment, account)

	c.Redirect(http.StatusFound, "/n/"+nid)
}

// notifyNewsComment writes the in-app notification and sends the
// email for a fresh comment. Replies notify the parent comment's
// author, top-level comments notify the story's author. Nobody is
// notified about their own comment.
func (h *NewsHandler) notifyNewsComment(item *models.News, comment *models.Comment, actor *models.Account) {
	link := fmt.Sprintf("/n/%s#comment-%d", item.Nid, comment.ID)

	if comment.ParentID != nil {
		parent, err := h.comments.FindByID(*comment.ParentID)
		if err != nil || parent == nil || parent.AuthorID == actor.ID {
			return
		}
		n := &models.Notification{
			AccountID: parent.AuthorID,
			ActorID:   &actor.ID,
			Type:      models.NotificationTypeReplyComment,
			Reason: fmt.Sprintf("replied to your comment on <a href=\"%s\" class=\"notification-link\">%s</a>",
				link, template.HTMLEscapeString(item.Title)),
		}
		if err := h.notifications.Create(n); err != nil {
			log.Printf("Failed to create reply notification: %v", err)
			return
		}
		if parent.Author.Email != "" {
			h.mail.SendCommentNotification(parent.Author.Email, actor.Handle, item.Title, comment.Content, absoluteURL(link))
		}
		return
	}

	if item.AuthorID == actor.ID {
		return
	}
	n := &models.Notification{
		AccountID: item.AuthorID,
		ActorID:   &actor.ID,
		Type:      models.NotificationTypeCommentNews,
		Reason: fmt.Sprintf("commented on your story <a href=\"%s\" class=\"notification-link\">%s</a>",
			link, template.HTMLEscapeString(item.Title)),
	}
	if err := h.notifications.Create(n); err != nil {
		log.Printf("Failed to create comment notification: %v", err)
		return
	}
	if item.Author.Email != "" {
		h.mail.SendCommentNotification(item.Author.Email, actor.Handle, item.Title, comment.Content, absoluteURL(link))
	}
}

// absoluteURL prefixes a site-relative path for use in emails.
func absoluteURL(path string) string {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	return strings.TrimSuffix(siteURL, "/") + path
}
