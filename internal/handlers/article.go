package handlers

import (
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
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

const articlesPerPage = 30

type ArticleHandler struct {
	articles      *store.ArticleRepo
	comments      *store.CommentRepo
	notifications *store.NotificationRepo
	mail          *services.MailService
}

func NewArticleHandler() *ArticleHandler {
	return &ArticleHandler{
		articles:      store.NewArticleRepo(db.DB),
		comments:      store.NewCommentRepo(db.DB),
		notifications: store.NewNotificationRepo(db.DB),
		mail:          services.GetMailService(),
	}
}

func (h *ArticleHandler) fillCommentCounts(items []models.Article) {
	if len(items) == 0 {
		return
	}
	ids := make([]uint, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	counts, err := h.comments.CountForArticles(ids)
	if err != nil {
		return
	}
	for i := range items {
		items[i].CommentCount = counts[items[i].ID]
	}
}

// List shows member articles, newest first. Articles publish without
// review, so there is no approval filter here.
func (h *ArticleHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if n := utils.StringToInt(p); n > 0 {
			page = n
		}
	}

	cacheKey := fmt.Sprintf("article:list:page:%d", page)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "article/list.html", data)
			return
		}
	}

	total, err := h.articles.Count()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the articles.")
		return
	}
	totalPages := int(math.Ceil(float64(total) / float64(articlesPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	items, err := h.articles.List((page-1)*articlesPerPage, articlesPerPage)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the articles.")
		return
	}
	h.fillCommentCounts(items)

	data := gin.H{
		"Articles":    items,
		"Active":      "articles",
		"Title":       "Articles",
		"CurrentPage": page,
		"TotalPages":  totalPages,
	}
	utils.GetCache().Set(cacheKey, data, time.Minute)

	Render(c, http.StatusOK, "article/list.html", data)
}

func (h *ArticleHandler) Detail(c *gin.Context) {
	actor := actorFor(currentAccount(c))

	item, err := h.articles.FindByAid(c.Param("aid"))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the article.")
		return
	}
	if item == nil {
		RenderError(c, http.StatusNotFound, "There is no such article.")
		return
	}

	comments, err := h.comments.ListForArticle(item.ID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the article.")
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

	Render(c, http.StatusOK, "article/detail.html", gin.H{
		"Item":     item,
		"Content":  utils.RenderMarkdown(item.Content),
		"Comments": rendered,
		"Title":    item.Title,
		"CanEdit":  authz.CanPerform(actor, authz.ActionEditArticle, item).Allowed,
	})
}

func (h *ArticleHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "article/create.html", gin.H{"Title": "Write an article"})
}

func (h *ArticleHandler) Create(c *gin.Context) {
	account := currentAccount(c)

	title := strings.TrimSpace(c.PostForm("title"))
	content := c.PostForm("content")

	if title == "" || strings.TrimSpace(content) == "" {
		Render(c, http.StatusBadRequest, "article/create.html", gin.H{
			"Title":     "Write an article",
			"Error":     "Articles need both a title and a body.",
			"FormTitle": title,
			"Content":   content,
		})
		return
	}

	item := &models.Article{
		Aid:      utils.RandomString(8),
		AuthorID: account.ID,
		Title:    title,
		Content:  content,
	}
	if err := h.articles.Create(item); err != nil {
		Render(c, http.StatusInternalServerError, "article/create.html", gin.H{
			"Title":     "Write an article",
			"Error":     "Could not save the article.",
			"FormTitle": title,
			"Content":   content,
		})
		return
	}

	utils.GetCache().Delete("article:list:page:1")

	c.Redirect(http.StatusFound, "/a/"+item.Aid)
}

func (h *ArticleHandler) ShowEdit(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.articles.FindByAid(c.Param("aid"))
	if err != nil || item == nil {
		RenderError(c, http.StatusNotFound, "There is no such article.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditArticle, item); !d.Allowed {
		renderDenial(c, d)
		return
	}

	Render(c, http.StatusOK, "article/edit.html", gin.H{
		"Title": "Edit article",
		"Item":  item,
	})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.articles.FindByAid(c.Param("aid"))
	if err != nil || item == nil {
		RenderError(c, http.StatusNotFound, "There is no such article.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditArticle, item); !d.Allowed {
		renderDenial(c, d)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	content := c.PostForm("content")
	if title == "" || strings.TrimSpace(content) == "" {
		Render(c, http.StatusBadRequest, "article/edit.html", gin.H{
			"Error": "Articles need both a title and a body.",
			"Item":  item,
		})
		return
	}

	item.Title = title
	item.Content = content

	if err := h.articles.Update(item); err != nil {
		Render(c, http.StatusInternalServerError, "article/edit.html", gin.H{
			"Error": "Could not save the article.",
			"Item":  item,
		})
		return
	}

	utils.GetCache().Delete("article:list:page:1")

	c.Redirect(http.StatusFound, "/a/"+item.Aid)
}

func (h *ArticleHandler) Delete(c *gin.Context) {
	account := currentAccount(c)

	item, err := h.articles.FindByAid(c.Param("aid"))
	if err != nil || item == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if !authz.CanPerform(actorFor(account), authz.ActionEditArticle, item).Allowed {
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.articles.Delete(item); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	utils.GetCache().Delete("article:list:page:1")

	if strings.Contains(c.GetHeader("HX-Current-URL"), "/a/") {
		c.Header("HX-Redirect", "/articles")
	}
	c.Status(http.StatusOK)
}

func (h *ArticleHandler) CreateComment(c *gin.Context) {
	account := currentAccount(c)
	aid := c.Param("aid")

	item, err := h.articles.FindByAid(aid)
	if err != nil || item == nil {
		c.Redirect(http.StatusFound, "/articles")
		return
	}

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.Redirect(http.StatusFound, "/a/"+aid)
		return
	}

	var parentID *uint
	if raw := c.PostForm("parent_id"); raw != "" {
		if id := utils.StringToUint(raw); id > 0 {
			parentID = &id
		}
	}

	comment := &models.Comment{
		Cid:       utils.RandomString(8),
		ArticleID: &item.ID,
		AuthorID:  account.ID,
		ParentID:  parentID,
		Content:   content,
	}
	if err := h.comments.Create(comment); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not post the comment.")
		return
	}

	go h.notifyArticleComment(item, comment, account)

	c.Redirect(http.StatusFound, "/a/"+aid)
}

func (h *ArticleHandler) notifyArticleComment(item *models.Article, comment *models.Comment, actor *models.Account) {
	link := fmt.Sprintf("/a/%s#comment-%d", item.Aid, comment.ID)

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
		Type:      models.NotificationTypeCommentArticle,
		Reason: fmt.Sprintf("commented on your article <a href=\"%s\" class=\"notification-link\">%s</a>",
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
