package handlers

import (
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

type AccountHandler struct {
	accounts *store.AccountRepo
	articles *store.ArticleRepo
	news     *store.NewsRepo
	tips     *store.TipRepo
	comments *store.CommentRepo
	presence *services.PresenceService
}

func NewAccountHandler() *AccountHandler {
	return &AccountHandler{
		accounts: store.NewAccountRepo(db.DB),
		articles: store.NewArticleRepo(db.DB),
		news:     store.NewNewsRepo(db.DB),
		tips:     store.NewTipRepo(db.DB),
		comments: store.NewCommentRepo(db.DB),
		presence: services.NewPresenceService(db.DB),
	}
}

// Profile is the public member page at /u/:handle.
func (h *AccountHandler) Profile(c *gin.Context) {
	account, err := h.accounts.FindByHandle(c.Param("handle"))
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the profile.")
		return
	}
	if account == nil {
		RenderError(c, http.StatusNotFound, "There is no such member.")
		return
	}

	viewer := currentAccount(c)
	isSelf := viewer != nil && viewer.ID == account.ID

	tab := c.DefaultQuery("tab", "articles")

	var articles []models.Article
	var tips []models.Tip
	var news []models.News

	switch tab {
	case "tips":
		tips, _ = h.tips.ListByAuthor(account.ID, 50)
	case "news":
		all, _ := h.news.ListByAuthor(account.ID, 50)
		// Pending submissions stay private to their author.
		for _, n := range all {
			if n.Approved || isSelf {
				news = append(news, n)
			}
		}
	default:
		tab = "articles"
		articles, _ = h.articles.ListByAuthor(account.ID, 50)
	}

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":     account.Handle,
		"Member":    account,
		"IsSelf":    isSelf,
		"Online":    services.IsOnline(account, time.Now()),
		"DaysSince": utils.DaysSinceJoined(account.CreatedAt),
		"Articles":  articles,
		"Tips":      tips,
		"NewsItems": news,
		"ActiveTab": tab,
	})
}

// Members lists who is in the reading room right now plus the newest
// signups. "Right now" means active inside the presence window.
func (h *AccountHandler) Members(c *gin.Context) {
	online, err := h.presence.OnlineAccounts(time.Now())
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the member list.")
		return
	}

	newest, err := h.accounts.ListNewest(20)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the member list.")
		return
	}

	Render(c, http.StatusOK, "user/members.html", gin.H{
		"Title":       "Members",
		"Active":      "members",
		"Online":      online,
		"OnlineCount": len(online),
		"Newest":      newest,
	})
}

// Dashboard is the signed-in member's overview.
func (h *AccountHandler) Dashboard(c *gin.Context) {
	account := currentAccount(c)

	articleCount, _ := h.articles.CountByAuthor(account.ID)
	newsCount, _ := h.news.CountByAuthor(account.ID)
	tipCount, _ := h.tips.CountByAuthor(account.ID)
	commentCount, _ := h.comments.CountByAuthor(account.ID)

	Render(c, http.StatusOK, "dashboard/overview.html", gin.H{
		"Title":        "Dashboard",
		"Member":       account,
		"DaysSince":    utils.DaysSinceJoined(account.CreatedAt),
		"ArticleCount": articleCount,
		"NewsCount":    newsCount,
		"TipCount":     tipCount,
		"CommentCount": commentCount,
		"CanModerate":  authz.CanPerform(actorFor(account), authz.ActionApproveNews, nil).Allowed,
	})
}

func (h *AccountHandler) ShowSettings(c *gin.Context) {
	Render(c, http.StatusOK, "dashboard/settings.html", gin.H{
		"Title":   "Settings",
		"Member":  currentAccount(c),
		"Success": c.Query("success") == "1",
	})
}

// UpdateSettings changes bio, email and password. The handle stays
// fixed, it is the profile URL other members link to.
func (h *AccountHandler) UpdateSettings(c *gin.Context) {
	account := currentAccount(c)

	email := strings.TrimSpace(strings.ToLower(c.PostForm("email")))
	bio := strings.TrimSpace(c.PostForm("bio"))
	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")

	renderFail := func(code int, message string) {
		Render(c, code, "dashboard/settings.html", gin.H{
			"Error":  message,
			"Member": account,
		})
	}

	updates := make(map[string]interface{})

	if email != "" && email != account.Email {
		if parts := strings.Split(email, "@"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			renderFail(http.StatusBadRequest, "That email address looks malformed.")
			return
		}
		existing, err := h.accounts.FindByEmail(email)
		if err != nil {
			renderFail(http.StatusInternalServerError, "Could not save your settings.")
			return
		}
		if existing != nil && existing.ID != account.ID {
			renderFail(http.StatusBadRequest, "That email address is already in use.")
			return
		}
		updates["email"] = email
	}

	if len(bio) > 200 {
		renderFail(http.StatusBadRequest, "Bios are capped at 200 characters.")
		return
	}
	if bio != account.Bio {
		updates["bio"] = bio
	}

	if oldPassword != "" || newPassword != "" {
		if !utils.CheckPasswordHash(oldPassword, account.PasswordHash) {
			renderFail(http.StatusBadRequest, "Your current password did not match.")
			return
		}
		if len(newPassword) < 6 {
			renderFail(http.StatusBadRequest, "New passwords need at least 6 characters.")
			return
		}
		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			renderFail(http.StatusInternalServerError, "Could not save your settings.")
			return
		}
		updates["password_hash"] = hash
	}

	if len(updates) > 0 {
		if err := h.accounts.UpdateFields(account.ID, updates); err != nil {
			renderFail(http.StatusInternalServerError, "Could not save your settings.")
			return
		}
	}

	c.Redirect(http.StatusFound, "/dashboard/settings?success=1")
}
