package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

type TipHandler struct {
	tips *store.TipRepo
}

func NewTipHandler() *TipHandler {
	return &TipHandler{tips: store.NewTipRepo(db.DB)}
}

// List shows the most recent reading tips. Tips are short enough
// that one page of them is plenty.
func (h *TipHandler) List(c *gin.Context) {
	actor := actorFor(currentAccount(c))

	tips, err := h.tips.ListNewest(100)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the tips board.")
		return
	}

	type renderedTip struct {
		models.Tip
		ContentHTML template.HTML
		CanEdit     bool
	}
	rendered := make([]renderedTip, len(tips))
	for i, tip := range tips {
		rendered[i] = renderedTip{
			Tip:         tip,
			ContentHTML: utils.RenderMarkdown(tip.Content),
			CanEdit:     authz.CanPerform(actor, authz.ActionEditTip, tip).Allowed,
		}
	}

	Render(c, http.StatusOK, "tip/list.html", gin.H{
		"Tips":   rendered,
		"Active": "tips",
		"Title":  "Reading tips",
	})
}

func (h *TipHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "tip/create.html", gin.H{"Title": "Share a tip"})
}

func (h *TipHandler) Create(c *gin.Context) {
	account := currentAccount(c)

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		Render(c, http.StatusBadRequest, "tip/create.html", gin.H{
			"Title": "Share a tip",
			"Error": "An empty tip helps nobody.",
		})
		return
	}

	tip := &models.Tip{
		AuthorID: account.ID,
		Content:  content,
	}
	if err := h.tips.Create(tip); err != nil {
		Render(c, http.StatusInternalServerError, "tip/create.html", gin.H{
			"Title":   "Share a tip",
			"Error":   "Could not save the tip.",
			"Content": content,
		})
		return
	}

	c.Redirect(http.StatusFound, "/tips")
}

func (h *TipHandler) ShowEdit(c *gin.Context) {
	account := currentAccount(c)

	tip, err := h.tips.FindByID(utils.StringToUint(c.Param("id")))
	if err != nil || tip == nil {
		RenderError(c, http.StatusNotFound, "There is no such tip.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTip, tip); !d.Allowed {
		renderDenial(c, d)
		return
	}

	Render(c, http.StatusOK, "tip/edit.html", gin.H{
		"Title": "Edit tip",
		"Tip":   tip,
	})
}

func (h *TipHandler) Update(c *gin.Context) {
	account := currentAccount(c)

	tip, err := h.tips.FindByID(utils.StringToUint(c.Param("id")))
	if err != nil || tip == nil {
		RenderError(c, http.StatusNotFound, "There is no such tip.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTip, tip); !d.Allowed {
		renderDenial(c, d)
		return
	}

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		Render(c, http.StatusBadRequest, "tip/edit.html", gin.H{
			"Error": "An empty tip helps nobody.",
			"Tip":   tip,
		})
		return
	}

	tip.Content = content
	if err := h.tips.Update(tip); err != nil {
		Render(c, http.StatusInternalServerError, "tip/edit.html", gin.H{
			"Error": "Could not save the tip.",
			"Tip":   tip,
		})
		return
	}

	c.Redirect(http.StatusFound, "/tips")
}

func (h *TipHandler) Delete(c *gin.Context) {
	account := currentAccount(c)

	tip, err := h.tips.FindByID(utils.StringToUint(c.Param("id")))
	if err != nil || tip == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if !authz.CanPerform(actorFor(account), authz.ActionEditTip, tip).Allowed {
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.tips.Delete(tip); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
