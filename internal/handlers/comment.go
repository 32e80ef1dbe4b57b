package handlers

import (
	"net/http"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/store"

	"github.com/gin-gonic/gin"
)

// CommentHandler covers operations addressed to a comment directly
// rather than through its thread.
type CommentHandler struct {
	comments *store.CommentRepo
}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{comments: store.NewCommentRepo(db.DB)}
}

// Delete removes a comment. Authors may prune their own words,
// moderators and administrators anyone's.
func (h *CommentHandler) Delete(c *gin.Context) {
	account := currentAccount(c)

	comment, err := h.comments.FindByCid(c.Param("cid"))
	if err != nil || comment == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if !authz.CanPerform(actorFor(account), authz.ActionDeleteComment, comment).Allowed {
		c.Status(http.StatusForbidden)
		return
	}

	if err := h.comments.Delete(comment); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
