package handlers

import (
	"net/http"
	"strings"

	"libris/internal/authz"
	"libris/internal/db"
	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

// TermHandler serves the book-trade glossary. Any signed-in member
// may add or rewrite entries, the wiki habit of small corrections is
// the point.
type TermHandler struct {
	terms *store.TermRepo
}

func NewTermHandler() *TermHandler {
	return &TermHandler{terms: store.NewTermRepo(db.DB)}
}

func (h *TermHandler) List(c *gin.Context) {
	actor := actorFor(currentAccount(c))

	terms, err := h.terms.ListAlphabetical()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the glossary.")
		return
	}

	Render(c, http.StatusOK, "term/list.html", gin.H{
		"Terms":   terms,
		"Active":  "glossary",
		"Title":   "Glossary",
		"CanEdit": authz.CanPerform(actor, authz.ActionEditTerm, nil).Allowed,
	})
}

func (h *TermHandler) ShowCreate(c *gin.Context) {
	account := currentAccount(c)

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTerm, nil); !d.Allowed {
		renderDenial(c, d)
		return
	}

	Render(c, http.StatusOK, "term/create.html", gin.H{"Title": "Add a term"})
}

func (h *TermHandler) Create(c *gin.Context) {
	account := currentAccount(c)

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTerm, nil); !d.Allowed {
		renderDenial(c, d)
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	definition := strings.TrimSpace(c.PostForm("definition"))

	if name == "" || definition == "" {
		Render(c, http.StatusBadRequest, "term/create.html", gin.H{
			"Title":      "Add a term",
			"Error":      "A term needs a name and a definition.",
			"Name":       name,
			"Definition": definition,
		})
		return
	}

	existing, err := h.terms.FindByName(name)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not save the term.")
		return
	}
	if existing != nil {
		Render(c, http.StatusConflict, "term/create.html", gin.H{
			"Title":      "Add a term",
			"Error":      "That term is already in the glossary, edit it instead.",
			"Name":       name,
			"Definition": definition,
		})
		return
	}

	term := &models.Term{
		Name:       name,
		Definition: definition,
		AuthorID:   &account.ID,
	}
	if err := h.terms.Create(term); err != nil {
		Render(c, http.StatusInternalServerError, "term/create.html", gin.H{
			"Title":      "Add a term",
			"Error":      "Could not save the term.",
			"Name":       name,
			"Definition": definition,
		})
		return
	}

	c.Redirect(http.StatusFound, "/glossary")
}

func (h *TermHandler) ShowEdit(c *gin.Context) {
	account := currentAccount(c)

	term, err := h.terms.FindByID(utils.StringToUint(c.Param("id")))
	if err != nil || term == nil {
		RenderError(c, http.StatusNotFound, "There is no such term.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTerm, term); !d.Allowed {
		renderDenial(c, d)
		return
	}

	Render(c, http.StatusOK, "term/edit.html", gin.H{
		"Title": "Edit term",
		"Term":  term,
	})
}

func (h *TermHandler) Update(c *gin.Context) {
	account := currentAccount(c)

	term, err := h.terms.FindByID(utils.StringToUint(c.Param("id")))
	if err != nil || term == nil {
		RenderError(c, http.StatusNotFound, "There is no such term.")
		return
	}

	if d := authz.CanPerform(actorFor(account), authz.ActionEditTerm, term); !d.Allowed {
		renderDenial(c, d)
		return
	}

	definition := strings.TrimSpace(c.PostForm("definition"))
	if definition == "" {
		Render(c, http.StatusBadRequest, "term/edit.html", gin.H{
			"Error": "A term needs a definition.",
			"Term":  term,
		})
		return
	}

	term.Definition = definition
	term.EditorID = &account.ID

	if err := h.terms.Update(term); err != nil {
		Render(c, http.StatusInternalServerError, "term/edit.html", gin.H{
			"Error": "Could not save the term.",
			"Term":  term,
		})
		return
	}

	c.Redirect(http.StatusFound, "/glossary")
}
