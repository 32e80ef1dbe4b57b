package handlers

import (
	"errors"
	"log"
	"net/http"

	"libris/internal/db"
	"libris/internal/services"
	"libris/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	registration *services.RegistrationService
	presence     *services.PresenceService
	captcha      *services.CaptchaService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		registration: services.NewRegistrationService(db.DB, services.GetMailService()),
		presence:     services.NewPresenceService(db.DB),
		captcha:      services.NewCaptchaService(),
	}
}

// newCaptcha stores a fresh answer in the session and returns the
// question for the form. Every render of the signup form gets its own.
func (h *AuthHandler) newCaptcha(c *gin.Context) string {
	question, answer := h.captcha.Question()
	session := sessions.Default(c)
	session.Set("captcha_answer", answer)
	session.Save()
	return question
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", gin.H{
		"Title":   "Join Libris",
		"Captcha": h.newCaptcha(c),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	input := services.RegisterInput{
		Handle:   c.PostForm("handle"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	session := sessions.Default(c)
	expected, ok := session.Get("captcha_answer").(int)
	if !ok || utils.StringToInt(c.PostForm("captcha")) != expected {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Title":   "Join Libris",
			"Errors":  map[string]string{"captcha": "That answer is wrong, try this one."},
			"Handle":  input.Handle,
			"Email":   input.Email,
			"Captcha": h.newCaptcha(c),
		})
		return
	}
	session.Delete("captcha_answer")
	session.Save()

	_, err := h.registration.Register(input)
	if err != nil {
		if verr, ok := services.AsValidationError(err); ok {
			Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
				"Title":   "Join Libris",
				"Errors":  verr.Fields,
				"Handle":  input.Handle,
				"Email":   input.Email,
				"Captcha": h.newCaptcha(c),
			})
			return
		}
		RenderError(c, http.StatusInternalServerError, "Registration failed, please try again.")
		return
	}

	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Title":   "Sign in",
		"Success": "Account created. A confirmation link is on its way to your inbox.",
	})
}

// Confirm consumes the mailed token and signs the member in.
func (h *AuthHandler) Confirm(c *gin.Context) {
	token := c.Param("token")

	account, err := h.registration.Confirm(token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			RenderError(c, http.StatusNotFound, "That confirmation link is invalid or was already used.")
			return
		}
		RenderError(c, http.StatusInternalServerError, "Confirmation failed, please try again.")
		return
	}

	session := sessions.Default(c)
	session.Set("account_id", account.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not start your session.")
		return
	}

	if err := h.presence.TouchLogin(account); err != nil {
		log.Printf("Failed to stamp login for %s: %v", account.Handle, err)
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Sign in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	account, err := h.registration.Authenticate(email, password)
	if err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{
			"Title": "Sign in",
			"Error": "Invalid email or password.",
			"Email": email,
		})
		return
	}

	// Unconfirmed accounts sign in like everyone else, the layout
	// keeps showing the confirmation reminder until the link is used.
	session := sessions.Default(c)
	session.Set("account_id", account.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not start your session.")
		return
	}

	if err := h.presence.TouchLogin(account); err != nil {
		log.Printf("Failed to stamp login for %s: %v", account.Handle, err)
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
