package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/service"
	"github.com/inkwell-blog/inkwell/internal/session"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/inkwell-blog/inkwell/pkg/validator"
)

type AuthHandler struct {
	renderer
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService, sessions session.Store) *AuthHandler {
	return &AuthHandler{
		renderer: renderer{sessions: sessions},
		auth:     auth,
	}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.html(c, http.StatusOK, "register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		h.html(c, http.StatusOK, "register.html", gin.H{
			"Error": validator.FormatValidationError(err),
			"Form":  input,
		})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, apperror.ErrEmailTaken) {
			h.flash(c, "You already have an account with this email, please log in.")
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		h.renderError(c, err)
		return
	}

	h.establishSession(c, user.ID)
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.html(c, http.StatusOK, "login.html", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		h.html(c, http.StatusOK, "login.html", gin.H{
			"Error": validator.FormatValidationError(err),
			"Form":  input,
		})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		// The two failure modes stay distinguishable on purpose; see the
		// design notes on account enumeration.
		if errors.Is(err, apperror.ErrUnknownEmail) || errors.Is(err, apperror.ErrWrongPassword) {
			h.flash(c, err.Error())
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		h.renderError(c, err)
		return
	}

	h.establishSession(c, user.ID)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.SessionFrom(c); sess != nil {
		if err := h.sessions.ClearUser(c.Request.Context(), sess.ID); err != nil {
			log.Printf("failed to clear session: %v", err)
		}
	}

	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) establishSession(c *gin.Context, userID uint) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		h.renderError(c, apperror.ErrInternal)
		return
	}

	if err := h.sessions.SetUser(c.Request.Context(), sess.ID, userID); err != nil {
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}
