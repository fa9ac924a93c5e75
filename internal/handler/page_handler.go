package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/session"
)

// PageHandler serves the static informational pages.
type PageHandler struct {
	renderer
}

func NewPageHandler(sessions session.Store) *PageHandler {
	return &PageHandler{renderer: renderer{sessions: sessions}}
}

func (h *PageHandler) About(c *gin.Context) {
	h.html(c, http.StatusOK, "about.html", nil)
}

func (h *PageHandler) Contact(c *gin.Context) {
	h.html(c, http.StatusOK, "contact.html", nil)
}
