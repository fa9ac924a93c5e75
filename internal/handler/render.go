package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/session"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
)

// renderer adds the per-request identity and pending flash messages to every
// rendered page. Flashes are popped here, so they show exactly once.
type renderer struct {
	sessions session.Store
}

func (r *renderer) html(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	user, _ := middleware.CurrentUser(c)
	data["CurrentUser"] = user

	if sess := middleware.SessionFrom(c); sess != nil {
		flashes, err := r.sessions.PopFlashes(c.Request.Context(), sess.ID)
		if err != nil {
			log.Printf("failed to pop flashes: %v", err)
		} else if len(flashes) > 0 {
			data["Flashes"] = flashes
		}
	}

	c.HTML(code, name, data)
}

func (r *renderer) flash(c *gin.Context, message string) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return
	}

	if err := r.sessions.AddFlash(c.Request.Context(), sess.ID, message); err != nil {
		log.Printf("failed to store flash: %v", err)
	}
}

func (r *renderer) renderError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("[internal error]: %v", err)
		message = "Something went wrong. Please try again."
	}

	r.html(c, code, "error.html", gin.H{
		"Code":    code,
		"Message": message,
	})
}
