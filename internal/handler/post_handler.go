package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/inkwell-blog/inkwell/internal/middleware"
	"github.com/inkwell-blog/inkwell/internal/service"
	"github.com/inkwell-blog/inkwell/internal/session"
	"github.com/inkwell-blog/inkwell/pkg/apperror"
	"github.com/inkwell-blog/inkwell/pkg/storage"
	"github.com/inkwell-blog/inkwell/pkg/validator"
)

type PostHandler struct {
	renderer
	posts    service.PostService
	comments service.CommentService
	search   service.SearchService
	images   storage.ImageStorage
}

func NewPostHandler(posts service.PostService, comments service.CommentService, search service.SearchService, images storage.ImageStorage, sessions session.Store) *PostHandler {
	return &PostHandler{
		renderer: renderer{sessions: sessions},
		posts:    posts,
		comments: comments,
		search:   search,
		images:   images,
	}
}

func (h *PostHandler) Index(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.html(c, http.StatusOK, "index.html", gin.H{"Posts": posts})
}

func (h *PostHandler) Show(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.renderError(c, apperror.ErrNotFound)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.html(c, http.StatusOK, "post.html", gin.H{"Post": post})
}

// SubmitComment handles POST /post/:id. Anonymous visitors are sent to the
// login page with a flash instead of an error page; no row is ever written
// for them.
func (h *PostHandler) SubmitComment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.renderError(c, apperror.ErrNotFound)
		return
	}

	user, authenticated := middleware.CurrentUser(c)
	if !authenticated {
		h.flash(c, "You need to login or register to comment.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	var input service.CommentInput
	if err := c.ShouldBind(&input); err != nil {
		h.flash(c, validator.FormatValidationError(err))
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/post/%d", id))
		return
	}

	if _, err := h.comments.Create(c.Request.Context(), id, input, user); err != nil {
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/post/%d", id))
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.html(c, http.StatusOK, "make_post.html", gin.H{"IsEdit": false})
}

func (h *PostHandler) Create(c *gin.Context) {
	var input service.PostInput
	if err := c.ShouldBind(&input); err != nil {
		h.html(c, http.StatusOK, "make_post.html", gin.H{
			"IsEdit": false,
			"Error":  validator.FormatValidationError(err),
			"Form":   input,
		})
		return
	}

	if err := h.resolveHeaderImage(c, &input); err != nil {
		h.renderError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)

	post, err := h.posts.Create(c.Request.Context(), input, user)
	if err != nil {
		if code := apperror.MapErrorToStatus(err); code == http.StatusBadRequest {
			h.html(c, http.StatusOK, "make_post.html", gin.H{
				"IsEdit": false,
				"Error":  err.Error(),
				"Form":   input,
			})
			return
		}
		h.renderError(c, err)
		return
	}

	log.Printf("post %d created by user %d", post.ID, user.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.renderError(c, apperror.ErrNotFound)
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.html(c, http.StatusOK, "make_post.html", gin.H{
		"IsEdit": true,
		"Post":   post,
		"Form": service.PostInput{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Body:     post.Body,
			ImageURL: post.ImageURL,
		},
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.renderError(c, apperror.ErrNotFound)
		return
	}

	var input service.PostInput
	if err := c.ShouldBind(&input); err != nil {
		h.html(c, http.StatusOK, "make_post.html", gin.H{
			"IsEdit": true,
			"Error":  validator.FormatValidationError(err),
			"Form":   input,
		})
		return
	}

	if err := h.resolveHeaderImage(c, &input); err != nil {
		h.renderError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)

	post, err := h.posts.Update(c.Request.Context(), id, input, user)
	if err != nil {
		if code := apperror.MapErrorToStatus(err); code == http.StatusBadRequest {
			h.html(c, http.StatusOK, "make_post.html", gin.H{
				"IsEdit": true,
				"Error":  err.Error(),
				"Form":   input,
			})
			return
		}
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/post/%d", post.ID))
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.renderError(c, apperror.ErrNotFound)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")
	data := gin.H{"Query": query}

	if query != "" && h.search != nil {
		hits, err := h.search.Search(query)
		if err != nil {
			h.renderError(c, err)
			return
		}
		data["Hits"] = hits
	}

	h.html(c, http.StatusOK, "search.html", data)
}

// Feed serves a JSON Feed of all posts; the one surface meant for
// cross-origin consumers.
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		c.JSON(apperror.MapErrorToStatus(err), gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		items = append(items, gin.H{
			"id":             strconv.FormatUint(uint64(post.ID), 10),
			"url":            fmt.Sprintf("/post/%d", post.ID),
			"title":          post.Title,
			"summary":        post.Subtitle,
			"content_html":   post.Body,
			"image":          post.ImageURL,
			"date_published": post.CreatedAt,
			"authors":        []gin.H{{"name": post.Author.Name}},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"version": "https://jsonfeed.org/version/1.1",
		"title":   "Inkwell",
		"items":   items,
	})
}

// resolveHeaderImage prefers an uploaded multipart image over the img_url
// field. Absent both, the service decides whether that is acceptable.
func (h *PostHandler) resolveHeaderImage(c *gin.Context, input *service.PostInput) error {
	if h.images == nil {
		return nil
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer src.Close()

	url, err := h.images.UploadImage(c.Request.Context(), src, file.Filename)
	if err != nil {
		return err
	}

	input.ImageURL = url
	return nil
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
