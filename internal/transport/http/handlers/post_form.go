package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/service"
)

// PostForm carries the submitted create/edit fields plus field-level errors
// for re-rendering.
type PostForm struct {
	Text    string
	GroupID *uint
	Image   string
	Errors  map[string]string

	file *multipart.FileHeader
}

func (f *PostForm) Valid() bool { return len(f.Errors) == 0 }

// bindPostForm reads and validates the submitted fields. The image file is
// not written yet; nothing touches disk until validation has passed.
func (h *Handler) bindPostForm(c *gin.Context) *PostForm {
	form := &PostForm{
		Text:   strings.TrimSpace(c.PostForm("text")),
		Errors: map[string]string{},
	}

	if form.Text == "" {
		form.Errors["Text"] = "Text is required."
	}

	if raw := c.PostForm("group"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			form.Errors["Group"] = "Unknown group."
		} else if _, err := h.groups.GetByID(c.Request.Context(), uint(id)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				form.Errors["Group"] = "Unknown group."
			} else {
				form.Errors["Group"] = "Group lookup failed."
			}
		} else {
			gid := uint(id)
			form.GroupID = &gid
		}
	}

	if file, err := c.FormFile("image"); err == nil {
		form.file = file
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		form.Errors["Image"] = "Could not read the uploaded file."
	}

	return form
}

// saveImage stores a validated upload under MEDIA_DIR/posts and records the
// relative path on the form. A file that cannot be stored is a form error,
// not a server fault.
func (h *Handler) saveImage(c *gin.Context, form *PostForm) {
	if form.file == nil {
		return
	}
	name := uuid.NewString() + filepath.Ext(form.file.Filename)
	dir := filepath.Join(h.cfg.MediaDir, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		form.Errors["Image"] = "Could not store the uploaded file."
		return
	}
	if err := c.SaveUploadedFile(form.file, filepath.Join(dir, name)); err != nil {
		form.Errors["Image"] = "Could not store the uploaded file."
		return
	}
	form.Image = filepath.ToSlash(filepath.Join("posts", name))
}

func (h *Handler) renderPostForm(c *gin.Context, form *PostForm, editFlag bool, post *models.Post) {
	c.HTML(http.StatusOK, "new_post.html", gin.H{
		"Form":     form,
		"EditFlag": editFlag,
		"Post":     post,
		"User":     auth.UserFrom(c),
	})
}

// NewPostForm renders the empty create form. Auth is enforced by middleware.
func (h *Handler) NewPostForm(c *gin.Context) {
	h.renderPostForm(c, &PostForm{Errors: map[string]string{}}, false, nil)
}

// NewPost handles the create submission: validate, persist with the caller
// as author, redirect to the timeline. Invalid input re-renders with errors
// and writes nothing.
func (h *Handler) NewPost(c *gin.Context) {
	user := auth.UserFrom(c)
	form := h.bindPostForm(c)
	if form.Valid() {
		h.saveImage(c, form)
	}
	if !form.Valid() {
		h.renderPostForm(c, form, false, nil)
		return
	}

	_, err := h.svc.CreatePost(c.Request.Context(), user, service.CreatePostInput{
		Text:    form.Text,
		GroupID: form.GroupID,
		Image:   form.Image,
	})
	if err != nil {
		h.ServerError(c)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// resolveEditTarget loads the post addressed by the edit URL, or replies 404.
func (h *Handler) resolveEditTarget(c *gin.Context) *models.Post {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		h.NotFound(c)
		return nil
	}
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("username"), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.NotFound(c)
		} else {
			h.ServerError(c)
		}
		return nil
	}
	return post
}

// EditPostForm renders the edit form prefilled from the post. Non-authors are
// bounced to the detail page without touching anything.
func (h *Handler) EditPostForm(c *gin.Context) {
	post := h.resolveEditTarget(c)
	if post == nil {
		return
	}
	if auth.UserFrom(c).ID != post.AuthorID {
		c.Redirect(http.StatusFound, detailPath(post))
		return
	}
	form := &PostForm{Text: post.Text, GroupID: post.GroupID, Image: post.Image, Errors: map[string]string{}}
	h.renderPostForm(c, form, true, post)
}

// EditPost handles the edit submission. The authorization redirect comes
// before any validation or write; validation failure re-renders and leaves
// the post untouched.
func (h *Handler) EditPost(c *gin.Context) {
	post := h.resolveEditTarget(c)
	if post == nil {
		return
	}
	if auth.UserFrom(c).ID != post.AuthorID {
		c.Redirect(http.StatusFound, detailPath(post))
		return
	}

	form := h.bindPostForm(c)
	if form.Valid() {
		h.saveImage(c, form)
	}
	if !form.Valid() {
		h.renderPostForm(c, form, true, post)
		return
	}
	if form.Image == "" {
		form.Image = post.Image
	}

	_, err := h.svc.UpdatePost(c.Request.Context(), post, service.UpdatePostInput{
		Text:    form.Text,
		GroupID: form.GroupID,
		Image:   form.Image,
	})
	if err != nil {
		h.ServerError(c)
		return
	}
	c.Redirect(http.StatusFound, detailPath(post))
}

func detailPath(p *models.Post) string {
	return fmt.Sprintf("/%s/%d/", p.Author.Username, p.ID)
}
