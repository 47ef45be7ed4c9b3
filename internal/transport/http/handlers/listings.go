package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coherentus/yatube/internal/auth"
	"github.com/coherentus/yatube/internal/models"
	"github.com/coherentus/yatube/internal/paginate"
)

// Index renders the global timeline, newest first.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.posts.CountAll(ctx)
	if err != nil {
		h.ServerError(c)
		return
	}
	info := paginate.Paginator{Count: total, PageSize: h.cfg.PageSize}.Page(c.Query("page"))
	posts, err := h.posts.ListAll(ctx, info.Offset, info.Limit)
	if err != nil {
		h.ServerError(c)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Page": paginate.PageOf[models.Post]{PageInfo: info, Items: posts},
		"User": auth.UserFrom(c),
	})
}

// GroupIndex lists all groups; ordering is primary-key order only.
func (h *Handler) GroupIndex(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.groups.Count(ctx)
	if err != nil {
		h.ServerError(c)
		return
	}
	info := paginate.Paginator{Count: total, PageSize: h.cfg.PageSize}.Page(c.Query("page"))
	groups, err := h.groups.List(ctx, info.Offset, info.Limit)
	if err != nil {
		h.ServerError(c)
		return
	}
	c.HTML(http.StatusOK, "group_index.html", gin.H{
		"Page": paginate.PageOf[models.Group]{PageInfo: info, Items: groups},
		"User": auth.UserFrom(c),
	})
}

// GroupPosts lists one group's posts; an unknown slug is a 404.
func (h *Handler) GroupPosts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.groups.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.NotFound(c)
		} else {
			h.ServerError(c)
		}
		return
	}
	total, err := h.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		h.ServerError(c)
		return
	}
	info := paginate.Paginator{Count: total, PageSize: h.cfg.PageSize}.Page(c.Query("page"))
	posts, err := h.posts.ListByGroup(ctx, group.ID, info.Offset, info.Limit)
	if err != nil {
		h.ServerError(c)
		return
	}
	c.HTML(http.StatusOK, "group.html", gin.H{
		"Group": group,
		"Page":  paginate.PageOf[models.Post]{PageInfo: info, Items: posts},
		"User":  auth.UserFrom(c),
	})
}

// Profile lists one user's posts; an unknown username is a 404.
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	profileUser, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.NotFound(c)
		} else {
			h.ServerError(c)
		}
		return
	}
	total, err := h.posts.CountByAuthor(ctx, profileUser.ID)
	if err != nil {
		h.ServerError(c)
		return
	}
	info := paginate.Paginator{Count: total, PageSize: h.cfg.PageSize}.Page(c.Query("page"))
	posts, err := h.posts.ListByAuthor(ctx, profileUser.ID, info.Offset, info.Limit)
	if err != nil {
		h.ServerError(c)
		return
	}
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"ProfileUser": profileUser,
		"Page":        paginate.PageOf[models.Post]{PageInfo: info, Items: posts},
		"User":        auth.UserFrom(c),
	})
}

// PostDetail renders a single post resolved by (username, post id); a post id
// under the wrong username is a 404, not a redirect.
func (h *Handler) PostDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		h.NotFound(c)
		return
	}
	post, err := h.svc.GetPost(c.Request.Context(), c.Param("username"), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.NotFound(c)
		} else {
			h.ServerError(c)
		}
		return
	}
	c.HTML(http.StatusOK, "post.html", gin.H{
		"Post":   post,
		"Author": post.Author,
		"User":   auth.UserFrom(c),
	})
}

// Search renders posts whose text matches the query, paginated in memory
// since hits are re-read from the store as one bounded batch.
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	var posts []models.Post
	if q != "" {
		var err error
		posts, err = h.svc.SearchPosts(c.Request.Context(), q)
		if err != nil {
			h.ServerError(c)
			return
		}
	}
	c.HTML(http.StatusOK, "search.html", gin.H{
		"Query": q,
		"Page":  paginate.Slice(posts, h.cfg.PageSize, c.Query("page")),
		"User":  auth.UserFrom(c),
	})
}
