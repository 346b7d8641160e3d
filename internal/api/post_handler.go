package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/models"
	"github.com/voxo-cms/internal/service"
)

// PostHandler handles reader and back-office post endpoints
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// Home handles GET /api/home
func (h *PostHandler) Home(c *gin.Context) {
	home, err := h.services.Post.Home(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, home)
}

// List handles GET /api/posts?category=&page=&limit=
func (h *PostHandler) List(c *gin.Context) {
	h.list(c, c.Query("category"), true)
}

// AdminList handles GET /api/admin/posts, drafts included
func (h *PostHandler) AdminList(c *gin.Context) {
	h.list(c, c.Query("category"), false)
}

func (h *PostHandler) list(c *gin.Context, category string, publishedOnly bool) {
	page, err := h.services.Post.List(c.Request.Context(), service.ListQuery{
		CategorySlug:  category,
		PublishedOnly: publishedOnly,
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 0),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Search handles GET /api/posts/search?q=
func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.services.Post.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "query": c.Query("q")})
}

// GetBySlug handles GET /api/posts/:slug and counts the view
func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.services.Post.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Get handles GET /api/admin/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.services.Post.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create handles POST /api/admin/posts
func (h *PostHandler) Create(c *gin.Context) {
	var in models.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	post, err := h.services.Post.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update handles PUT /api/admin/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	var in models.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	post, err := h.services.Post.Update(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/admin/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.services.Post.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetPublished handles PATCH /api/admin/posts/:id/publish
func (h *PostHandler) SetPublished(c *gin.Context) {
	var req struct {
		Published *bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Published == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "published is required"})
		return
	}

	if err := h.services.Post.SetPublished(c.Request.Context(), c.Param("id"), *req.Published); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "is_published": *req.Published})
}
