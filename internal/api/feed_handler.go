package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/feed"
	"github.com/voxo-cms/internal/service"
)

const feedSize = 20

// FeedHandler serves the RSS feed of published posts
type FeedHandler struct {
	services  *service.Services
	generator *feed.Generator
	site      feed.Site
	log       zerolog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		services:  services,
		generator: feed.NewGenerator(),
		site: feed.Site{
			Title:   cfg.Server.SiteTitle,
			BaseURL: cfg.Server.BaseURL,
		},
		log: log.With().Str("handler", "feed").Logger(),
	}
}

// Feed handles GET /feed.xml
func (h *FeedHandler) Feed(c *gin.Context) {
	page, err := h.services.Post.List(c.Request.Context(), service.ListQuery{PublishedOnly: true, Limit: feedSize})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	xml, err := h.generator.Run(h.site, page.Posts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(xml))
}
