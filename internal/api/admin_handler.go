package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/auth"
	"github.com/voxo-cms/internal/config"
	"github.com/voxo-cms/internal/service"
)

// multipartOverhead is allowed on top of the upload size for form boundaries and headers
const multipartOverhead = 1 << 20

// AdminHandler handles login, settings, uploads and artist lookup
type AdminHandler struct {
	services *service.Services
	auth     *auth.Authenticator
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, authenticator *auth.Authenticator, cfg *config.Config, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		auth:     authenticator,
		cfg:      cfg,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	token, expires, err := h.auth.Login(req.Password)
	switch {
	case errors.Is(err, auth.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("Failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	case err != nil:
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expires,
	})
}

// ListSettings handles GET /api/admin/settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.services.Setting.All(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSetting handles GET /api/admin/settings/:key
func (h *AdminHandler) GetSetting(c *gin.Context) {
	setting, err := h.services.Setting.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpsertSetting handles PUT /api/admin/settings/:key
func (h *AdminHandler) UpsertSetting(c *gin.Context) {
	var req struct {
		Value *string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	key := c.Param("key")
	if err := h.services.Setting.Upsert(c.Request.Context(), key, *req.Value); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "status": "saved"})
}

// Upload handles POST /api/admin/uploads (multipart field "file")
func (h *AdminHandler) Upload(c *gin.Context) {
	if limit := h.cfg.Storage.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.services.Media.Upload(c.Request.Context(), contentType, header.Size, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// LookupArtist handles GET /api/admin/spotify/artist?q=
func (h *AdminHandler) LookupArtist(c *gin.Context) {
	subject := strings.TrimSpace(c.Query("q"))
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	lookup := h.services.Desk.LookupArtist(c.Request.Context(), subject)
	if !lookup.OK() {
		c.JSON(http.StatusNotFound, lookup)
		return
	}
	c.JSON(http.StatusOK, lookup)
}
