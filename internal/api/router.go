// Package api exposes the linking HTTP surface. Ingestion has no network
// surface; everything else stays outside this repository.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tipstream/harvester/internal/linking"
	"github.com/tipstream/harvester/pkg/logging"
)

// Handler holds the API dependencies
type Handler struct {
	linking *linking.Service
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(linkingService *linking.Service) *Handler {
	return &Handler{
		linking: linkingService,
		logger:  logging.GetLogger().With(zap.String("component", "api")),
	}
}

// NewRouter builds the gin router
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.health)
	router.GET("/.well-known/healthcheck.json", h.health)
	router.POST("/user-social-medias", h.linkAccount)

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "harvester-api",
	})
}

// linkRequest is the payload of an authenticated platform identity claim
type linkRequest struct {
	Platform  string `json:"platform" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) linkAccount(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity := linking.ExternalIdentity{
		AccountID: req.AccountID,
		Username:  req.Username,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}

	link, err := h.linking.Link(c.Request.Context(), req.Platform, identity, req.UserID)
	if err != nil {
		if errors.Is(err, linking.ErrAlreadyLinked) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Link failed",
			zap.String("platform", req.Platform),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        link.ID,
		"person_id": link.PersonID,
		"user_id":   link.UserID,
		"platform":  link.Platform,
		"verified":  link.Verified,
		"primary":   link.Primary,
	})
}
