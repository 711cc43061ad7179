package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/domain"
	"github.com/salonos/salonos-backoffice/internal/media"
	"github.com/salonos/salonos-backoffice/internal/repository"
)

// AssetHandler serves the staging namespace: uploads happen directly
// against the object store from the browser, and this handler indexes the
// resulting URLs so the pipeline can promote them later.
type AssetHandler struct {
	Staged repository.StagedAssetRepository
	Store  media.ObjectStore
	Logger *zap.Logger
}

// NewAssetHandler creates the staged-asset handler.
func NewAssetHandler(staged repository.StagedAssetRepository, store media.ObjectStore, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{Staged: staged, Store: store, Logger: logger}
}

// NewKey issues a fresh staging key for a browser session.
func (h *AssetHandler) NewKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stagingKey": domain.NewStagingKey()})
}

type recordAssetRequest struct {
	StagingKey string `json:"stagingKey" binding:"required"`
	RequestID  string `json:"requestId"`
	Category   string `json:"category" binding:"required"`
	URL        string `json:"url" binding:"required,url"`
}

// Record indexes one uploaded asset URL under its staging key.
func (h *AssetHandler) Record(c *gin.Context) {
	var req recordAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid asset payload."})
		return
	}
	if !domain.ValidStagingKey(req.StagingKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid staging key."})
		return
	}
	if !domain.ValidAssetCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Unknown asset category."})
		return
	}

	if err := h.Staged.Record(c.Request.Context(), req.StagingKey, req.RequestID, req.Category, req.URL); err != nil {
		h.Logger.Error("asset record failed",
			zap.String("staging_key", req.StagingKey),
			zap.String("category", req.Category),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not record the asset."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stagingKey": req.StagingKey, "category": req.Category})
}

// Get returns the staged set under a key.
func (h *AssetHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if !domain.ValidStagingKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid staging key."})
		return
	}

	set, err := h.Staged.Get(c.Request.Context(), key)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "No assets staged under this key."})
		return
	}
	if err != nil {
		h.Logger.Error("staged set load failed", zap.String("staging_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not load the staged set."})
		return
	}
	c.JSON(http.StatusOK, set)
}

// Reject discards a staged set: its objects are deleted from the store by
// key prefix and the index entry is marked rejected. Used when a request is
// declined before provisioning.
func (h *AssetHandler) Reject(c *gin.Context) {
	key := c.Param("key")
	if !domain.ValidStagingKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid staging key."})
		return
	}

	if _, err := h.Staged.Get(c.Request.Context(), key); errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "No assets staged under this key."})
		return
	} else if err != nil {
		h.Logger.Error("staged set load failed", zap.String("staging_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not load the staged set."})
		return
	}

	if err := h.Store.DeleteByPrefix(c.Request.Context(), key); err != nil {
		// Mark the set rejected anyway; orphaned objects are cleaned up by
		// the next delete attempt.
		h.Logger.Warn("staged asset deletion failed",
			zap.String("staging_key", key),
			zap.Error(err),
		)
	}

	if err := h.Staged.MarkRejected(c.Request.Context(), key); err != nil {
		h.Logger.Error("staged set rejection failed", zap.String("staging_key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Could not reject the staged set."})
		return
	}

	h.Logger.Info("staged set rejected", zap.String("staging_key", key))
	c.JSON(http.StatusOK, gin.H{"stagingKey": key, "status": domain.StagedRejected})
}
