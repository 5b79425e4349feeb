package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/config"
	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/middleware"
)

// Accepted upload categories. The category becomes the subdirectory.
var uploadCategories = map[string]bool{
	"documents": true,
	"avatars":   true,
	"photos":    true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// UploadHandler handles document and avatar uploads
type UploadHandler struct {
	cfg      config.UploadConfig
	userRepo *database.UserRepository
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(cfg config.UploadConfig, userRepo *database.UserRepository) *UploadHandler {
	return &UploadHandler{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// Upload handles POST /api/v1/uploads (multipart form)
func (h *UploadHandler) Upload(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	category := c.DefaultPostForm("category", "documents")
	if !uploadCategories[category] {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_category",
			Message: "Category must be one of: documents, avatars, photos",
		})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_file",
			Message: "A file field is required",
		})
		return
	}

	if file.Size > h.cfg.MaxSizeMB*1024*1024 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File exceeds the %dMB limit", h.cfg.MaxSizeMB),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_file_type",
			Message: "File type is not allowed",
		})
		return
	}

	dir := filepath.Join(h.cfg.Dir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).Error("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to store file",
		})
		return
	}

	filename := uuid.New().String() + ext
	dst := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		logrus.WithError(err).Error("Failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to store file",
		})
		return
	}

	publicPath := h.cfg.PublicRoute + "/" + category + "/" + filename

	// Avatar uploads also update the caller's profile.
	if category == "avatars" {
		if err := h.userRepo.UpdateAvatarPath(userCtx.UserID, publicPath); err != nil {
			logrus.WithError(err).Error("Failed to update avatar path")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded",
		"path":    publicPath,
	})
}

// Serve handles GET /uploads/*filepath
func (h *UploadHandler) Serve(c *gin.Context) {
	requested := c.Param("filepath")

	// Resolve inside the upload root; reject traversal.
	clean := filepath.Clean("/" + requested)
	full := filepath.Join(h.cfg.Dir, clean)
	if !strings.HasPrefix(full, filepath.Clean(h.cfg.Dir)+string(os.PathSeparator)) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_path",
			Message: "Invalid file path",
		})
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "File not found",
		})
		return
	}

	if ct := mime.TypeByExtension(filepath.Ext(full)); ct != "" {
		c.Header("Content-Type", ct)
	}
	c.File(full)
}
