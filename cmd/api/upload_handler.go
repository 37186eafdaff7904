package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const uploadDir = "uploads"

// UploadHandler stores uploaded files on disk and returns their URLs
type UploadHandler struct {
	baseURL string
}

func NewUploadHandler(baseURL string) *UploadHandler {
	return &UploadHandler{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// POST /api/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	urls := make([]string, 0, len(files))
	for _, fileHeader := range files {
		// Random prefix avoids collisions and path tricks in the
		// client-supplied name
		name := uuid.New().String() + "_" + filepath.Base(fileHeader.Filename)
		dst := filepath.Join(uploadDir, name)
		if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		urls = append(urls, h.baseURL+"/"+uploadDir+"/"+name)
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls})
}
