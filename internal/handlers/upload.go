package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadDir returns the configured storage directory for uploaded files.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

func baseURL(ctx *gin.Context) string {
	if base := os.Getenv("BASE_URL"); base != "" {
		return strings.TrimSuffix(base, "/")
	}

	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + ctx.Request.Host
}

// sanitizeFilename strips any path components and replaces runes that are not
// safe in a filename. A name that sanitizes to nothing becomes "file".
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sanitized := strings.Trim(b.String(), ".")

	if sanitized == "" {
		return "file"
	}

	return sanitized
}

// Upload stores a multipart file under the upload directory with a coarse
// timestamp prefix. Two uploads of the same name within the same second will
// collide and overwrite; uniqueness here is best effort, not a guarantee.
func Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	if file.Filename == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}

	finalName := fmt.Sprintf("%d_%s", time.Now().UTC().Unix(), sanitizeFilename(file.Filename))
	dir := UploadDir()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Failed to create upload directory: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := ctx.SaveUploadedFile(file, filepath.Join(dir, finalName)); err != nil {
		log.Printf("Failed to save upload: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"file_url": baseURL(ctx) + "/uploads/" + finalName})
}

// ServeUpload returns a stored file by name, or 404.
func ServeUpload(ctx *gin.Context) {
	filename := ctx.Param("filename")

	// Reject anything that is not a bare filename.
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	path := filepath.Join(UploadDir(), filename)

	if _, err := os.Stat(path); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	ctx.File(path)
}
