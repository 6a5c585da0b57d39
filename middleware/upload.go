package middlewares

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"farmlink/gcs"
	"farmlink/models"
)

// MaxImageSize limits uploads to 10MB.
const MaxImageSize = 10 << 20

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadDir is where uploaded images land, served back at /uploads.
func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./public/uploads"
}

// AllowedImage reports whether the filename carries an accepted image
// extension.
func AllowedImage(filename string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(filename))]
}

// UploadFilename builds the stored name: field name, timestamp, and
// the original extension.
func UploadFilename(field, original string) string {
	return fmt.Sprintf("%s-%d%s", field, time.Now().UnixNano(), strings.ToLower(filepath.Ext(original)))
}

// UploadFolder picks the subfolder an image belongs in: product
// images go together, profile images split by role.
func UploadFolder(purpose, role string) string {
	switch {
	case purpose == "products":
		return "products"
	case role == models.RoleSeller:
		return "farmer"
	case role != "":
		return "buyer"
	default:
		return "others"
	}
}

// SaveImage validates and stores the multipart "image" field, if one
// was sent, and returns the stored filename. When GCS_BUCKET is set
// the file is also mirrored to cloud storage; a mirror failure never
// fails the request.
func SaveImage(c *gin.Context, purpose, role string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// no file attached
		return "", nil
	}

	if !AllowedImage(file.Filename) {
		return "", fmt.Errorf("images only (jpeg, jpg, png, gif, webp)")
	}
	if file.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds 10MB limit")
	}

	folder := UploadFolder(purpose, role)
	dir := filepath.Join(UploadDir(), folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	filename := UploadFilename("image", file.Filename)
	dst := filepath.Join(dir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}

	gcs.MirrorUpload(dst, contentTypeOf(file), folder)

	return filepath.Join(folder, filename), nil
}

func contentTypeOf(file *multipart.FileHeader) string {
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return contentType
}
