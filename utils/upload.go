package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadSubDir maps a content type to the type-specific subdirectory.
func UploadSubDir(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return "images"
	}
	return "files"
}

// BuildUploadName produces a collision-resistant stored filename:
// unix-millis timestamp, short random suffix, and the sanitized
// extension of the original name.
func BuildUploadName(original, contentType string) string {
	ext := sanitizeExt(filepath.Ext(original))
	if ext == "" {
		if strings.HasPrefix(contentType, "image/") {
			ext = ".png"
		} else {
			ext = ".bin"
		}
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// sanitizeExt keeps only a safe alphanumeric extension.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return "." + ext
}
