package controllers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openparish/parishboard/config"
	"github.com/openparish/parishboard/models"
	"github.com/openparish/parishboard/utils"
)

// UploadController stores board attachments on local disk and hands
// back the {url, name, kind} triple the write path consumes.
type UploadController struct{}

// NewUploadController creates an UploadController.
func NewUploadController() *UploadController {
	return &UploadController{}
}

// Upload accepts a single file, classifies it as image or file by
// content type, and writes it under a unique name in the matching
// subdirectory.
func (u *UploadController) Upload(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40031, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	subDir := utils.UploadSubDir(contentType)
	baseDir := filepath.Join(cfg.UploadDir, subDir)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create upload directory")
		return
	}

	name := utils.BuildUploadName(header.Filename, contentType)
	dstPath := filepath.Join(baseDir, name)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to write file")
		} else {
			utils.Error(ctx, http.StatusBadRequest, 40031, "file too large")
		}
		return
	}

	kind := models.AttachmentFile
	if strings.HasPrefix(contentType, "image/") {
		kind = models.AttachmentImage
	}
	utils.Success(ctx, gin.H{
		"url":  "/" + filepath.ToSlash(filepath.Join(cfg.UploadDir, subDir, name)),
		"name": header.Filename,
		"kind": kind,
	})
}
