package controllers

import (
	"errors"
	"net/http"

	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and headers on top of the
// file itself when capping the request body.
const multipartOverhead = 1 << 20

type UploadController struct {
	uploadService *services.UploadService
	logger        *zap.Logger
}

func NewUploadController(uploadService *services.UploadService, logger *zap.Logger) *UploadController {
	return &UploadController{uploadService: uploadService, logger: logger}
}

// Upload handles POST /upload with a multipart "file" field.
func (uc *UploadController) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.uploadService.MaxSize()+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(c, uc.logger, &services.TooLargeError{Limit: uc.uploadService.MaxSize()})
			return
		}
		utils.BadRequestResponse(c, "No file provided")
		return
	}

	src, err := header.Open()
	if err != nil {
		handleError(c, uc.logger, err)
		return
	}
	defer src.Close()

	blob, err := uc.uploadService.Upload(c.Request.Context(), src, header.Filename, header.Size,
		header.Header.Get("Content-Type"), userID)
	if err != nil {
		handleError(c, uc.logger, err)
		return
	}
	utils.SuccessResponse(c, blob)
}
