package controllers

import (
	"net/http"

	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FileController struct {
	fileService *services.FileService
	logger      *zap.Logger
}

func NewFileController(fileService *services.FileService, logger *zap.Logger) *FileController {
	return &FileController{fileService: fileService, logger: logger}
}

// ListFiles handles GET /files?folderId=<id|null>
func (fc *FileController) ListFiles(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := optionalID(c, c.Query("folderId"), "folder")
	if !ok {
		return
	}

	files, err := fc.fileService.ListFiles(c.Request.Context(), folderID, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.SuccessResponse(c, files)
}

// CreateFile handles POST /files, registering an already uploaded blob.
func (fc *FileController) CreateFile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Name               string  `json:"name"`
		OriginalName       string  `json:"originalName"`
		Type               string  `json:"type"`
		Size               int64   `json:"size"`
		FolderID           *string `json:"folderId"`
		URL                string  `json:"url"`
		CloudinaryPublicID string  `json:"cloudinaryPublicId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	var rawFolder string
	if req.FolderID != nil {
		rawFolder = *req.FolderID
	}
	folderID, ok := optionalID(c, rawFolder, "folder")
	if !ok {
		return
	}

	file, err := fc.fileService.CreateFile(c.Request.Context(), services.NewFileInput{
		Name:         req.Name,
		OriginalName: req.OriginalName,
		Type:         req.Type,
		Size:         req.Size,
		FolderID:     folderID,
		URL:          req.URL,
		BlobID:       req.CloudinaryPublicID,
	}, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.CreatedResponse(c, file)
}

// UpdateFile handles PUT /files?id=<id>. folderId is optional: absent keeps
// the current folder, null or "" moves the file to the root.
func (fc *FileController) UpdateFile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := requiredID(c, c.Query("id"), "file")
	if !ok {
		return
	}

	var req struct {
		Name     string               `json:"name"`
		FolderID utils.OptionalString `json:"folderId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	update := services.FileUpdate{Name: req.Name, MoveFolder: req.FolderID.Present}
	if req.FolderID.Present && req.FolderID.Value != nil {
		folderID, ok := optionalID(c, *req.FolderID.Value, "folder")
		if !ok {
			return
		}
		update.FolderID = folderID
	}

	if _, err := fc.fileService.UpdateFile(c.Request.Context(), fileID, update, userID); err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.MessageResponse(c, "File updated successfully")
}

// DeleteFile handles DELETE /files?id=<id>
func (fc *FileController) DeleteFile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := requiredID(c, c.Query("id"), "file")
	if !ok {
		return
	}

	file, err := fc.fileService.DeleteFile(c.Request.Context(), fileID, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "File deleted successfully",
		Data:    gin.H{"cloudinaryPublicId": file.BlobID},
	})
}
