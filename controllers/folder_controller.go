package controllers

import (
	"net/http"

	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FolderController struct {
	folderService *services.FolderService
	pathService   *services.PathService
	logger        *zap.Logger
}

func NewFolderController(folderService *services.FolderService, pathService *services.PathService, logger *zap.Logger) *FolderController {
	return &FolderController{
		folderService: folderService,
		pathService:   pathService,
		logger:        logger,
	}
}

// ListFolders handles GET /folders?parentId=<id|null>
func (fc *FolderController) ListFolders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	parentID, ok := optionalID(c, c.Query("parentId"), "parent folder")
	if !ok {
		return
	}

	folders, err := fc.folderService.ListFolders(c.Request.Context(), parentID, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.SuccessResponse(c, folders)
}

// CreateFolder handles POST /folders
func (fc *FolderController) CreateFolder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	var rawParent string
	if req.ParentID != nil {
		rawParent = *req.ParentID
	}
	parentID, ok := optionalID(c, rawParent, "parent folder")
	if !ok {
		return
	}

	folder, err := fc.folderService.CreateFolder(c.Request.Context(), req.Name, parentID, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.CreatedResponse(c, folder)
}

// RenameFolder handles PUT /folders?id=<id>
func (fc *FolderController) RenameFolder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := requiredID(c, c.Query("id"), "folder")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	folder, err := fc.folderService.RenameFolder(c.Request.Context(), folderID, req.Name, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.MessageDataResponse(c, "Folder updated successfully", folder)
}

// DeleteFolder handles DELETE /folders?id=<id>
func (fc *FolderController) DeleteFolder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := requiredID(c, c.Query("id"), "folder")
	if !ok {
		return
	}

	if err := fc.folderService.DeleteFolder(c.Request.Context(), folderID, userID); err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.MessageResponse(c, "Folder deleted successfully")
}

// GetFolder handles GET /folders/:id
func (fc *FolderController) GetFolder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := requiredID(c, c.Param("id"), "folder")
	if !ok {
		return
	}

	details, err := fc.folderService.GetFolder(c.Request.Context(), folderID, userID)
	if err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.SuccessResponse(c, details)
}

// GetFolderPath handles GET /folders/:id/path. An unknown folder yields an
// empty path, not a 404.
func (fc *FolderController) GetFolderPath(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := requiredID(c, c.Param("id"), "folder")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    fc.pathService.Resolve(c.Request.Context(), folderID, userID),
	})
}

// MoveFolder handles PUT /folders/:id/move
func (fc *FolderController) MoveFolder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	folderID, ok := requiredID(c, c.Param("id"), "folder")
	if !ok {
		return
	}

	var req struct {
		ParentID *string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	var rawParent string
	if req.ParentID != nil {
		rawParent = *req.ParentID
	}
	parentID, ok := optionalID(c, rawParent, "parent folder")
	if !ok {
		return
	}

	if _, err := fc.folderService.MoveFolder(c.Request.Context(), folderID, parentID, userID); err != nil {
		handleError(c, fc.logger, err)
		return
	}
	utils.MessageResponse(c, "Folder moved successfully")
}
