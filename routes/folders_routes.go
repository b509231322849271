package routes

import (
	"driveclone/controllers"
	"driveclone/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterFolderRoutes(rg *gin.RouterGroup, jwtSecret string, folderController *controllers.FolderController) {
	folders := rg.Group("/folders")
	folders.Use(middleware.AuthMiddleware(jwtSecret))
	{
		folders.GET("", folderController.ListFolders)            // GET /folders?parentId=
		folders.POST("", folderController.CreateFolder)          // POST /folders
		folders.PUT("", folderController.RenameFolder)           // PUT /folders?id=
		folders.DELETE("", folderController.DeleteFolder)        // DELETE /folders?id=
		folders.GET("/:id", folderController.GetFolder)          // GET /folders/:id
		folders.GET("/:id/path", folderController.GetFolderPath) // GET /folders/:id/path
		folders.PUT("/:id/move", folderController.MoveFolder)    // PUT /folders/:id/move
	}
}
