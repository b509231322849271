package routes

import (
	"driveclone/controllers"
	"driveclone/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterFileRoutes(rg *gin.RouterGroup, jwtSecret string, fileController *controllers.FileController) {
	files := rg.Group("/files")
	files.Use(middleware.AuthMiddleware(jwtSecret))
	{
		files.GET("", fileController.ListFiles)     // GET /files?folderId=
		files.POST("", fileController.CreateFile)   // POST /files
		files.PUT("", fileController.UpdateFile)    // PUT /files?id=
		files.DELETE("", fileController.DeleteFile) // DELETE /files?id=
	}
}
