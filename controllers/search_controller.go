package controllers

import (
	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchController struct {
	searchService *services.SearchService
	logger        *zap.Logger
}

func NewSearchController(searchService *services.SearchService, logger *zap.Logger) *SearchController {
	return &SearchController{searchService: searchService, logger: logger}
}

// Search handles GET /search?q=<text>
func (sc *SearchController) Search(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	results, err := sc.searchService.Search(c.Request.Context(), c.Query("q"), userID)
	if err != nil {
		handleError(c, sc.logger, err)
		return
	}
	utils.SuccessResponse(c, results)
}
