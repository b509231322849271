package routes

import (
	"net/http"
	"time"

	"driveclone/controllers"
	"driveclone/middleware"
	"driveclone/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the stores and settings the services are built from.
type Dependencies struct {
	Folders services.FolderStore
	Files   services.FileStore
	Users   services.UserStore
	Blobs   services.BlobStore
	Cache   services.FolderCache

	JWTSecret     string
	TokenTTL      time.Duration
	MaxUploadSize int64

	Logger *zap.Logger
}

// ServiceContainer holds all services and dependencies
type ServiceContainer struct {
	JWTSecret string
	Logger    *zap.Logger

	FolderService *services.FolderService
	PathService   *services.PathService
	FileService   *services.FileService
	SearchService *services.SearchService
	AuthService   *services.AuthService
	UploadService *services.UploadService
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pathService := services.NewPathService(deps.Folders, deps.Cache, logger.Named("path"))

	return &ServiceContainer{
		JWTSecret:     deps.JWTSecret,
		Logger:        logger,
		FolderService: services.NewFolderService(deps.Folders, deps.Files, pathService, logger.Named("folders")),
		PathService:   pathService,
		FileService:   services.NewFileService(deps.Files, deps.Folders, deps.Blobs, logger.Named("files")),
		SearchService: services.NewSearchService(deps.Folders, deps.Files),
		AuthService:   services.NewAuthService(deps.Users, deps.JWTSecret, deps.TokenTTL, logger.Named("auth")),
		UploadService: services.NewUploadService(deps.Blobs, deps.MaxUploadSize, logger.Named("upload")),
	}
}

type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the engine with global middleware, /health and /api.
func NewRouter(container *ServiceContainer, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(opts.AllowedOrigins))
	router.Use(middleware.RequestLogger(container.Logger.Named("http")))
	router.Use(middleware.RequestTimeout(opts.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	SetupRoutesWithContainer(router.Group("/api"), container)
	return router
}

// SetupRoutesWithContainer configures all API routes using a service container
func SetupRoutesWithContainer(api *gin.RouterGroup, container *ServiceContainer) {
	logger := container.Logger

	RegisterAuthRoutes(api, controllers.NewAuthController(container.AuthService, logger))
	RegisterFolderRoutes(api, container.JWTSecret,
		controllers.NewFolderController(container.FolderService, container.PathService, logger))
	RegisterFileRoutes(api, container.JWTSecret, controllers.NewFileController(container.FileService, logger))
	RegisterSearchRoutes(api, container.JWTSecret, controllers.NewSearchController(container.SearchService, logger))
	RegisterUploadRoutes(api, container.JWTSecret, controllers.NewUploadController(container.UploadService, logger))
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}
