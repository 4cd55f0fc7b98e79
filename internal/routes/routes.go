// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"rfid-service/internal/config"
	"rfid-service/internal/handler"
	"rfid-service/internal/middleware"
	"rfid-service/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config        *config.Config
	logger        *zap.Logger
	readerService handler.ReaderAPI
	wsHandler     *handler.WebSocketHandler
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	readerService handler.ReaderAPI,
	wsHandler *handler.WebSocketHandler,
) *Router {
	return &Router{
		config:        config,
		logger:        logger,
		readerService: readerService,
		wsHandler:     wsHandler,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	// Set Gin mode
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.readerService, r.config, r.logger)
	readerHandler := handler.NewReaderHandler(r.readerService, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router.Group(""))

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	readerHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	if r.wsHandler != nil {
		r.wsHandler.RegisterRoutes(router.Group("/ws"))
	}

	// Documentation routes
	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
