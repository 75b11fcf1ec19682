package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"opnamecore/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(opnameHandler *handlers.OpnameHandler, historyHandler *handlers.HistoryHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	session := r.Group("/opname/session")
	session.POST("", opnameHandler.Start)
	session.GET("", opnameHandler.Current)
	session.DELETE("", opnameHandler.Discard)
	session.PUT("/draft", opnameHandler.SaveDraft)
	session.POST("/refresh", opnameHandler.Refresh)
	session.POST("/finalize", opnameHandler.Finalize)
	session.GET("/summary", opnameHandler.Summary)

	r.GET("/opname/history", historyHandler.List)
	r.DELETE("/opname/history", historyHandler.Delete)
	r.POST("/opname/analysis", historyHandler.Analyze)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
