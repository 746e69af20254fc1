package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"opportunity-sync-go/internal/handlers"
)

// SetupRouter builds the admin API router: recovery, access logging and
// the handler routes.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLogger())

	h.SetupRoutes(router)

	return router
}

// accessLogger logs API requests. The health and metrics probes are
// polled constantly and would drown out the sync traffic, so they are
// skipped.
func accessLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC1123),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	})
}
