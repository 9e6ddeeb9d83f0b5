package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/Lllllllleong/financialdocumentflow/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// requestLogger logs every request on entry and on completion.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method, path := c.Request.Method, c.Request.URL.Path
		slog.Info(fmt.Sprintf("→ %s %s", method, path))

		c.Next()

		elapsed := time.Since(start)
		code := c.Writer.Status()
		slog.Info(fmt.Sprintf("← %s %s - %d (%.3fs)", method, path, code, elapsed.Seconds()),
			"status", code, "duration", elapsed)
	}
}

// recovery turns a panicking handler into a 500 with a generic message.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		slog.Error("Unhandled panic in handler",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(err),
			"stack", string(debug.Stack()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "internal server error"})
	})
}

// corsPolicy answers preflight requests and sets the CORS headers for the
// given origins. Credentials are only allowed with an explicit origin list.
func corsPolicy(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return cors.New(conf)
}
