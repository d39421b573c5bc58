package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roomrelay/internal/config"
	"roomrelay/internal/core"
)

// NewServer builds the HTTP server: the WebSocket gateway plus the read-only
// presence endpoints, all on one port.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.SendBuffer, logger)))

	api := router.Group("/api")
	{
		api.GET("/rooms", listRoomsHandler(hub))
		api.GET("/rooms/:room/members", roomMembersHandler(hub))
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// LoggerMiddleware logs each HTTP request after it completes. WebSocket
// upgrades are logged once the connection ends.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
