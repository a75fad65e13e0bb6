package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/services"
)

const sessionKey = "session"

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("http request")
	}
}

// recovery turns a panic into a 500 envelope.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				failure(c, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
			}
		}()

		c.Next()
	}
}

// authenticate resolves a bearer token into the request session. Requests
// without an Authorization header continue anonymously; authorization is
// left to the services.
func authenticate(auth *handlers.AuthHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			failure(c, http.StatusUnauthorized, CodeUnauthenticated, "invalid authorization header format", nil)
			return
		}

		sess, err := auth.HandleSession(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// sessionFrom returns the caller's session, or nil when anonymous.
func sessionFrom(c *gin.Context) *services.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*services.Session)
	return sess
}
