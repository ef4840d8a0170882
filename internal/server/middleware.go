package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/auth"
)

const (
	requestIDHeader = "X-Request-ID"
	// userIDHeader is set by the gateway when it has already authenticated
	// the caller.
	userIDHeader = "X-User-ID"

	requestIDKey = "requestID"
	userIDKey    = "userID"
)

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", c.GetString(requestIDKey)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.log.Warn("request", fields...)
			return
		}
		s.log.Debug("request", fields...)
	}
}

// authenticate verifies an HS256 bearer token when a secret is configured
// and stores its subject as the user id. Without a secret it trusts the
// gateway's X-User-ID header, which may be empty.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.jwtSecret == nil {
			c.Set(userIDKey, c.GetHeader(userIDHeader))
			c.Next()
			return
		}

		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		subject, err := auth.Verify(s.jwtSecret, raw)
		if err != nil {
			s.log.Debug("token rejected",
				zap.String("requestId", c.GetString(requestIDKey)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userIDKey, subject)
		c.Next()
	}
}
