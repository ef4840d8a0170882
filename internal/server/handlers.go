package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/jobboard"
	"legallyai/jobboard-service/internal/model"
)

type healthResponse struct {
	Status    string          `json:"status"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	Providers map[string]bool `json:"providers"`
}

func (s *Server) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status:    "ok",
			Service:   "jobboard-service",
			Version:   Version,
			Providers: s.svc.ProviderStatus(),
		})
	}
}

// preflight answers OPTIONS with the CORS headers and an empty body.
func preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Status(http.StatusOK)
	}
}

// search decodes the optional JSON body and runs the search. Only a body
// that is not valid JSON fails the request; provider trouble never does.
func (s *Server) search() gin.HandlerFunc {
	return func(c *gin.Context) {
		var params model.SearchParams
		if err := c.ShouldBindJSON(&params); err != nil && !errors.Is(err, io.EOF) {
			s.log.Info("rejecting malformed search body",
				zap.String("requestId", c.GetString(requestIDKey)),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, model.ErrorResponse("invalid request body: "+err.Error()))
			return
		}

		resp := s.svc.Search(c.Request.Context(), params, c.GetString(userIDKey))
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) recentSearches() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
				return
			}
			limit = n
		}

		records, err := s.svc.RecentSearches(c.Request.Context(), limit)
		switch {
		case errors.Is(err, jobboard.ErrStoreDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		case err != nil:
			s.log.Error("recent searches failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"searches": records})
	}
}

// recoverPanic turns a handler panic into the empty error envelope.
func (s *Server) recoverPanic(c *gin.Context, err any) {
	s.log.Error("panic in handler",
		zap.String("requestId", c.GetString(requestIDKey)),
		zap.Any("panic", err),
		zap.Stack("stack"))
	c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse("internal error"))
}
