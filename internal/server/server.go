// Package server implements the inbound HTTP API of the jobboard service.
//
// Routes:
//
//	POST    /jobs/search    → aggregated job search
//	OPTIONS /jobs/search    → CORS preflight
//	GET     /jobs/searches  → recent searches (needs DATABASE_URL)
//	GET     /health         → liveness and provider configuration
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legallyai/jobboard-service/internal/model"
	"legallyai/jobboard-service/internal/store"
)

// Version is reported by /health.
const Version = "1.0.0"

// corsHeaders are the request headers browsers may send cross-origin.
var corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// SearchService is the use case behind the routes. *jobboard.Service
// implements it.
type SearchService interface {
	Search(ctx context.Context, p model.SearchParams, userID string) model.Response
	RecentSearches(ctx context.Context, limit int) ([]store.SearchRecord, error)
	ProviderStatus() map[string]bool
}

// Server holds the gin engine and its dependencies.
type Server struct {
	svc       SearchService
	log       *zap.Logger
	jwtSecret []byte
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithJWTSecret requires an HS256 bearer token on the search routes.
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.jwtSecret = []byte(secret)
		}
	}
}

// New builds the router.
func New(svc SearchService, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, log: log.Named("http")}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler { return s.engine }

// HTTPServer wraps the handler with the listener timeouts used in
// production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID())
	r.Use(gin.CustomRecovery(s.recoverPanic))
	r.Use(s.accessLog())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              corsHeaders,
		ExposeHeaders:             []string{requestIDHeader},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	r.GET("/health", s.health())

	jobs := r.Group("/jobs")
	// Preflights without an Origin header bypass the cors middleware.
	jobs.OPTIONS("/search", preflight())

	authed := jobs.Group("", s.authenticate())
	authed.POST("/search", s.search())
	authed.GET("/searches", s.recentSearches())

	return r
}
