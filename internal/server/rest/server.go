// Package rest exposes the token engine over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/logging"
	"github.com/dmitrijs2005/authtokens/internal/server/services"
	"github.com/gin-gonic/gin"
)

type HTTPServer struct {
	address         string
	auth            *services.AuthTokensService
	admission       *services.Admission
	logger          logging.Logger
	shutdownTimeout time.Duration
}

func NewHTTPServer(
	address string,
	l logging.Logger,
	auth *services.AuthTokensService,
	admission *services.Admission,
	shutdownTimeout time.Duration,
) *HTTPServer {
	return &HTTPServer{
		address:         address,
		auth:            auth,
		admission:       admission,
		logger:          l.With("module", "http_server"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Router builds the gin engine. Admission runs on every route; handlers
// that need a caller read it with SubjectFromContext.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.admissionMiddleware())

	r.GET("/health", s.health)

	g := r.Group("/auth")
	g.PUT("/auth_tokens", s.refreshAuthTokens)
	g.PUT("/access_token", s.refreshAccessToken)
	g.DELETE("/auth_tokens", s.deleteAuthTokens)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
