package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/gin-gonic/gin"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// refreshAuthTokens rotates the refresh token and returns a new pair.
func (s *HTTPServer) refreshAuthTokens(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	pair, err := s.auth.RefreshAuthTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// refreshAccessToken issues a new access token and keeps the refresh token.
func (s *HTTPServer) refreshAccessToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	pair, err := s.auth.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokensResponse{AccessToken: pair.AccessToken})
}

// deleteAuthTokens logs the caller out. The bearer token has already been
// admitted by the middleware.
func (s *HTTPServer) deleteAuthTokens(c *gin.Context) {
	token, ok := accessTokenFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access token is required"})
		return
	}

	if err := s.auth.DeleteAuthTokens(c.Request.Context(), token); err != nil {
		s.writeError(c, err)
		return
	}
	subject, _ := SubjectFromContext(c)
	s.logger.Info(c.Request.Context(), "session ended", "subject", subject)
	c.Status(http.StatusNoContent)
}

// writeError aborts the request with the status err maps to. Every token
// or credential failure gets the same 401 body.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrorUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
	}
}
