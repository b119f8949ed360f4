package rest

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	subjectKey     = "subject"
	accessTokenKey = "access_token"
)

// unauthorizedMessage is the single body for every rejected token, so
// callers cannot tell expiry from revocation or a torn-down session.
const unauthorizedMessage = "invalid or expired token"

// bearerToken returns the token from the Authorization header, or "" when
// the header is absent or not a bearer credential.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader(common.AuthorizationHeaderName)
	if len(h) < len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(common.BearerPrefix):])
}

func (s *HTTPServer) admissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := bearerToken(c)

		res, err := s.admission.Decide(ctx, token)
		if err != nil {
			s.writeError(c, err)
			return
		}

		if res.Decision.Rejected() {
			s.logger.Info(ctx, "request rejected",
				"decision", res.Decision.String(),
				"subject", res.Subject,
				"path", c.Request.URL.Path,
			)
			s.writeError(c, res.Decision.Err())
			return
		}

		if res.Decision == services.Allow {
			c.Set(subjectKey, res.Subject)
			c.Set(accessTokenKey, token)
		}
		c.Next()
	}
}

// SubjectFromContext returns the subject of an admitted bearer token.
func SubjectFromContext(c *gin.Context) (string, bool) {
	subject := c.GetString(subjectKey)
	return subject, subject != ""
}

func accessTokenFromContext(c *gin.Context) (string, bool) {
	token := c.GetString(accessTokenKey)
	return token, token != ""
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
