package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/prize_address/internal/utils"
)

// SessionHeader carries the form session token.
const SessionHeader = "X-Form-Session"

const sessionIDKey = "session_id"

// SessionMiddleware resolves the form session token of a request.
type SessionMiddleware struct {
	signer      *utils.SessionSigner
	rateLimiter *InvalidTokenRateLimiter
}

// NewSessionMiddleware constructs a new SessionMiddleware.
func NewSessionMiddleware(signer *utils.SessionSigner, rateLimiter *InvalidTokenRateLimiter) *SessionMiddleware {
	return &SessionMiddleware{signer: signer, rateLimiter: rateLimiter}
}

// Handle returns a Gin middleware that requires a valid session token in
// X-Form-Session or an Authorization Bearer header.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			m.handleAuthError(c, "UNAUTHORIZED", "Missing form session token")
			return
		}

		claims, err := m.signer.ValidateSessionToken(token)
		if err != nil {
			if utils.IsTokenExpired(err) {
				m.handleAuthError(c, utils.ErrInvalidToken.Error(), "Form session expired")
				return
			}
			m.handleAuthError(c, utils.ErrInvalidToken.Error(), "Invalid form session token")
			return
		}

		c.Set(sessionIDKey, claims.SessionID)
		c.Next()
	}
}

func (m *SessionMiddleware) handleAuthError(c *gin.Context, code, message string) {
	if m.rateLimiter != nil && !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid session attempts")
		c.Abort()
		return
	}

	utils.Error(c, http.StatusUnauthorized, code, message)
	c.Abort()
}

func sessionToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(SessionHeader)); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// SessionID returns the form session id set by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
