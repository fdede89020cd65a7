package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/prize_address/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInvalidTokenRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewInvalidTokenRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, rl.Prune())
	assert.True(t, rl.Allow("1.1.1.1"))
}

func newSessionRouter(signer *utils.SessionSigner, rl *InvalidTokenRateLimiter) *gin.Engine {
	r := gin.New()
	r.GET("/current", NewSessionMiddleware(signer, rl).Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	signer := utils.NewSessionSigner("secret", time.Hour)
	token, err := signer.GenerateSessionToken("sess-1", "thaideal")
	assert.NoError(t, err)
	router := newSessionRouter(signer, NewInvalidTokenRateLimiter(5, time.Minute))

	tests := []struct {
		name   string
		header string
		value  string
		status int
		body   string
	}{
		{name: "form session header", header: SessionHeader, value: token, status: http.StatusOK, body: "sess-1"},
		{name: "bearer", header: "Authorization", value: "Bearer " + token, status: http.StatusOK, body: "sess-1"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "garbage", header: SessionHeader, value: "abc", status: http.StatusUnauthorized},
		{name: "basic auth", header: "Authorization", value: "Basic abc", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/current", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestSessionMiddleware_RateLimitsInvalidTokens(t *testing.T) {
	signer := utils.NewSessionSigner("secret", time.Hour)
	router := newSessionRouter(signer, NewInvalidTokenRateLimiter(1, time.Minute))

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/current", nil)
		req.Header.Set(SessionHeader, "bad")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"form.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://form.example.com:443")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://form.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Referer", "https://form.example.com/thaideal")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://form.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}
