package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/repository/memory"
	"github.com/yourusername/spectra-quiz/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSessionMiddleware_IssuesAndReusesID(t *testing.T) {
	m := NewSessionMiddleware(config.SessionConfig{
		CookieName: "quiz_session",
		Secret:     "0123456789abcdef0123456789abcdef",
		TTL:        time.Hour,
	})

	r := gin.New()
	r.Use(m.Handle())
	r.GET("/sid", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sid", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	assert.NotEmpty(t, first)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "quiz_session", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/sid", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestSessionMiddleware_TamperedCookie(t *testing.T) {
	m := NewSessionMiddleware(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour})
	r := gin.New()
	r.Use(m.Handle())
	r.GET("/sid", func(c *gin.Context) { c.String(http.StatusOK, SessionID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/sid", nil)
	req.AddCookie(&http.Cookie{Name: "quiz_session", Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestAdminAuthMiddleware(t *testing.T) {
	jwtService, err := auth.NewJWTService("admin-secret", time.Hour)
	require.NoError(t, err)
	token, _, err := jwtService.Issue("admin")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", NewAdminAuthMiddleware(jwtService).RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AdminSubjectKey))
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	disabled := gin.New()
	disabled.GET("/admin", NewAdminAuthMiddleware(nil).RequireAdmin(), func(c *gin.Context) {})
	w := httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimiter_Limit(t *testing.T) {
	limiter := NewRateLimiter(memory.NewCacheRepo())
	r := gin.New()
	r.POST("/answer", limiter.Limit(RateLimitConfig{MaxRequests: 2, Window: time.Minute, KeyPrefix: "rl:test"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/answer", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type brokenCache struct {
	*memory.CacheRepo
}

func (brokenCache) Increment(key string) (int64, error) {
	return 0, errors.New("cache down")
}

func TestRateLimiter_FailOpen(t *testing.T) {
	limiter := NewRateLimiter(brokenCache{memory.NewCacheRepo()})
	r := gin.New()
	r.POST("/answer", limiter.Limit(RateLimitConfig{MaxRequests: 0, Window: time.Minute, KeyPrefix: "rl:test"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/answer", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExtractIntQuery(t *testing.T) {
	r := gin.New()
	r.GET("/x", ExtractIntQuery("limit", "limit", 100), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"limit": c.GetInt("limit")})
	})

	for query, code := range map[string]int{"": 200, "?limit=5": 200, "?limit=abc": 400, "?limit=-1": 400, "?limit=101": 400} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x"+query, nil))
		assert.Equal(t, code, w.Code, query)
	}
}
