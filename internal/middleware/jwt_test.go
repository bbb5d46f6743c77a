package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/service"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(&config.Config{JWTSecret: "test-secret"})

	whoami := func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetClaims(c).CurrentUserID())
	}
	r := gin.New()
	r.GET("/api", middleware.RequireUserJWT(auth), whoami)
	r.GET("/ws", middleware.RequireWSAuth(auth), whoami)
	return r, auth
}

func TestRequireUserJWT(t *testing.T) {
	r, auth := newAuthRouter(t)
	token, err := auth.IssueToken("user-7", "Asha", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Equal(t, "user-7", w.Body.String())
			}
		})
	}
}

func TestRequireWSAuth(t *testing.T) {
	r, auth := newAuthRouter(t)
	token, err := auth.IssueToken("user-7", "", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
}
