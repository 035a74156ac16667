package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) int {
		rq := httptest.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = ip + ":1234"
		return do(r, rq).Code
	}

	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.2"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestAdminJWTAndPermissions(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "secret", JWTExpiry: time.Hour}, repository.NewMemoryAdminRepository())
	viewer, err := auth.GenerateAdminToken("admin-1", model.RoleViewer, model.PermissionsForRole(model.RoleViewer))
	require.NoError(t, err)

	r := gin.New()
	g := r.Group("/", RequireAdminJWT(auth))
	g.GET("/read", RequirePermission(model.PermissionAssessmentsRead), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).AdminID)
	})
	g.DELETE("/delete", RequirePermission(model.PermissionAssessmentsDelete), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/read", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	w = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())

	w = do(r, httptest.NewRequest(http.MethodGet, "/read?token="+viewer, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/delete", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	w = do(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")
}

func TestBrotliCompressesLargeJSON(t *testing.T) {
	body := strings.Repeat(`{"score":80},`, 200)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.Data(http.StatusOK, "application/json", []byte(body)) })
	r.GET("/small", func(c *gin.Context) { c.Data(http.StatusOK, "application/json", []byte("{}")) })
	r.GET("/pdf", func(c *gin.Context) { c.Data(http.StatusOK, "application/pdf", []byte(body)) })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := do(r, req)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = do(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "{}", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/pdf", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = do(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, body, w.Body.String())
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
