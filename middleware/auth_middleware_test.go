package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"farmlink/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/secure", Protect(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestTokenFromRequest(t *testing.T) {
	r := gin.New()
	var got string
	r.GET("/", func(c *gin.Context) {
		got = TokenFromRequest(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "header-token", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "cookie-token", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, got)
}

func TestProtectRejectsMissingToken(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to access this route")
}

func TestProtectRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	protectedRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorize(t *testing.T) {
	r := gin.New()
	r.GET("/sellers", func(c *gin.Context) {
		c.Set("user", models.User{Role: models.RoleBuyer})
	}, Authorize(models.RoleSeller), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	r.GET("/admin-bypass", func(c *gin.Context) {
		c.Set("user", models.User{Role: models.RoleBuyer, IsAdmin: true})
	}, Authorize(models.RoleSeller), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sellers", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "is not authorized")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-bypass", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
