package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthTestRouter(verifier auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(verifier))
	router.GET("/whoami", func(c *gin.Context) {
		caller, ok := auth.CallerFrom(c.Request.Context())
		if !ok {
			c.JSON(http.StatusOK, gin.H{"caller": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"caller": string(caller)})
	})
	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := auth.NewHMACVerifier("secret")
	router := newAuthTestRouter(verifier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+verifier.TokenFor("alice"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"caller":"alice"`)
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	router := newAuthTestRouter(auth.NewHMACVerifier("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"caller":""`)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newAuthTestRouter(auth.NewHMACVerifier("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer alice.deadbeef")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthTestRouter(auth.NewHMACVerifier("secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Basic abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
