package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/gin-gonic/gin"
)

// Auth resolves the bearer token, if any, to a caller address and stores
// it on the request context. Requests without a token pass through
// unauthenticated; public endpoints work, protected ones fail in the
// service layer. A token that fails verification is rejected outright.
func Auth(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}
		addr, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(auth.WithCaller(c.Request.Context(), addr))
		c.Next()
	}
}
