package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextHarnessClaims is the key used to store token claims in the Gin context.
	ContextHarnessClaims = "harnessClaims"

	harnessClaim = "harness"
)

// Authoriz rejects requests without a valid bearer token issued to a harness.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if name, ok := claims[harnessClaim].(string); !ok || name == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(ContextHarnessClaims, claims)
		c.Next()
	}
}

// HarnessName returns the harness the request was authorized for, or "" outside Authoriz.
func HarnessName(c *gin.Context) string {
	v, ok := c.Get(ContextHarnessClaims)
	if !ok {
		return ""
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := claims[harnessClaim].(string)
	return name
}
