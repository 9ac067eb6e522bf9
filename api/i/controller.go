package i

import "github.com/gin-gonic/gin"

// Controller registers a group of harness API routes on the router.
type Controller interface {
	RegisterPublic(*gin.RouterGroup)    // Routes reachable without a token
	RegisterProtected(*gin.RouterGroup) // Routes behind the bearer middleware
}
