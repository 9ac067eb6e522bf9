package identity

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/vinom-dungeon/service"
	"github.com/beka-birhanu/vinom-dungeon/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to harness authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/token", c.issueToken)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
}

// issueToken exchanges the harness key for a bearer token.
func (c *IdentityServer) issueToken(ctx *gin.Context) {
	var request TokenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := c.authService.IssueToken(request.Name, request.Key)
	switch {
	case errors.Is(err, service.ErrInvalidHarnessName):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidHarnessKey):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while issuing token"})
		return
	}

	ctx.JSON(http.StatusOK, &TokenResponse{Name: request.Name, Token: token})
}
