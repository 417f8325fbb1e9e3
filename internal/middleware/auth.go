package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/authz"
	"github.com/clinicore/clinic-api/internal/handler"
	authservice "github.com/clinicore/clinic-api/internal/service/auth"
)

const contextActorKey = "actor"

type AuthMiddleware struct {
	authService *authservice.Service
}

func NewAuthMiddleware(authService *authservice.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate resolves the bearer token to an actor and stores it in the
// request context. Absence or failure is Unauthorized; authorization proper
// happens in the services, through the engine.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		actor, err := m.authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(contextActorKey, actor)
		c.Next()
	}
}

// CurrentActor retrieves the authenticated actor set by Authenticate.
func CurrentActor(c *gin.Context) (*authz.Actor, bool) {
	v, ok := c.Get(contextActorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*authz.Actor)
	return actor, ok
}
