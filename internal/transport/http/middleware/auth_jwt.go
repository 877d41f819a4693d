package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"store-rating/internal/core/auth"
	"store-rating/internal/domain"
	resp "store-rating/internal/transport/http/response"
)

const KeyActor = "actor"

// AuthJWT bearer token to ActorContext; requireRole rejects other roles with 403
func AuthJWT(j *auth.JWTer, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		actor := claims.Actor()
		if !actor.Valid() {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && actor.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "access denied")
			return
		}
		c.Set(KeyActor, actor)
		c.Next()
	}
}

func Actor(c *gin.Context) (domain.ActorContext, bool) {
	v, ok := c.Get(KeyActor)
	if !ok {
		return domain.ActorContext{}, false
	}
	a, ok := v.(domain.ActorContext)
	return a, ok
}
