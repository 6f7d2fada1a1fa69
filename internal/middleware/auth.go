package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/service"
)

const adminKey = "admin"

type TokenVerifier interface {
	Verify(token string) (*service.Claims, error)
}

// AuthMiddleware admits requests carrying a valid admin token, either as
// "Bearer <token>" or as the bare token.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token := header
		if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    "unauthorized",
				Message: "missing or invalid token",
			})
			return
		}

		c.Set(adminKey, model.Admin{UID: claims.UID, Email: claims.Email})
		c.Next()
	}
}

// GetAdmin returns the identity set by AuthMiddleware.
func GetAdmin(c *gin.Context) (model.Admin, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return model.Admin{}, false
	}
	admin, ok := v.(model.Admin)
	return admin, ok
}
