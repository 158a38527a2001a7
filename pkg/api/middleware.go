package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwtgo "github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

// Middleware handles authentication for routes requiring authentication
type Middleware interface {
	BearerJWTMiddlewareFunc() gin.HandlerFunc
}

// NewAuthMiddleware returns a new api.Middleware
func NewAuthMiddleware(configGetter ConfigGetter) (authMiddleware Middleware) {
	authMiddleware = &authMiddlewareImpl{
		configGetter: configGetter,
	}

	return
}

type authMiddlewareImpl struct {
	configGetter ConfigGetter
}

// BearerJWTMiddlewareFunc requires an HS256 signed bearer token when server.jwtKey is set; without a key all requests pass
func (m *authMiddlewareImpl) BearerJWTMiddlewareFunc() gin.HandlerFunc {
	return func(c *gin.Context) {

		config := m.configGetter.GetConfig()
		if config == nil || config.Server == nil || config.Server.JWTKey == "" {
			c.Next()
			return
		}

		authorizationHeader := c.Request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusText(http.StatusUnauthorized), "message": "Bearer token is missing"})
			return
		}

		bearerTokenString := strings.TrimPrefix(authorizationHeader, "Bearer ")
		token, err := ValidateJWT(config.Server.JWTKey, bearerTokenString)
		if err != nil || !token.Valid {
			log.Warn().Err(err).Msg("Bearer token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusText(http.StatusUnauthorized), "message": "Bearer token is not valid"})
			return
		}

		// expose the subject for request logging
		if claims, ok := token.Claims.(jwtgo.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				c.Set(gin.AuthUserKey, sub)
			}
		}

		c.Next()
	}
}
