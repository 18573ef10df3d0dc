package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/inmobiliaria/backend/internal/infrastructure/auth"
	"github.com/inmobiliaria/backend/internal/infrastructure/logger"
	"github.com/inmobiliaria/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	jwtClaimsKey = "jwt_claims"
)

// TokenValidator turns a bearer token into verified claims
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTConfig configures JWTAuth
type JWTConfig struct {
	Validator TokenValidator
	// Revocations is optional. Lookup failures let the request through so a
	// Redis outage does not take the API down.
	Revocations auth.RevocationList
	// SkipPaths are route patterns served without a token
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth requires a valid access token and stores its claims, tenant and
// user on the gin and request contexts.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		token, found := strings.CutPrefix(header, BearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing bearer token")
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			authFailed(c, log, err)
			return
		}

		if cfg.Revocations != nil {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims)
			switch {
			case err != nil:
				log.Error("Revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				authFailed(c, log, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(jwtClaimsKey, claims)
		c.Set(tenantIDKey, claims.TenantID)
		c.Set(userIDKey, claims.UserID)

		ctx := logger.WithTenantID(c.Request.Context(), claims.TenantID)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authFailed(c *gin.Context, log *zap.Logger, err error) {
	logger.Enrich(c.Request.Context(), log).Warn("Authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrMissingTenantID):
		message = "Token carries no tenant"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// RequirePermission lets the request through when the token grants any of perms
func RequirePermission(perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(perms...) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden,
				"Missing permission: "+strings.Join(perms, " or "))
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims, or nil before JWTAuth ran
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(jwtClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
