package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	tenantIDKey = "jwt_tenant_id"
	userIDKey   = "jwt_user_id"
)

var (
	ErrNoTenant = errors.New("no tenant on request")
	ErrNoUser   = errors.New("no user on request")
)

// GetTenantID returns the tenant of the authenticated request
func GetTenantID(c *gin.Context) string {
	return c.GetString(tenantIDKey)
}

// GetUserID returns the acting user of the authenticated request
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// TenantUUID parses the request's tenant. Every ledger row is scoped by it,
// so a request without one must not reach a service.
func TenantUUID(c *gin.Context) (uuid.UUID, error) {
	id := GetTenantID(c)
	if id == "" {
		return uuid.Nil, ErrNoTenant
	}
	return uuid.Parse(id)
}

// UserUUID parses the request's user
func UserUUID(c *gin.Context) (uuid.UUID, error) {
	id := GetUserID(c)
	if id == "" {
		return uuid.Nil, ErrNoUser
	}
	return uuid.Parse(id)
}
