package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/auth/jwt"
	"github.com/planhive/planhive/internal/authz"
	"github.com/planhive/planhive/internal/common/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler carries the shared dependencies of all API handlers
type Handler struct {
	db         database.Database
	jwtService *jwt.Service
	superAdmin config.SuperAdminConfig
	logger     *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(db database.Database, jwtService *jwt.Service, superAdmin config.SuperAdminConfig, logger *zap.Logger) *Handler {
	return &Handler{
		db:         db,
		jwtService: jwtService,
		superAdmin: superAdmin,
		logger:     logger,
	}
}

// identityFromContext resolves the authenticated caller from the claims
// placed in the context by the JWT middleware
func identityFromContext(c *gin.Context) (authz.Identity, bool) {
	claims, exists := c.Get("claims")
	if !exists {
		return authz.Identity{}, false
	}
	jwtClaims, ok := claims.(*jwt.Claims)
	if !ok {
		return authz.Identity{}, false
	}
	return authz.Identity{
		UserID:   jwtClaims.UserID,
		TenantID: jwtClaims.TenantID,
		Role:     database.UserRole(jwtClaims.Role),
	}, true
}

// tenantScope returns the caller's tenant id. The super administrator has
// no tenant scope and fails this check.
func tenantScope(id authz.Identity) (string, bool) {
	if id.TenantID == nil {
		return "", false
	}
	return *id.TenantID, true
}

// bcryptHash hashes a password at the default cost
func bcryptHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
