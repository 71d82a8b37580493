package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/apiserver/response"
	"github.com/planhive/planhive/internal/common/dto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultPlan        = "free"
	defaultMaxUsers    = 5
	defaultMaxProjects = 3
)

// Register handles tenant self-registration: the tenant and its first
// tenant administrator are created atomically, both or neither.
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("All fields are required"))
		return
	}

	err := h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		// The unique constraint on subdomain is the authoritative guard;
		// this check just produces a friendly conflict.
		_, err := h.db.GetTenantBySubdomain(ctx, req.Subdomain)
		if err == nil {
			return response.Conflict("Subdomain already exists")
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		tenant := &database.Tenant{
			Name:             req.TenantName,
			Subdomain:        req.Subdomain,
			Status:           database.TenantActive,
			SubscriptionPlan: defaultPlan,
			MaxUsers:         defaultMaxUsers,
			MaxProjects:      defaultMaxProjects,
		}
		if err := h.db.CreateTenant(ctx, tenant); err != nil {
			return err
		}

		admin := &database.User{
			TenantID:     &tenant.ID,
			Email:        req.AdminEmail,
			PasswordHash: string(hashedPassword),
			FullName:     req.AdminFullName,
			Role:         database.RoleTenantAdmin,
			IsActive:     true,
		}
		return h.db.CreateUser(ctx, admin)
	})
	if err != nil {
		if _, ok := err.(*response.Error); !ok {
			h.logger.Error("tenant registration failed", zap.Error(err))
		}
		response.Err(c, err)
		return
	}

	response.CreatedMessage(c, "Tenant registered successfully")
}

// Login authenticates a user and issues a signed token. Unknown identity
// and wrong password are indistinguishable in the response.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("Email and password are required"))
		return
	}

	var user *database.User

	if req.Email == h.superAdmin.Email {
		// Super admin login bypasses tenant resolution entirely
		u, err := h.db.GetSuperAdminByEmail(c.Request.Context(), req.Email)
		if err != nil {
			response.Err(c, response.Unauthorized("Invalid credentials"))
			return
		}
		user = u
	} else {
		subdomain := req.TenantSubdomain
		if subdomain == "" {
			subdomain = c.GetHeader("X-Tenant-Subdomain")
		}
		if subdomain == "" {
			response.Err(c, response.BadRequest("Tenant subdomain is required"))
			return
		}

		tenant, err := h.db.GetTenantBySubdomain(c.Request.Context(), subdomain)
		if err != nil {
			response.Err(c, response.NotFound("Tenant not found"))
			return
		}
		if tenant.Status != database.TenantActive {
			response.Err(c, response.Forbidden("Tenant is not active"))
			return
		}

		u, err := h.db.GetUserByEmail(c.Request.Context(), tenant.ID, req.Email)
		if err != nil {
			response.Err(c, response.Unauthorized("Invalid credentials"))
			return
		}
		user = u
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Err(c, response.Unauthorized("Invalid credentials"))
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.TenantID, string(user.Role))
	if err != nil {
		h.logger.Error("failed to generate token", zap.Error(err))
		response.Err(c, response.Internal("Login failed"))
		return
	}

	response.OK(c, dto.LoginData{
		User: dto.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     string(user.Role),
			TenantID: user.TenantID,
		},
		Token:     token,
		ExpiresIn: int64(h.jwtService.Duration() / time.Second),
	})
}

// Me returns the caller's profile with the owning tenant embedded
func (h *Handler) Me(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("User not found"))
			return
		}
		h.logger.Error("failed to fetch current user", zap.Error(err))
		response.Err(c, err)
		return
	}

	var tenantInfo *dto.TenantInfo
	if user.TenantID != nil {
		tenant, err := h.db.GetTenantByID(c.Request.Context(), *user.TenantID)
		if err != nil {
			h.logger.Error("failed to fetch tenant for profile", zap.Error(err))
			response.Err(c, err)
			return
		}
		tenantInfo = &dto.TenantInfo{
			ID:               tenant.ID,
			Name:             tenant.Name,
			Subdomain:        tenant.Subdomain,
			SubscriptionPlan: tenant.SubscriptionPlan,
			MaxUsers:         tenant.MaxUsers,
			MaxProjects:      tenant.MaxProjects,
		}
	}

	response.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"fullName": user.FullName,
		"role":     user.Role,
		"tenantId": user.TenantID,
		"tenant":   tenantInfo,
	})
}

// Logout acknowledges a logout. Tokens are stateless; the client simply
// discards its copy.
func (h *Handler) Logout(c *gin.Context) {
	response.Message(c, "Logged out successfully")
}
