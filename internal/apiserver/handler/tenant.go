package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/apiserver/response"
	"github.com/planhive/planhive/internal/authz"
	"github.com/planhive/planhive/internal/common/dto"
	"go.uber.org/zap"
)

// ListTenants handles listing all tenants, super administrator only
func (h *Handler) ListTenants(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	if d := authz.CanListTenants(identity); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	tenants, err := h.db.ListTenants(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list tenants", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{"tenants": tenants})
}

// GetTenant handles reading a tenant's details including aggregate stats
func (h *Handler) GetTenant(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID := c.Param("id")

	// Authorization first: cross-tenant requests fail the same way
	// whether or not the tenant exists.
	if d := authz.CanAccessTenant(identity, tenantID); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("Tenant not found"))
			return
		}
		h.logger.Error("failed to fetch tenant", zap.Error(err))
		response.Err(c, err)
		return
	}

	users, err := h.db.CountTenantUsers(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to count tenant users", zap.Error(err))
		response.Err(c, err)
		return
	}
	projects, err := h.db.CountTenantProjects(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to count tenant projects", zap.Error(err))
		response.Err(c, err)
		return
	}
	tasks, err := h.db.CountTenantTasks(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to count tenant tasks", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":               tenant.ID,
		"name":             tenant.Name,
		"subdomain":        tenant.Subdomain,
		"status":           tenant.Status,
		"subscriptionPlan": tenant.SubscriptionPlan,
		"maxUsers":         tenant.MaxUsers,
		"maxProjects":      tenant.MaxProjects,
		"createdAt":        tenant.CreatedAt,
		"stats": dto.TenantStats{
			TotalUsers:    users,
			TotalProjects: projects,
			TotalTasks:    tasks,
		},
	})
}

// UpdateTenant handles tenant updates with role-based field restrictions.
// A tenant administrator sending any restricted field has the whole
// request denied; nothing is applied.
func (h *Handler) UpdateTenant(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID := c.Param("id")

	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("invalid request"))
		return
	}

	fields := req.Fields()
	if len(fields) == 0 {
		response.Err(c, response.BadRequest("No valid fields provided"))
		return
	}

	if d := authz.CanUpdateTenant(identity, tenantID, fields); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("Tenant not found"))
			return
		}
		h.logger.Error("failed to fetch tenant", zap.Error(err))
		response.Err(c, err)
		return
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.Status != nil {
		tenant.Status = database.TenantStatus(*req.Status)
	}
	if req.SubscriptionPlan != nil {
		tenant.SubscriptionPlan = *req.SubscriptionPlan
	}
	if req.MaxUsers != nil {
		tenant.MaxUsers = *req.MaxUsers
	}
	if req.MaxProjects != nil {
		tenant.MaxProjects = *req.MaxProjects
	}

	if err := h.db.UpdateTenant(c.Request.Context(), tenant); err != nil {
		h.logger.Error("failed to update tenant", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":        tenant.ID,
		"name":      tenant.Name,
		"updatedAt": tenant.UpdatedAt,
	})
}

// ListTenantUsers handles listing a tenant's users
func (h *Handler) ListTenantUsers(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID := c.Param("id")

	if d := authz.CanListUsers(identity, tenantID); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	users, err := h.db.ListTenantUsers(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list tenant users", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{"users": users})
}

// AddTenantUser handles adding a user to a tenant, within quota
func (h *Handler) AddTenantUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID := c.Param("id")

	if d := authz.CanAddUser(identity, tenantID); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	var req dto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("Email, password and full name are required"))
		return
	}

	tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("Tenant not found"))
			return
		}
		h.logger.Error("failed to fetch tenant", zap.Error(err))
		response.Err(c, err)
		return
	}

	count, err := h.db.CountTenantUsers(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to count tenant users", zap.Error(err))
		response.Err(c, err)
		return
	}
	if count >= int64(tenant.MaxUsers) {
		response.Err(c, response.Forbidden("User quota reached for this tenant"))
		return
	}

	if _, err := h.db.GetUserByEmail(c.Request.Context(), tenantID, req.Email); err == nil {
		response.Err(c, response.Conflict("Email already exists in this tenant"))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("failed to check existing user", zap.Error(err))
		response.Err(c, err)
		return
	}

	hashedPassword, err := bcryptHash(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		response.Err(c, err)
		return
	}

	// Anything other than an explicit tenant_admin request becomes a member
	role := database.RoleMember
	if req.Role == string(database.RoleTenantAdmin) {
		role = database.RoleTenantAdmin
	}

	user := &database.User{
		TenantID:     &tenant.ID,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FullName:     req.FullName,
		Role:         role,
		IsActive:     true,
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Created(c, dto.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	})
}
