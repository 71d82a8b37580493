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

// ListProjects handles listing the caller's tenant's projects
func (h *Handler) ListProjects(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID, ok := tenantScope(identity)
	if !ok {
		response.Err(c, response.Forbidden("unauthorized access"))
		return
	}

	projects, err := h.db.ListTenantProjects(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{"projects": projects})
}

// CreateProject handles project creation, within the tenant's quota
func (h *Handler) CreateProject(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}
	tenantID, ok := tenantScope(identity)
	if !ok {
		response.Err(c, response.Forbidden("unauthorized access"))
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("Project name is required"))
		return
	}

	tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to fetch tenant", zap.Error(err))
		response.Err(c, err)
		return
	}
	count, err := h.db.CountTenantProjects(c.Request.Context(), tenantID)
	if err != nil {
		h.logger.Error("failed to count projects", zap.Error(err))
		response.Err(c, err)
		return
	}
	if count >= int64(tenant.MaxProjects) {
		response.Err(c, response.Forbidden("Project quota reached for this tenant"))
		return
	}

	status := database.ProjectActive
	if req.Status != "" {
		status = database.ProjectStatus(req.Status)
	}

	project := &database.Project{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	}
	if err := h.db.CreateProject(c.Request.Context(), project); err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Created(c, project)
}

// getScopedProject loads a project and verifies the caller's tenant owns it
func (h *Handler) getScopedProject(c *gin.Context, id string) (*database.Project, bool) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return nil, false
	}

	project, err := h.db.GetProjectByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("Project not found"))
			return nil, false
		}
		h.logger.Error("failed to fetch project", zap.Error(err))
		response.Err(c, err)
		return nil, false
	}

	if d := authz.CanAccessProject(identity, project.TenantID); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return nil, false
	}
	return project, true
}

// UpdateProject handles project updates
func (h *Handler) UpdateProject(c *gin.Context) {
	project, ok := h.getScopedProject(c, c.Param("id"))
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("invalid request"))
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = database.ProjectStatus(*req.Status)
	}

	if err := h.db.UpdateProject(c.Request.Context(), project); err != nil {
		h.logger.Error("failed to update project", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, project)
}

// DeleteProject handles project deletion, removing its tasks with it
func (h *Handler) DeleteProject(c *gin.Context) {
	project, ok := h.getScopedProject(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.db.DeleteProject(c.Request.Context(), project.ID); err != nil {
		h.logger.Error("failed to delete project", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Message(c, "Project deleted successfully")
}
