package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/apiserver/response"
	"github.com/planhive/planhive/internal/common/dto"
	"go.uber.org/zap"
)

// ListTasks handles listing a project's tasks
func (h *Handler) ListTasks(c *gin.Context) {
	project, ok := h.getScopedProject(c, c.Param("id"))
	if !ok {
		return
	}

	tasks, err := h.db.ListProjectTasks(c.Request.Context(), project.ID)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, gin.H{"tasks": tasks})
}

// validateAssignee checks that an assignee belongs to the given tenant
func (h *Handler) validateAssignee(c *gin.Context, assigneeID, tenantID string) bool {
	assignee, err := h.db.GetUserByID(c.Request.Context(), assigneeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.BadRequest("Assignee not found"))
			return false
		}
		h.logger.Error("failed to fetch assignee", zap.Error(err))
		response.Err(c, err)
		return false
	}
	if assignee.TenantID == nil || *assignee.TenantID != tenantID {
		response.Err(c, response.BadRequest("Assignee must belong to the same tenant"))
		return false
	}
	return true
}

// CreateTask handles task creation under a project. The task inherits
// the project's tenant.
func (h *Handler) CreateTask(c *gin.Context) {
	project, ok := h.getScopedProject(c, c.Param("id"))
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("Task title is required"))
		return
	}

	if req.AssigneeID != nil && !h.validateAssignee(c, *req.AssigneeID, project.TenantID) {
		return
	}

	priority := database.PriorityMedium
	if req.Priority != "" {
		priority = database.TaskPriority(req.Priority)
	}
	status := database.TaskTodo
	if req.Status != "" {
		status = database.TaskStatus(req.Status)
	}

	task := &database.Task{
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      status,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	}
	if err := h.db.CreateTask(c.Request.Context(), task); err != nil {
		h.logger.Error("failed to create task", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Created(c, task)
}

// getScopedTask loads a task under the given project and verifies the
// caller's tenant owns it
func (h *Handler) getScopedTask(c *gin.Context) (*database.Task, bool) {
	project, ok := h.getScopedProject(c, c.Param("id"))
	if !ok {
		return nil, false
	}

	task, err := h.db.GetTaskByID(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("Task not found"))
			return nil, false
		}
		h.logger.Error("failed to fetch task", zap.Error(err))
		response.Err(c, err)
		return nil, false
	}
	if task.ProjectID != project.ID {
		response.Err(c, response.NotFound("Task not found"))
		return nil, false
	}
	return task, true
}

// UpdateTask handles full task updates
func (h *Handler) UpdateTask(c *gin.Context) {
	task, ok := h.getScopedTask(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("invalid request"))
		return
	}

	if req.AssigneeID != nil && !h.validateAssignee(c, *req.AssigneeID, task.TenantID) {
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = database.TaskPriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = database.TaskStatus(*req.Status)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}

	if err := h.db.UpdateTask(c.Request.Context(), task); err != nil {
		h.logger.Error("failed to update task", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, task)
}

// PatchTaskStatus handles a status-only task patch. Repeating the same
// status is a no-op that still succeeds.
func (h *Handler) PatchTaskStatus(c *gin.Context) {
	task, ok := h.getScopedTask(c)
	if !ok {
		return
	}

	var req dto.PatchTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("Task status is required"))
		return
	}

	task.Status = database.TaskStatus(req.Status)
	if err := h.db.UpdateTask(c.Request.Context(), task); err != nil {
		h.logger.Error("failed to update task status", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.OK(c, task)
}

// DeleteTask handles task deletion
func (h *Handler) DeleteTask(c *gin.Context) {
	task, ok := h.getScopedTask(c)
	if !ok {
		return
	}

	if err := h.db.DeleteTask(c.Request.Context(), task.ID); err != nil {
		h.logger.Error("failed to delete task", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Message(c, "Task deleted successfully")
}
