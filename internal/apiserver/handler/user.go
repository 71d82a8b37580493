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

// UpdateUser handles updating a tenant user. The caller's own account is
// out of reach here; self-service goes through the profile path.
func (h *Handler) UpdateUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("User not found"))
			return
		}
		h.logger.Error("failed to fetch user", zap.Error(err))
		response.Err(c, err)
		return
	}

	if d := authz.CanModifyUser(identity, user); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, response.BadRequest("invalid request"))
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = database.UserRole(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := bcryptHash(*req.Password)
		if err != nil {
			h.logger.Error("failed to hash password", zap.Error(err))
			response.Err(c, err)
			return
		}
		user.PasswordHash = hashed
	}

	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		h.logger.Error("failed to update user", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Message(c, "User updated successfully")
}

// DeleteUser handles deleting a tenant user. Authorization runs before
// any store mutation; a self-delete never reaches the store.
func (h *Handler) DeleteUser(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Err(c, response.Unauthorized("unauthorized"))
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			response.Err(c, response.NotFound("User not found"))
			return
		}
		h.logger.Error("failed to fetch user", zap.Error(err))
		response.Err(c, err)
		return
	}

	if d := authz.CanModifyUser(identity, user); !d.Allowed {
		response.Err(c, response.Forbidden(d.Reason))
		return
	}

	if err := h.db.DeleteUser(c.Request.Context(), user.ID); err != nil {
		h.logger.Error("failed to delete user", zap.Error(err))
		response.Err(c, err)
		return
	}

	response.Message(c, "User deleted successfully")
}
