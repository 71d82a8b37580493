package dto

import "time"

// RegisterRequest represents a tenant self-registration request
type RegisterRequest struct {
	TenantName    string `json:"tenantName" binding:"required"`
	Subdomain     string `json:"subdomain" binding:"required"`
	AdminEmail    string `json:"adminEmail" binding:"required,email"`
	AdminPassword string `json:"adminPassword" binding:"required,min=8"`
	AdminFullName string `json:"adminFullName" binding:"required"`
}

// LoginRequest represents a login request. TenantSubdomain may instead be
// supplied via the X-Tenant-Subdomain header.
type LoginRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

// UserInfo represents a user in API responses
type UserInfo struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenantId"`
}

// LoginData is the payload of a successful login
type LoginData struct {
	User      UserInfo `json:"user"`
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expiresIn"`
}

// TenantInfo represents a tenant embedded in a profile response
type TenantInfo struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Subdomain        string `json:"subdomain"`
	SubscriptionPlan string `json:"subscriptionPlan"`
	MaxUsers         int    `json:"maxUsers"`
	MaxProjects      int    `json:"maxProjects"`
}

// TenantStats holds per-tenant aggregate counts
type TenantStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalProjects int64 `json:"totalProjects"`
	TotalTasks    int64 `json:"totalTasks"`
}

// UpdateTenantRequest represents a tenant update. Pointer fields
// distinguish absent from zero-valued input.
type UpdateTenantRequest struct {
	Name             *string `json:"name"`
	Status           *string `json:"status" binding:"omitempty,oneof=active suspended"`
	SubscriptionPlan *string `json:"subscriptionPlan"`
	MaxUsers         *int    `json:"maxUsers"`
	MaxProjects      *int    `json:"maxProjects"`
}

// Fields returns the names of the fields present in the request
func (r *UpdateTenantRequest) Fields() []string {
	var fields []string
	if r.Name != nil {
		fields = append(fields, "name")
	}
	if r.Status != nil {
		fields = append(fields, "status")
	}
	if r.SubscriptionPlan != nil {
		fields = append(fields, "subscriptionPlan")
	}
	if r.MaxUsers != nil {
		fields = append(fields, "maxUsers")
	}
	if r.MaxProjects != nil {
		fields = append(fields, "maxProjects")
	}
	return fields
}

// AddUserRequest represents a request to add a user to a tenant
type AddUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role" binding:"omitempty,oneof=tenant_admin member"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=active completed archived"`
}

// UpdateProjectRequest represents a project update request
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active completed archived"`
}

// CreateTaskRequest represents a task creation request
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in_progress completed"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId"`
}

// UpdateTaskRequest represents a task update request
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *string    `json:"status" binding:"omitempty,oneof=todo in_progress completed"`
	DueDate     *time.Time `json:"dueDate"`
	AssigneeID  *string    `json:"assigneeId"`
}

// PatchTaskStatusRequest represents a status-only task patch
type PatchTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in_progress completed"`
}
