package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// UserRole represents the role of a user
type UserRole string

const (
	RoleSuperAdmin  UserRole = "super_admin"
	RoleTenantAdmin UserRole = "tenant_admin"
	RoleMember      UserRole = "member"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Tenant represents an isolated customer organization
type Tenant struct {
	ID               string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name             string       `json:"name" gorm:"type:varchar(255);not null"`
	Subdomain        string       `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Status           TenantStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	SubscriptionPlan string       `json:"subscriptionPlan" gorm:"type:varchar(50);not null;default:'free'"`
	MaxUsers         int          `json:"maxUsers" gorm:"not null;default:5"`
	MaxProjects      int          `json:"maxProjects" gorm:"not null;default:3"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// User represents an account. TenantID is null only for the super administrator.
type User struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID     *string   `json:"tenantId" gorm:"type:varchar(36);uniqueIndex:idx_users_tenant_email"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_users_tenant_email;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	FullName     string    `json:"fullName" gorm:"type:varchar(255)"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Project represents a project owned by exactly one tenant
type Project struct {
	ID          string        `json:"id" gorm:"type:varchar(36);primaryKey"`
	TenantID    string        `json:"tenantId" gorm:"type:varchar(36);index;not null"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description string        `json:"description" gorm:"type:text"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Task represents a task within a project. TenantID always equals the
// owning project's TenantID.
type Task struct {
	ID          string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	ProjectID   string       `json:"projectId" gorm:"type:varchar(36);index;not null"`
	TenantID    string       `json:"tenantId" gorm:"type:varchar(36);index;not null"`
	Title       string       `json:"title" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Priority    TaskPriority `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	Status      TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'todo'"`
	DueDate     *time.Time   `json:"dueDate"`
	AssigneeID  *string      `json:"assigneeId" gorm:"type:varchar(36)"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// BeforeCreate assigns a UUID primary key when none is set
func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
