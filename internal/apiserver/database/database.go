package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error

	// Transaction runs fn inside a transaction. Any error rolls back
	// every write made within fn.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateTenant creates a new tenant.
	CreateTenant(ctx context.Context, tenant *Tenant) error

	// GetTenantByID retrieves a tenant by ID.
	GetTenantByID(ctx context.Context, id string) (*Tenant, error)

	// GetTenantBySubdomain retrieves a tenant by its unique subdomain.
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)

	// UpdateTenant updates an existing tenant.
	UpdateTenant(ctx context.Context, tenant *Tenant) error

	// ListTenants retrieves all tenants, newest first.
	ListTenants(ctx context.Context) ([]*Tenant, error)

	// CountTenantUsers counts the users belonging to a tenant.
	CountTenantUsers(ctx context.Context, tenantID string) (int64, error)

	// CountTenantProjects counts the projects belonging to a tenant.
	CountTenantProjects(ctx context.Context, tenantID string) (int64, error)

	// CountTenantTasks counts the tasks belonging to a tenant.
	CountTenantTasks(ctx context.Context, tenantID string) (int64, error)

	// CreateUser creates a new user.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email within a tenant.
	GetUserByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// GetSuperAdminByEmail retrieves the tenant-less super admin by email.
	GetSuperAdminByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, user *User) error

	// DeleteUser deletes a user by ID.
	DeleteUser(ctx context.Context, id string) error

	// ListTenantUsers retrieves a tenant's users, newest first.
	ListTenantUsers(ctx context.Context, tenantID string) ([]*User, error)

	// CreateProject creates a new project.
	CreateProject(ctx context.Context, project *Project) error

	// GetProjectByID retrieves a project by ID.
	GetProjectByID(ctx context.Context, id string) (*Project, error)

	// UpdateProject updates an existing project.
	UpdateProject(ctx context.Context, project *Project) error

	// DeleteProject deletes a project and its tasks.
	DeleteProject(ctx context.Context, id string) error

	// ListTenantProjects retrieves a tenant's projects, newest first.
	ListTenantProjects(ctx context.Context, tenantID string) ([]*Project, error)

	// CreateTask creates a new task.
	CreateTask(ctx context.Context, task *Task) error

	// GetTaskByID retrieves a task by ID.
	GetTaskByID(ctx context.Context, id string) (*Task, error)

	// UpdateTask updates an existing task.
	UpdateTask(ctx context.Context, task *Task) error

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id string) error

	// ListProjectTasks retrieves a project's tasks, newest first.
	ListProjectTasks(ctx context.Context, projectID string) ([]*Task, error)
}
