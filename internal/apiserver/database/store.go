package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store implements the Database interface on top of a GORM connection.
// The driver-specific constructors in postgres.go, mysql.go and sqlite.go
// all return a *Store.
type Store struct {
	db *gorm.DB
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Tenant{}, &User{}, &Project{}, &Task{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a transaction carried through the context
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateTenant creates a new tenant
func (s *Store) CreateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, s.db).Create(tenant).Error
}

// GetTenantByID retrieves a tenant by ID
func (s *Store) GetTenantByID(ctx context.Context, id string) (*Tenant, error) {
	var tenant Tenant
	err := getDBFromContext(ctx, s.db).
		Where("id = ?", id).
		First(&tenant).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

// GetTenantBySubdomain retrieves a tenant by its unique subdomain
func (s *Store) GetTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	var tenant Tenant
	err := getDBFromContext(ctx, s.db).
		Where("subdomain = ?", subdomain).
		First(&tenant).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

// UpdateTenant updates an existing tenant
func (s *Store) UpdateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, s.db).Save(tenant).Error
}

// ListTenants retrieves all tenants, newest first
func (s *Store) ListTenants(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := getDBFromContext(ctx, s.db).
		Order("created_at desc").
		Find(&tenants).Error
	return tenants, err
}

// CountTenantUsers counts the users belonging to a tenant
func (s *Store) CountTenantUsers(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := getDBFromContext(ctx, s.db).
		Model(&User{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CountTenantProjects counts the projects belonging to a tenant
func (s *Store) CountTenantProjects(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := getDBFromContext(ctx, s.db).
		Model(&Project{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CountTenantTasks counts the tasks belonging to a tenant
func (s *Store) CountTenantTasks(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := getDBFromContext(ctx, s.db).
		Model(&Task{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CreateUser creates a new user
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Create(user).Error
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email within a tenant
func (s *Store) GetUserByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&user).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// GetSuperAdminByEmail retrieves the tenant-less super admin by email
func (s *Store) GetSuperAdminByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Where("email = ? AND role = ? AND tenant_id IS NULL", email, RoleSuperAdmin).
		First(&user).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// UpdateUser updates an existing user
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Save(user).Error
}

// DeleteUser deletes a user by ID
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return getDBFromContext(ctx, s.db).Delete(&User{}, "id = ?", id).Error
}

// ListTenantUsers retrieves a tenant's users, newest first
func (s *Store) ListTenantUsers(ctx context.Context, tenantID string) ([]*User, error) {
	var users []*User
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Find(&users).Error
	return users, err
}

// CreateProject creates a new project
func (s *Store) CreateProject(ctx context.Context, project *Project) error {
	return getDBFromContext(ctx, s.db).Create(project).Error
}

// GetProjectByID retrieves a project by ID
func (s *Store) GetProjectByID(ctx context.Context, id string) (*Project, error) {
	var project Project
	err := getDBFromContext(ctx, s.db).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &project, nil
}

// UpdateProject updates an existing project
func (s *Store) UpdateProject(ctx context.Context, project *Project) error {
	return getDBFromContext(ctx, s.db).Save(project).Error
}

// DeleteProject deletes a project and its tasks
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		tx := getDBFromContext(ctx, s.db)
		if err := tx.Delete(&Task{}, "project_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&Project{}, "id = ?", id).Error
	})
}

// ListTenantProjects retrieves a tenant's projects, newest first
func (s *Store) ListTenantProjects(ctx context.Context, tenantID string) ([]*Project, error) {
	var projects []*Project
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Find(&projects).Error
	return projects, err
}

// CreateTask creates a new task
func (s *Store) CreateTask(ctx context.Context, task *Task) error {
	return getDBFromContext(ctx, s.db).Create(task).Error
}

// GetTaskByID retrieves a task by ID
func (s *Store) GetTaskByID(ctx context.Context, id string) (*Task, error) {
	var task Task
	err := getDBFromContext(ctx, s.db).
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &task, nil
}

// UpdateTask updates an existing task
func (s *Store) UpdateTask(ctx context.Context, task *Task) error {
	return getDBFromContext(ctx, s.db).Save(task).Error
}

// DeleteTask deletes a task by ID
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return getDBFromContext(ctx, s.db).Delete(&Task{}, "id = ?", id).Error
}

// ListProjectTasks retrieves a project's tasks, newest first
func (s *Store) ListProjectTasks(ctx context.Context, projectID string) ([]*Task, error) {
	var tasks []*Task
	err := getDBFromContext(ctx, s.db).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tasks).Error
	return tasks, err
}
