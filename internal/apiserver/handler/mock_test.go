package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/planhive/planhive/internal/auth/jwt"
	"github.com/planhive/planhive/internal/common/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockDB is an in-memory database.Database used by handler tests
type mockDB struct {
	tenants  map[string]*database.Tenant
	users    map[string]*database.User
	projects map[string]*database.Project
	tasks    map[string]*database.Task
	pingErr  error
}

func newMockDB() *mockDB {
	return &mockDB{
		tenants:  map[string]*database.Tenant{},
		users:    map[string]*database.User{},
		projects: map[string]*database.Project{},
		tasks:    map[string]*database.Task{},
	}
}

func (m *mockDB) Close() error               { return nil }
func (m *mockDB) Ping(context.Context) error { return m.pingErr }

// Transaction emulates rollback by restoring a snapshot when fn fails
func (m *mockDB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tenants := snapshot(m.tenants)
	users := snapshot(m.users)
	projects := snapshot(m.projects)
	tasks := snapshot(m.tasks)
	if err := fn(ctx); err != nil {
		m.tenants, m.users, m.projects, m.tasks = tenants, users, projects, tasks
		return err
	}
	return nil
}

func snapshot[T any](src map[string]*T) map[string]*T {
	out := make(map[string]*T, len(src))
	for k, v := range src {
		c := *v
		out[k] = &c
	}
	return out
}

func (m *mockDB) CreateTenant(ctx context.Context, t *database.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tenants[t.ID] = t
	return nil
}

func (m *mockDB) GetTenantByID(ctx context.Context, id string) (*database.Tenant, error) {
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) GetTenantBySubdomain(ctx context.Context, subdomain string) (*database.Tenant, error) {
	for _, t := range m.tenants {
		if t.Subdomain == subdomain {
			return t, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) UpdateTenant(ctx context.Context, t *database.Tenant) error {
	t.UpdatedAt = time.Now()
	m.tenants[t.ID] = t
	return nil
}

func (m *mockDB) ListTenants(context.Context) ([]*database.Tenant, error) {
	var out []*database.Tenant
	for _, t := range m.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockDB) CountTenantUsers(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if u.TenantID != nil && *u.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *mockDB) CountTenantProjects(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	for _, p := range m.projects {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *mockDB) CountTenantTasks(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	for _, t := range m.tasks {
		if t.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *mockDB) CreateUser(ctx context.Context, u *database.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *mockDB) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) GetUserByEmail(ctx context.Context, tenantID, email string) (*database.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.TenantID != nil && *u.TenantID == tenantID {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) GetSuperAdminByEmail(ctx context.Context, email string) (*database.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Role == database.RoleSuperAdmin && u.TenantID == nil {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) UpdateUser(ctx context.Context, u *database.User) error {
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *mockDB) DeleteUser(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockDB) ListTenantUsers(ctx context.Context, tenantID string) ([]*database.User, error) {
	var out []*database.User
	for _, u := range m.users {
		if u.TenantID != nil && *u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockDB) CreateProject(ctx context.Context, p *database.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ID] = p
	return nil
}

func (m *mockDB) GetProjectByID(ctx context.Context, id string) (*database.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) UpdateProject(ctx context.Context, p *database.Project) error {
	p.UpdatedAt = time.Now()
	m.projects[p.ID] = p
	return nil
}

func (m *mockDB) DeleteProject(ctx context.Context, id string) error {
	for tid, t := range m.tasks {
		if t.ProjectID == id {
			delete(m.tasks, tid)
		}
	}
	delete(m.projects, id)
	return nil
}

func (m *mockDB) ListTenantProjects(ctx context.Context, tenantID string) ([]*database.Project, error) {
	var out []*database.Project
	for _, p := range m.projects {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockDB) CreateTask(ctx context.Context, t *database.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = t
	return nil
}

func (m *mockDB) GetTaskByID(ctx context.Context, id string) (*database.Task, error) {
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, database.ErrNotFound
}

func (m *mockDB) UpdateTask(ctx context.Context, t *database.Task) error {
	t.UpdatedAt = time.Now()
	m.tasks[t.ID] = t
	return nil
}

func (m *mockDB) DeleteTask(ctx context.Context, id string) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockDB) ListProjectTasks(ctx context.Context, projectID string) ([]*database.Task, error) {
	var out []*database.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- fixtures ----

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestHandler(db *mockDB) *Handler {
	svc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: 24 * time.Hour})
	if err != nil {
		panic(err)
	}
	return &Handler{
		db:         db,
		jwtService: svc,
		superAdmin: config.SuperAdminConfig{Email: "superadmin@system.com", Password: "root-secret-pw", FullName: "System Administrator"},
		logger:     zap.NewNop(),
	}
}

func hashPassword(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hashed)
}

func seedTenant(db *mockDB, name, subdomain string) *database.Tenant {
	t := &database.Tenant{
		Name: name, Subdomain: subdomain,
		Status: database.TenantActive, SubscriptionPlan: "free",
		MaxUsers: 5, MaxProjects: 3,
	}
	_ = db.CreateTenant(context.Background(), t)
	return t
}

func seedUser(db *mockDB, tenantID *string, email, password string, role database.UserRole) *database.User {
	u := &database.User{
		TenantID: tenantID, Email: email,
		PasswordHash: hashPassword(password),
		FullName:     email, Role: role, IsActive: true,
	}
	_ = db.CreateUser(context.Background(), u)
	return u
}

// claimsFor builds JWT claims matching a seeded user
func claimsFor(u *database.User) *jwt.Claims {
	return &jwt.Claims{UserID: u.ID, TenantID: u.TenantID, Role: string(u.Role)}
}

// perform runs a request against a route with the given claims injected
func perform(method, target, route string, claims *jwt.Claims, body any, register func(r *gin.Engine, path string, mw gin.HandlerFunc)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r, route, func(c *gin.Context) {
		if claims != nil {
			c.Set("claims", claims)
		}
	})

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}
