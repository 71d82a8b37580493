package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/apiserver/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registerRoute(h *Handler) func(r *gin.Engine, path string, mw gin.HandlerFunc) {
	return func(r *gin.Engine, path string, mw gin.HandlerFunc) {
		r.POST(path, mw, h.Register)
	}
}

func loginRoute(h *Handler) func(r *gin.Engine, path string, mw gin.HandlerFunc) {
	return func(r *gin.Engine, path string, mw gin.HandlerFunc) {
		r.POST(path, mw, h.Login)
	}
}

func TestRegister(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)

	w := perform(http.MethodPost, "/api/auth/register", "/api/auth/register", nil, gin.H{
		"tenantName":    "Acme Corp",
		"subdomain":     "acme",
		"adminEmail":    "admin@acme.test",
		"adminPassword": "password123",
		"adminFullName": "Ada Admin",
	}, registerRoute(h))

	require.Equal(t, http.StatusCreated, w.Code)

	tenant, err := db.GetTenantBySubdomain(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, database.TenantActive, tenant.Status)
	assert.Equal(t, "free", tenant.SubscriptionPlan)
	assert.Equal(t, 5, tenant.MaxUsers)
	assert.Equal(t, 3, tenant.MaxProjects)

	admin, err := db.GetUserByEmail(context.Background(), tenant.ID, "admin@acme.test")
	require.NoError(t, err)
	assert.Equal(t, database.RoleTenantAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("password123")))
}

func TestRegisterSubdomainConflict(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	existing := seedTenant(db, "Acme Corp", "acme")
	seedUser(db, &existing.ID, "admin@acme.test", "password123", database.RoleTenantAdmin)

	w := perform(http.MethodPost, "/api/auth/register", "/api/auth/register", nil, gin.H{
		"tenantName":    "Acme Clone",
		"subdomain":     "acme",
		"adminEmail":    "clone@acme.test",
		"adminPassword": "password123",
		"adminFullName": "Copy Cat",
	}, registerRoute(h))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeBody(w)["message"], "Subdomain already exists")

	// neither a second tenant nor a stray admin survives the rollback
	assert.Len(t, db.tenants, 1)
	assert.Len(t, db.users, 1)
}

func TestRegisterValidation(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)

	w := perform(http.MethodPost, "/api/auth/register", "/api/auth/register", nil, gin.H{
		"tenantName": "Acme Corp",
	}, registerRoute(h))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, db.tenants)
}

func TestLogin(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	tenant := seedTenant(db, "Acme Corp", "acme")
	user := seedUser(db, &tenant.ID, "ada@acme.test", "password123", database.RoleMember)

	w := perform(http.MethodPost, "/api/auth/login", "/api/auth/login", nil, gin.H{
		"email":           "ada@acme.test",
		"password":        "password123",
		"tenantSubdomain": "acme",
	}, loginRoute(h))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(w)["data"].(map[string]any)
	assert.Equal(t, float64(86400), data["expiresIn"])

	claims, err := h.jwtService.ValidateToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, tenant.ID, *claims.TenantID)
	assert.Equal(t, string(database.RoleMember), claims.Role)
}

func TestLoginSubdomainHeader(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	tenant := seedTenant(db, "Acme Corp", "acme")
	seedUser(db, &tenant.ID, "ada@acme.test", "password123", database.RoleMember)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", h.Login)

	raw, _ := json.Marshal(gin.H{"email": "ada@acme.test", "password": "password123"})
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Subdomain", "acme")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginCredentialFailuresLookAlike(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	tenant := seedTenant(db, "Acme Corp", "acme")
	seedUser(db, &tenant.ID, "ada@acme.test", "password123", database.RoleMember)

	wrongPassword := perform(http.MethodPost, "/api/auth/login", "/api/auth/login", nil, gin.H{
		"email":           "ada@acme.test",
		"password":        "not-the-password",
		"tenantSubdomain": "acme",
	}, loginRoute(h))
	unknownEmail := perform(http.MethodPost, "/api/auth/login", "/api/auth/login", nil, gin.H{
		"email":           "nobody@acme.test",
		"password":        "password123",
		"tenantSubdomain": "acme",
	}, loginRoute(h))

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// the two failures must be indistinguishable
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginTenantResolution(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	suspended := seedTenant(db, "Globex", "globex")
	suspended.Status = database.TenantSuspended
	seedUser(db, &suspended.ID, "gus@globex.test", "password123", database.RoleMember)

	tests := []struct {
		name      string
		subdomain string
		status    int
	}{
		{"missing subdomain", "", http.StatusBadRequest},
		{"unknown tenant", "nowhere", http.StatusNotFound},
		{"suspended tenant", "globex", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(http.MethodPost, "/api/auth/login", "/api/auth/login", nil, gin.H{
				"email":           "gus@globex.test",
				"password":        "password123",
				"tenantSubdomain": tt.subdomain,
			}, loginRoute(h))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSuperAdminLoginSkipsTenantResolution(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	root := seedUser(db, nil, "superadmin@system.com", "root-secret-pw", database.RoleSuperAdmin)

	// no subdomain anywhere in the request
	w := perform(http.MethodPost, "/api/auth/login", "/api/auth/login", nil, gin.H{
		"email":    "superadmin@system.com",
		"password": "root-secret-pw",
	}, loginRoute(h))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(w)["data"].(map[string]any)
	claims, err := h.jwtService.ValidateToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, root.ID, claims.UserID)
	assert.Nil(t, claims.TenantID)
	assert.Equal(t, string(database.RoleSuperAdmin), claims.Role)
}

func TestMe(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	tenant := seedTenant(db, "Acme Corp", "acme")
	user := seedUser(db, &tenant.ID, "ada@acme.test", "password123", database.RoleMember)

	w := perform(http.MethodGet, "/api/auth/me", "/api/auth/me", claimsFor(user), nil,
		func(r *gin.Engine, path string, mw gin.HandlerFunc) { r.GET(path, mw, h.Me) })

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(w)["data"].(map[string]any)
	assert.Equal(t, "ada@acme.test", data["email"])
	embedded := data["tenant"].(map[string]any)
	assert.Equal(t, "acme", embedded["subdomain"])
}

func TestLogout(t *testing.T) {
	db := newMockDB()
	h := newTestHandler(db)
	tenant := seedTenant(db, "Acme Corp", "acme")
	user := seedUser(db, &tenant.ID, "ada@acme.test", "password123", database.RoleMember)

	w := perform(http.MethodPost, "/api/auth/logout", "/api/auth/logout", claimsFor(user), nil,
		func(r *gin.Engine, path string, mw gin.HandlerFunc) { r.POST(path, mw, h.Logout) })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(w)["message"])
}
