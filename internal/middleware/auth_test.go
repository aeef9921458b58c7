package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	"github.com/noah-isme/sit-transcript-api/internal/service"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Create(_ context.Context, _ *models.User) error {
	return nil
}

func signToken(t *testing.T, secret, userID string) string {
	t.Helper()
	claims := &models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newGatedRouter(repo *fakeUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour})

	r := gin.New()
	protected := r.Group("/", Session(svc, "token"))
	protected.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	protected.GET("/admin-only", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestSessionRejectsMissingToken(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{}})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionRejectsForgedToken(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleUser},
	}})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "user-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAcceptsCookie(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleUser},
	}})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "test-secret", "user-1")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionAcceptsBearerHeader(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleUser},
	}})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "user-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminForbidsRegularUser(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleUser},
	}})

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "user-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	r := newGatedRouter(&fakeUserRepo{users: map[string]*models.User{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
	}})

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "admin-1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionRoleIsLive(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Role: models.RoleUser},
	}}
	r := newGatedRouter(repo)
	token := signToken(t, "test-secret", "user-1")

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	// promotion applies without reissuing the token
	repo.users["user-1"].Role = models.RoleAdmin
	req = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
