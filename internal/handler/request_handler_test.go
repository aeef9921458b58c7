package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/middleware"
	"github.com/noah-isme/sit-transcript-api/internal/models"
	"github.com/noah-isme/sit-transcript-api/internal/service"
	"github.com/noah-isme/sit-transcript-api/pkg/storage"
)

type memoryRequestRepo struct {
	requests map[string]*models.Request
}

func (m *memoryRequestRepo) Create(_ context.Context, req *models.Request) error {
	m.requests[req.ID] = req
	return nil
}

func (m *memoryRequestRepo) FindByID(_ context.Context, id string) (*models.Request, error) {
	if req, ok := m.requests[id]; ok {
		clone := *req
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRequestRepo) FindByIDForUser(_ context.Context, id, userID string) (*models.Request, error) {
	if req, ok := m.requests[id]; ok && req.UserID == userID {
		clone := *req
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryRequestRepo) ListByUser(_ context.Context, userID string) ([]models.Request, error) {
	var out []models.Request
	for _, req := range m.requests {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *memoryRequestRepo) ListAllWithOwner(_ context.Context) ([]models.RequestWithOwner, error) {
	return nil, nil
}

func (m *memoryRequestRepo) FindByIDWithOwner(_ context.Context, _ string) (*models.RequestWithOwner, error) {
	return nil, sql.ErrNoRows
}

func (m *memoryRequestRepo) Update(_ context.Context, req *models.Request) error {
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

func (m *memoryStore) Open(key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	return io.NopCloser(bytes.NewReader(data)), &storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: "application/pdf"}, nil
}

func (m *memoryStore) Delete(key string) error {
	delete(m.objects, key)
	return nil
}

func newRequestTestRouter(user *models.User, repo *memoryRequestRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := &memoryStore{objects: map[string][]byte{}}
	svc := service.NewRequestService(repo, store, nil, nil, service.RequestServiceConfig{DownloadBasePath: "/api/v1/requests"})
	h := NewRequestHandler(svc, 1024)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
	})
	r.POST("/requests/:id/upload-excel", h.UploadExcel)
	r.POST("/requests/:id/upload-transcript", h.UploadTranscript)
	r.GET("/requests/:id/download", h.Download)
	return r
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadExcelHandler(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleUser}
	repo := &memoryRequestRepo{requests: map[string]*models.Request{
		"req-1": {ID: "req-1", UserID: "user-1", Status: models.StatusUnderReview},
	}}
	r := newRequestTestRouter(user, repo)

	body, contentType := multipartBody(t, "grades.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK\x03\x04"))
	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/upload-excel", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusApproved, repo.requests["req-1"].Status)
}

func TestUploadExcelHandlerRejectsWrongType(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleUser}
	repo := &memoryRequestRepo{requests: map[string]*models.Request{
		"req-1": {ID: "req-1", UserID: "user-1", Status: models.StatusUnderReview},
	}}
	r := newRequestTestRouter(user, repo)

	body, contentType := multipartBody(t, "photo.png", "image/png", []byte("not a sheet"))
	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/upload-excel", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")
	assert.Equal(t, models.StatusUnderReview, repo.requests["req-1"].Status)
}

func TestUploadHandlerRejectsMissingFile(t *testing.T) {
	user := &models.User{ID: "admin-1", Role: models.RoleAdmin}
	repo := &memoryRequestRepo{requests: map[string]*models.Request{
		"req-1": {ID: "req-1", UserID: "user-1", Status: models.StatusApproved},
	}}
	r := newRequestTestRouter(user, repo)

	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/upload-transcript", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadHandlerStreamsTranscript(t *testing.T) {
	admin := &models.User{ID: "admin-1", Role: models.RoleAdmin}
	repo := &memoryRequestRepo{requests: map[string]*models.Request{
		"req-1": {ID: "req-1", UserID: "user-1", Status: models.StatusApproved},
	}}
	r := newRequestTestRouter(admin, repo)

	body, contentType := multipartBody(t, "transcript.pdf", "application/pdf", []byte("%PDF"))
	upload := httptest.NewRequest(http.MethodPost, "/requests/req-1/upload-transcript", body)
	upload.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, upload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	download := httptest.NewRequest(http.MethodGet, "/requests/req-1/download", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, download)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("%PDF"), w.Body.Bytes())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}
