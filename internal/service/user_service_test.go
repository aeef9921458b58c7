package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
)

type stubUserReader struct {
	users  map[string]*models.User
	listed []models.UserWithRequestCount
	total  int
}

func (s *stubUserReader) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserReader) ListWithRequestCounts(_ context.Context) ([]models.UserWithRequestCount, error) {
	return s.listed, nil
}

func (s *stubUserReader) CountByRole(_ context.Context, _ models.UserRole) (int, error) {
	return s.total, nil
}

type stubUserRequestReader struct {
	requests []models.Request
	counts   map[models.RequestStatus]int
}

func (s *stubUserRequestReader) ListByUser(_ context.Context, _ string) ([]models.Request, error) {
	return s.requests, nil
}

func (s *stubUserRequestReader) CountByStatus(_ context.Context) (map[models.RequestStatus]int, error) {
	return s.counts, nil
}

func TestUserServiceGet(t *testing.T) {
	users := &stubUserReader{users: map[string]*models.User{
		"user-1": {ID: "user-1", Name: "Budi"},
	}}
	requests := &stubUserRequestReader{requests: []models.Request{{ID: "req-1", UserID: "user-1"}}}
	svc := NewUserService(users, requests, nil)

	detail, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", detail.Name)
	require.Len(t, detail.Requests, 1)
}

func TestUserServiceGetMissing(t *testing.T) {
	svc := NewUserService(&stubUserReader{users: map[string]*models.User{}}, &stubUserRequestReader{}, nil)

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestUserServiceStats(t *testing.T) {
	users := &stubUserReader{total: 12}
	requests := &stubUserRequestReader{counts: map[models.RequestStatus]int{
		models.StatusSubmitted:   3,
		models.StatusUnderReview: 2,
		models.StatusApproved:    1,
		models.StatusCompleted:   5,
		models.StatusRejected:    1,
	}}
	svc := NewUserService(users, requests, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 12, stats.TotalRequests)
	assert.Equal(t, 5, stats.PendingRequests, "pending covers SUBMITTED and UNDER_REVIEW")
	assert.Equal(t, 5, stats.CompletedRequests)
}
