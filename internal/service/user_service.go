package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
)

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListWithRequestCounts(ctx context.Context) ([]models.UserWithRequestCount, error)
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type userRequestReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Request, error)
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error)
}

// UserDetail combines a user with their request history for the admin view.
type UserDetail struct {
	models.User
	Requests []models.Request `json:"requests"`
}

// UserService serves the admin user directory.
type UserService struct {
	users    userReader
	requests userRequestReader
	logger   *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userReader, requests userRequestReader, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, requests: requests, logger: logger}
}

// List returns all users with their request counts, newest first.
func (s *UserService) List(ctx context.Context) ([]models.UserWithRequestCount, error) {
	users, err := s.users.ListWithRequestCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Get returns one user together with their requests.
func (s *UserService) Get(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	requests, err := s.requests.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list user requests")
	}
	return &UserDetail{User: *user, Requests: requests}, nil
}

// Stats aggregates totals for the admin dashboard. Pending counts requests
// still waiting on either party (SUBMITTED or UNDER_REVIEW).
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	totalUsers, err := s.users.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count requests")
	}

	stats := &models.UserStats{TotalUsers: totalUsers}
	for status, total := range counts {
		stats.TotalRequests += total
		switch status {
		case models.StatusSubmitted, models.StatusUnderReview:
			stats.PendingRequests += total
		case models.StatusCompleted:
			stats.CompletedRequests += total
		}
	}
	return stats, nil
}
