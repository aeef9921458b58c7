package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sit-transcript-api/internal/models"
)

// RequestRepository provides database access for transcript requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, user_id, course, purpose, type, status, source_link, excel_link, transcript_key, transcript_url, file_size, created_at, updated_at, under_review_at, approved_at, completed_at`

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO requests (id, user_id, course, purpose, type, status, created_at, updated_at) VALUES (:id, :user_id, :course, :purpose, :type, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1 LIMIT 1`, requestColumns)
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

// FindByIDForUser returns a request only when owned by the given user. The
// ownership check is folded into the lookup predicate so a foreign id is
// indistinguishable from a missing one.
func (r *RequestRepository) FindByIDForUser(ctx context.Context, id, userID string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1 AND user_id = $2 LIMIT 1`, requestColumns)
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request for user: %w", err)
	}
	return &req, nil
}

// ListByUser returns all requests owned by a user, newest first.
func (r *RequestRepository) ListByUser(ctx context.Context, userID string) ([]models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE user_id = $1 ORDER BY created_at DESC`, requestColumns)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, fmt.Errorf("list requests by user: %w", err)
	}
	return requests, nil
}

const requestOwnerColumns = `r.id, r.user_id, r.course, r.purpose, r.type, r.status, r.source_link, r.excel_link, r.transcript_key, r.transcript_url, r.file_size, r.created_at, r.updated_at, r.under_review_at, r.approved_at, r.completed_at,
u.name AS owner_name, u.nim AS owner_nim, u.email AS owner_email`

// ListAllWithOwner returns every request joined with its owner's identity.
func (r *RequestRepository) ListAllWithOwner(ctx context.Context) ([]models.RequestWithOwner, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests r JOIN users u ON u.id = r.user_id ORDER BY r.created_at DESC`, requestOwnerColumns)
	var requests []models.RequestWithOwner
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list all requests: %w", err)
	}
	return requests, nil
}

// FindByIDWithOwner returns any request with its owner's identity.
func (r *RequestRepository) FindByIDWithOwner(ctx context.Context, id string) (*models.RequestWithOwner, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests r JOIN users u ON u.id = r.user_id WHERE r.id = $1 LIMIT 1`, requestOwnerColumns)
	var req models.RequestWithOwner
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request with owner: %w", err)
	}
	return &req, nil
}

// Update writes the mutable fields of a request as a single-row update.
// Concurrency control beyond row-level locking is deliberately absent:
// last write wins.
func (r *RequestRepository) Update(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE requests SET status = :status, source_link = :source_link, excel_link = :excel_link, transcript_key = :transcript_key, transcript_url = :transcript_url, file_size = :file_size, updated_at = :updated_at, under_review_at = :under_review_at, approved_at = :approved_at, completed_at = :completed_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

// CountByStatus returns request totals grouped by status.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM requests GROUP BY status`
	rows := []struct {
		Status models.RequestStatus `db:"status"`
		Total  int                  `db:"total"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	counts := make(map[models.RequestStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
