package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

// SubmissionRepository stores the audit trail of forwarded prize submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts an audit record and fills its ID and CreatedAt.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := `INSERT INTO prize_submissions
	            (submission_id, session_id, site_name, username, payload, status, http_status, error_message)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
	          RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query,
		s.SubmissionID, s.SessionID, s.SiteName, s.Username,
		string(s.Payload), s.Status, s.HTTPStatus, s.ErrorMessage,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetBySubmissionID returns one audit record, or utils.ErrSubmissionNotFound.
func (r *SubmissionRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Submission, error) {
	query := `SELECT id, submission_id, session_id, site_name, username, payload, status, http_status, error_message, created_at
	          FROM prize_submissions WHERE submission_id = $1`

	var s models.Submission
	if err := r.db.GetContext(ctx, &s, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &s, nil
}
