// Package records persists scored assessments and the blog approval audit
// trail in PostgreSQL.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/content"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessment_results (
	id             UUID PRIMARY KEY,
	assessment     TEXT NOT NULL,
	age            INTEGER NOT NULL,
	gender         TEXT NOT NULL DEFAULT '',
	overall_score  DOUBLE PRECISION NOT NULL,
	severity       TEXT NOT NULL,
	result         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_log (
	id             BIGSERIAL PRIMARY KEY,
	event_type     TEXT NOT NULL,
	resource_type  TEXT NOT NULL,
	resource_id    TEXT NOT NULL,
	details        JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);`

const defaultRecentLimit = 50

// Record is a stored assessment outcome.
type Record struct {
	ID           string            `json:"id"`
	Assessment   string            `json:"assessment"`
	Age          int               `json:"age"`
	Gender       string            `json:"gender,omitempty"`
	OverallScore float64           `json:"overallScore"`
	Severity     assessment.Band   `json:"severity"`
	Result       assessment.Result `json:"result"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Store writes to the assessment_results and audit_log tables.
type Store struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

var _ content.AuditRecorder = (*Store)(nil)

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.WithFields(map[string]interface{}{"component": "records"}),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the tables when they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.NewQueryExecutionFailedError("create_schema", err)
	}
	return nil
}

// SaveResult stores a scored submission and returns the new record id.
func (s *Store) SaveResult(ctx context.Context, sub assessment.Submission, result *assessment.Result) (string, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", errors.NewInternalError("failed to encode assessment result", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessment_results (
			id, assessment, age, gender, overall_score, severity, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id,
		result.Assessment,
		sub.Age,
		sub.Gender,
		result.OverallScore,
		string(result.OverallSeverity),
		resultJSON,
		s.now(),
	)
	if err != nil {
		return "", errors.NewDatabaseInsertFailedError(err)
	}

	s.log.Debug("assessment result stored", map[string]interface{}{
		"recordId":   id,
		"assessment": result.Assessment,
		"severity":   result.OverallSeverity,
	})
	return id, nil
}

// Recent returns the newest records first. A non-positive limit uses the default.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, assessment, age, gender, overall_score, severity, result, created_at
		FROM assessment_results
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("select_recent", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r          Record
			severity   string
			resultJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.Assessment, &r.Age, &r.Gender, &r.OverallScore, &severity, &resultJSON, &r.CreatedAt); err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan_recent", err)
		}
		r.Severity = assessment.Band(severity)
		if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
			s.log.Warn("stored assessment result is not valid JSON", map[string]interface{}{
				"recordId": r.ID,
				"error":    err,
			})
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("select_recent", err)
	}
	return records, nil
}

// RecordApproval appends a blog_post_approved event to the audit log.
func (s *Store) RecordApproval(ctx context.Context, filename, actor string) error {
	details, err := json.Marshal(map[string]interface{}{"actor": actor})
	if err != nil {
		details = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"blog_post_approved",
		"blog_post",
		filename,
		details,
		s.now(),
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
