package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "attest/pkg/domain"
	"attest/pkg/platform/sentinel"
)

// PostgresStore persists assignment records in the assignments table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const assignmentColumns = `id, policy_id, user_id, user_email, user_name, status,
	reminder_count, magic_link_token, created_at, due_at, viewed_at,
	acknowledged_at, declined_at, has_receipt`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		uuid.UUID(rec.ID), uuid.UUID(rec.PolicyID), uuid.UUID(rec.UserID),
		rec.UserEmail, rec.UserName, string(rec.Status),
		rec.ReminderCount, rec.MagicLinkToken, rec.CreatedAt, rec.DueAt,
		rec.ViewedAt, rec.AcknowledgedAt, rec.DeclinedAt, rec.HasReceipt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, assignmentID id.AssignmentID) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`,
		uuid.UUID(assignmentID))
	return scanRecord(row)
}

func (s *PostgresStore) GetByRecipient(ctx context.Context, policyID id.PolicyID, userID id.UserID) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+assignmentColumns+` FROM assignments WHERE policy_id = $1 AND user_id = $2`,
		uuid.UUID(policyID), uuid.UUID(userID))
	return scanRecord(row)
}

func (s *PostgresStore) Update(ctx context.Context, rec *Record) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assignments SET
			status = $2, reminder_count = $3, magic_link_token = $4,
			viewed_at = $5, acknowledged_at = $6, declined_at = $7, has_receipt = $8
		WHERE id = $1`,
		uuid.UUID(rec.ID), string(rec.Status), rec.ReminderCount, rec.MagicLinkToken,
		rec.ViewedAt, rec.AcknowledgedAt, rec.DeclinedAt, rec.HasReceipt,
	)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, assignmentID id.AssignmentID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assignments WHERE id = $1`, uuid.UUID(assignmentID))
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListByPolicy(ctx context.Context, policyID id.PolicyID, filter ListFilter) ([]*Record, int, error) {
	where := `WHERE policy_id = $1`
	args := []any{uuid.UUID(policyID)}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (user_name ILIKE $%d OR user_email ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assignments `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	query := `SELECT ` + assignmentColumns + ` FROM assignments ` + where + ` ORDER BY created_at, id`
	if filter.PerPage >= 1 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PerPage, (page-1)*filter.PerPage)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) ListUnfinished(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE status IN ('pending', 'sent', 'viewed')
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list unfinished assignments: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var assignmentID, policyID, userID uuid.UUID
	var status string
	var dueAt, viewedAt, acknowledgedAt, declinedAt sql.NullTime
	err := row.Scan(
		&assignmentID, &policyID, &userID, &rec.UserEmail, &rec.UserName, &status,
		&rec.ReminderCount, &rec.MagicLinkToken, &rec.CreatedAt, &dueAt, &viewedAt,
		&acknowledgedAt, &declinedAt, &rec.HasReceipt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan assignment: %w", err)
	}
	rec.ID = id.AssignmentID(assignmentID)
	rec.PolicyID = id.PolicyID(policyID)
	rec.UserID = id.UserID(userID)
	rec.Status = Status(status)
	rec.DueAt = timePtr(dueAt)
	rec.ViewedAt = timePtr(viewedAt)
	rec.AcknowledgedAt = timePtr(acknowledgedAt)
	rec.DeclinedAt = timePtr(declinedAt)
	return &rec, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
