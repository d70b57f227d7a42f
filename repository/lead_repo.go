package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"next_read/models"
)

const createLeadTable = `
CREATE TABLE IF NOT EXISTS lead_submissions (
	id                CHAR(36)     NOT NULL PRIMARY KEY,
	email             VARCHAR(320) NOT NULL,
	suggested_article VARCHAR(512) NOT NULL,
	subscribed        TINYINT(1)   NOT NULL DEFAULT 0,
	status            VARCHAR(16)  NOT NULL,
	detail            VARCHAR(512) NOT NULL DEFAULT '',
	created_at        DATETIME     NOT NULL,
	KEY idx_lead_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// LeadStore 线索投递日志（lead_submissions 表）
type LeadStore struct {
	db *sql.DB
}

// NewLeadStore wraps an open connection pool.
func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

// EnsureSchema 创建 lead_submissions 表（如不存在）
func (s *LeadStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createLeadTable); err != nil {
		return fmt.Errorf("create lead_submissions: %w", err)
	}
	return nil
}

// SaveLead inserts one delivery record.
func (s *LeadStore) SaveLead(ctx context.Context, rec models.LeadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lead_submissions (id, email, suggested_article, subscribed, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Email, rec.SuggestedArticle, rec.Subscribed, rec.Status, truncate(rec.Detail, 512), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w", rec.ID, err)
	}
	return nil
}

// PurgeLeadsBefore 删除早于 cutoff 的记录，返回删除行数
func (s *LeadStore) PurgeLeadsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lead_submissions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge leads: %w", err)
	}
	return res.RowsAffected()
}

// CountByStatus returns delivered/failed counts for records created at or after since.
func (s *LeadStore) CountByStatus(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM lead_submissions
		WHERE created_at >= ?
		GROUP BY status
	`, since)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
