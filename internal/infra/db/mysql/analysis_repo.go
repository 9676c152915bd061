package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectColumns = `id, input_text, summary, title, topics, sentiment, keywords, created_at`

func (r *AnalysisRepository) CreateTable(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analyses (
  id          BIGINT AUTO_INCREMENT PRIMARY KEY,
  input_text  LONGTEXT NOT NULL,
  summary     TEXT,
  title       TEXT,
  topics      TEXT,
  sentiment   VARCHAR(32) COLLATE utf8mb4_bin,
  keywords    TEXT COLLATE utf8mb4_bin,
  created_at  DATETIME(6) NOT NULL,
  INDEX idx_analyses_sentiment_created (sentiment, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *AnalysisRepository) DropTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS analyses`)
	return err
}

// Save inserts an analysis record inside its own transaction
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) (domain.ID, error) {
	topics, err := domain.EncodeList(a.Topics)
	if err != nil {
		return 0, err
	}
	keywords, err := domain.EncodeList(a.Keywords)
	if err != nil {
		return 0, err
	}
	created := time.Now().UTC().Truncate(time.Microsecond)

	const q = `
INSERT INTO analyses (input_text, summary, title, topics, sentiment, keywords, created_at)
VALUES (?,?,?,?,?,?,?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, q, a.InputText, a.Summary, a.Title, topics, a.Sentiment, keywords, created)
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	a.ID = domain.ID(id)
	a.CreatedAt = created
	return a.ID, nil
}

// FindByKeyword uses MySQL's default backslash LIKE escape
func (r *AnalysisRepository) FindByKeyword(ctx context.Context, keyword string) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + selectColumns + `
FROM analyses
WHERE keywords LIKE ?
ORDER BY created_at DESC, id DESC;`
	return r.query(ctx, q, "%"+domain.EscapeLike(domain.KeywordPattern(keyword))+"%")
}

func (r *AnalysisRepository) FindBySentiment(ctx context.Context, sentiment string) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + selectColumns + `
FROM analyses
WHERE sentiment = ?
ORDER BY created_at DESC, id DESC;`
	return r.query(ctx, q, sentiment)
}

func (r *AnalysisRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Analysis{}
	for rows.Next() {
		var a domain.Analysis
		var summary, title, topics, sentiment, keywords sql.NullString
		if err := rows.Scan(&a.ID, &a.InputText, &summary, &title, &topics, &sentiment, &keywords, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		a.Summary, a.Title, a.Sentiment = summary.String, title.String, sentiment.String
		if a.Topics, err = domain.DecodeList(topics.String); err != nil {
			return nil, err
		}
		if a.Keywords, err = domain.DecodeList(keywords.String); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
