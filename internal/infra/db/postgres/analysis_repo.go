package postgres

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
  id          BIGSERIAL PRIMARY KEY,
  input_text  TEXT NOT NULL,
  summary     TEXT,
  title       TEXT,
  topics      TEXT,
  sentiment   TEXT,
  keywords    TEXT,
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_sentiment_created ON analyses (sentiment, created_at DESC);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *AnalysisRepository) DropTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS analyses`)
	return err
}

// Save inserts one row; the id comes back through RETURNING
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
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id;`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	if err := tx.QueryRowContext(ctx, q, a.InputText, a.Summary, a.Title, topics, a.Sentiment, keywords, created).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	a.ID = domain.ID(id)
	a.CreatedAt = created
	return a.ID, nil
}

func (r *AnalysisRepository) FindByKeyword(ctx context.Context, keyword string) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + selectColumns + `
FROM analyses
WHERE keywords LIKE $1 ESCAPE '\'
ORDER BY created_at DESC, id DESC;`
	return r.query(ctx, q, "%"+domain.EscapeLike(domain.KeywordPattern(keyword))+"%")
}

func (r *AnalysisRepository) FindBySentiment(ctx context.Context, sentiment string) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + selectColumns + `
FROM analyses
WHERE sentiment = $1
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
