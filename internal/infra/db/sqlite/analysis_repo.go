package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AnalysisRepository stores analyses in SQLite. created_at is kept as unix
// nanoseconds so ordering is exact.
type AnalysisRepository struct {
	db    *sql.DB
	clock clock
}

// NewAnalysisRepository wires the repo; a nil clock uses time.Now.
func NewAnalysisRepository(db *sql.DB, c clock) *AnalysisRepository {
	if c == nil {
		c = systemClock{}
	}
	return &AnalysisRepository{db: db, clock: c}
}

const selectColumns = `id, input_text, summary, title, topics, sentiment, keywords, created_at`

func (r *AnalysisRepository) CreateTable(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS analyses (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  input_text  TEXT NOT NULL,
  summary     TEXT,
  title       TEXT,
  topics      TEXT,
  sentiment   TEXT,
  keywords    TEXT,
  created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_sentiment_created
ON analyses(sentiment, created_at DESC);
`
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q)
		return err
	})
}

func (r *AnalysisRepository) DropTable(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS analyses`)
		return err
	})
}

// Save inserts one row and fills ID and CreatedAt after commit.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) (domain.ID, error) {
	topics, err := domain.EncodeList(a.Topics)
	if err != nil {
		return 0, err
	}
	keywords, err := domain.EncodeList(a.Keywords)
	if err != nil {
		return 0, err
	}
	created := r.clock.Now().UTC()

	const q = `
INSERT INTO analyses (input_text, summary, title, topics, sentiment, keywords, created_at)
VALUES (?,?,?,?,?,?,?)`

	var id int64
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, a.InputText, a.Summary, a.Title, topics, a.Sentiment, keywords, created.UnixNano())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("save analysis: %w", err)
	}

	a.ID = domain.ID(id)
	a.CreatedAt = created
	return a.ID, nil
}

// FindByKeyword matches the quoted keyword against the serialized list.
func (r *AnalysisRepository) FindByKeyword(ctx context.Context, keyword string) ([]*domain.Analysis, error) {
	const q = `
SELECT ` + selectColumns + `
FROM analyses
WHERE keywords LIKE ? ESCAPE '\'
ORDER BY created_at DESC, id DESC;`
	pattern := "%" + domain.EscapeLike(domain.KeywordPattern(keyword)) + "%"
	return r.query(ctx, q, pattern)
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
	out := []*domain.Analysis{}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAnalysis(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	return out, nil
}

// withTx runs fn in its own transaction; any error rolls back.
func (r *AnalysisRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func scanAnalysis(rows *sql.Rows) (*domain.Analysis, error) {
	var (
		a                                          domain.Analysis
		summary, title, topics, sentiment, keyword sql.NullString
		created                                    int64
	)
	if err := rows.Scan(&a.ID, &a.InputText, &summary, &title, &topics, &sentiment, &keyword, &created); err != nil {
		return nil, err
	}
	a.Summary = summary.String
	a.Title = title.String
	a.Sentiment = sentiment.String
	a.CreatedAt = time.Unix(0, created).UTC()

	var err error
	if a.Topics, err = domain.DecodeList(topics.String); err != nil {
		return nil, err
	}
	if a.Keywords, err = domain.DecodeList(keyword.String); err != nil {
		return nil, err
	}
	return &a, nil
}
