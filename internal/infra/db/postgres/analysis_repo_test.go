package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

// setupRepo connects to POSTGRES_DSN and starts from an empty table.
func setupRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewAnalysisRepository(db)
	require.NoError(t, repo.DropTable(ctx))
	require.NoError(t, repo.CreateTable(ctx))
	t.Cleanup(func() { repo.DropTable(context.Background()) })
	return repo
}

func record(text, sentiment string, topics, keywords []string) *domain.Analysis {
	a := domain.New(text)
	a.Summary = "summary of " + text
	a.Title = "Title"
	a.Sentiment = sentiment
	a.Topics = topics
	a.Keywords = keywords
	return a
}

func save(t *testing.T, repo *AnalysisRepository, a *domain.Analysis) {
	t.Helper()
	_, err := repo.Save(context.Background(), a)
	require.NoError(t, err)
}

func TestRoundTrip_BothSearchPaths(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	a := record("round trip", "neutral", []string{"a", "b"}, []string{"x", "y", "z"})
	save(t, repo, a)
	assert.NotZero(t, a.ID)

	byKw, err := repo.FindByKeyword(ctx, "y")
	require.NoError(t, err)
	require.Len(t, byKw, 1)

	bySent, err := repo.FindBySentiment(ctx, "neutral")
	require.NoError(t, err)
	require.Len(t, bySent, 1)

	for _, got := range []*domain.Analysis{byKw[0], bySent[0]} {
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "round trip", got.InputText)
		assert.Equal(t, []string{"a", "b"}, got.Topics)
		assert.Equal(t, []string{"x", "y", "z"}, got.Keywords)
		assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	}
}

func TestFindByKeyword_QuotedAndLiteral(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	save(t, repo, record("py", "positive", nil, []string{"python", "café"}))

	got, err := repo.FindByKeyword(ctx, "python")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	for _, kw := range []string{"pyth", "%", "_", "py%", "pytho_", "Python", "cafe"} {
		got, err := repo.FindByKeyword(ctx, kw)
		require.NoError(t, err)
		assert.Empty(t, got, kw)
	}
}

func TestFindBySentiment_ExactAndMostRecentFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	for _, s := range []struct{ text, sentiment string }{
		{"first", "positive"},
		{"second", "negative"},
		{"third", "positive"},
		{"fourth", "Positive"},
		{"fifth", "positive"},
	} {
		save(t, repo, record(s.text, s.sentiment, nil, nil))
	}

	got, err := repo.FindBySentiment(ctx, "positive")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "fifth", got[0].InputText)
	assert.Equal(t, "third", got[1].InputText)
	assert.Equal(t, "first", got[2].InputText)
}

func TestEmptyListsDecodeToEmptySlices(t *testing.T) {
	repo := setupRepo(t)
	save(t, repo, record("empty", "neutral", nil, []string{}))

	got, err := repo.FindBySentiment(context.Background(), "neutral")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{}, got[0].Topics)
	assert.Equal(t, []string{}, got[0].Keywords)
}
