package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

// stepClock advances one second per call so insertion order is creation order.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Connect(ctx, filepath.Join(t.TempDir(), "knowledge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewAnalysisRepository(db, &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, repo.CreateTable(ctx))
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

func TestSave_AssignsIDAndCreatedAt(t *testing.T) {
	repo := setupRepo(t)
	a := record("one", "positive", []string{"a"}, []string{"x"})

	id, err := repo.Save(context.Background(), a)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	b := record("two", "positive", nil, nil)
	id2, err := repo.Save(context.Background(), b)
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestRoundTrip_BothSearchPaths(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	a := record("round trip", "neutral", []string{"a", "b"}, []string{"x", "y", "z"})
	_, err := repo.Save(ctx, a)
	require.NoError(t, err)

	byKw, err := repo.FindByKeyword(ctx, "y")
	require.NoError(t, err)
	require.Len(t, byKw, 1)

	bySent, err := repo.FindBySentiment(ctx, "neutral")
	require.NoError(t, err)
	require.Len(t, bySent, 1)

	for _, got := range []*domain.Analysis{byKw[0], bySent[0]} {
		assert.Equal(t, a.ID, got.ID)
		assert.Equal(t, "round trip", got.InputText)
		assert.Equal(t, "summary of round trip", got.Summary)
		assert.Equal(t, "Title", got.Title)
		assert.Equal(t, []string{"a", "b"}, got.Topics)
		assert.Equal(t, []string{"x", "y", "z"}, got.Keywords)
		assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	}
}

func TestFindByKeyword_QuotedSubstring(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, record("py", "positive", nil, []string{"python", "programming", "language"}))
	require.NoError(t, err)
	_, err = repo.Save(ctx, record("java", "negative", nil, []string{"java"}))
	require.NoError(t, err)

	got, err := repo.FindByKeyword(ctx, "python")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "py", got[0].InputText)

	got, err = repo.FindByKeyword(ctx, "java")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "java", got[0].InputText)

	// partial words do not match the quoted form
	got, err = repo.FindByKeyword(ctx, "pyth")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindByKeyword_WildcardsAreLiteral(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, record("x", "positive", nil, []string{"python"}))
	require.NoError(t, err)

	for _, kw := range []string{"%", "_", "py%", "pytho_"} {
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
		_, err := repo.Save(ctx, record(s.text, s.sentiment, nil, nil))
		require.NoError(t, err)
	}

	got, err := repo.FindBySentiment(ctx, "positive")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "fifth", got[0].InputText)
	assert.Equal(t, "third", got[1].InputText)
	assert.Equal(t, "first", got[2].InputText)
	for _, a := range got {
		assert.Equal(t, "positive", a.Sentiment)
	}

	none, err := repo.FindBySentiment(ctx, "angry")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEmptyListsDecodeToEmptySlices(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, record("empty", "neutral", nil, []string{}))
	require.NoError(t, err)

	got, err := repo.FindBySentiment(ctx, "neutral")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Topics)
	assert.Empty(t, got[0].Topics)
	assert.NotNil(t, got[0].Keywords)
	assert.Empty(t, got[0].Keywords)
}

func TestNullColumnsDecode(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO analyses (input_text, sentiment, created_at) VALUES (?, ?, ?)`,
		"legacy", "neutral", time.Now().UnixNano())
	require.NoError(t, err)

	got, err := repo.FindBySentiment(ctx, "neutral")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Summary)
	assert.Equal(t, "", got[0].Title)
	assert.Equal(t, []string{}, got[0].Topics)
	assert.Equal(t, []string{}, got[0].Keywords)
}

func TestCreateTable_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, record("keep", "positive", nil, []string{"keep"}))
	require.NoError(t, err)

	require.NoError(t, repo.CreateTable(ctx))

	got, err := repo.FindByKeyword(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDropTable(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	_, err := repo.Save(ctx, record("gone", "positive", nil, nil))
	require.NoError(t, err)

	require.NoError(t, repo.DropTable(ctx))
	_, err = repo.FindBySentiment(ctx, "positive")
	assert.Error(t, err)

	require.NoError(t, repo.CreateTable(ctx))
	got, err := repo.FindBySentiment(ctx, "positive")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSave_FailureLeavesRecordUnsaved(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.DropTable(ctx))

	a := record("nowhere", "positive", nil, nil)
	_, err := repo.Save(ctx, a)
	require.Error(t, err)
	assert.False(t, a.Saved())
	assert.True(t, a.CreatedAt.IsZero())
}
