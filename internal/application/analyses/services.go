package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/knowledge-analyzer/internal/application/narrative"
	"github.com/bryanwahyu/knowledge-analyzer/internal/domain/ai"
	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

// ErrNoSearchCriteria is returned by Search when neither filter is given.
var ErrNoSearchCriteria = errors.New("No keyword or sentiment provided")

// NarrativeAnalyzer asks the model for summary, title, key_topics and sentiment.
type NarrativeAnalyzer interface {
	Analyze(ctx context.Context, text string) (narrative.Narrative, error)
}

// KeywordExtractor picks the top nouns of a text.
type KeywordExtractor interface {
	Extract(text string) ([]string, error)
}

// Service implements use-cases untuk Analysis. Archive and Log are optional.
type Service struct {
	Narrative         NarrativeAnalyzer
	Keywords          KeywordExtractor
	Repo              domain.Repository
	Archive           ai.RawArchive
	Log               logrus.FieldLogger
	IncludeAnalysisID bool
}

// AnalyzeResult is what POST /analyze answers with.
// Record is nil when the model reply could not be used.
type AnalyzeResult struct {
	Response map[string]any
	Record   *domain.Analysis
	Failure  *narrative.Failure
}

// Analyze runs model analysis, keyword extraction and persistence in that order.
// An unusable model reply (not JSON, not an object, or carrying "error")
// stops before extraction and is not an error.
func (s *Service) Analyze(ctx context.Context, text string) (AnalyzeResult, error) {
	n, err := s.Narrative.Analyze(ctx, text)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("narrative analysis: %w", err)
	}
	if n.Failed() {
		s.keepRaw(ctx, n.Failure)
		return AnalyzeResult{
			Response: map[string]any{"error": n.Failure.Error},
			Failure:  n.Failure,
		}, nil
	}

	keywords, err := s.Keywords.Extract(text)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("keyword extraction: %w", err)
	}

	rec := domain.New(text)
	rec.Summary = n.Summary()
	rec.Title = n.Title()
	rec.Topics = n.KeyTopics()
	rec.Sentiment = n.Sentiment()
	rec.Keywords = keywords

	id, err := s.Repo.Save(ctx, rec)
	if err != nil {
		return AnalyzeResult{}, err
	}
	s.logger().WithFields(logrus.Fields{
		"analysis_id": id,
		"sentiment":   rec.Sentiment,
		"keywords":    strings.Join(keywords, ","),
	}).Info("analysis saved")

	resp := make(map[string]any, len(n.Fields)+2)
	for k, v := range n.Fields {
		resp[k] = v
	}
	resp["keywords"] = keywords
	if s.IncludeAnalysisID {
		resp["analysis_id"] = id
	}
	return AnalyzeResult{Response: resp, Record: rec}, nil
}

func (s *Service) keepRaw(ctx context.Context, f *narrative.Failure) {
	log := s.logger().WithField("raw_bytes", len(f.RawResponse))
	if s.Archive == nil {
		log.WithField("raw_response", f.RawResponse).Warn(f.Error)
		return
	}
	url, err := s.Archive.Archive(ctx, f.RawResponse)
	if err != nil {
		log.WithError(err).WithField("raw_response", f.RawResponse).Warn("archive raw response failed")
		return
	}
	log.WithField("archive_url", url).Warn(f.Error)
}

// SearchQuery holds the optional /search filters. Keyword wins when both are set.
type SearchQuery struct {
	Keyword   string
	Sentiment string
}

// Search dispatches to the keyword or sentiment lookup.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*domain.Analysis, error) {
	kw := strings.TrimSpace(q.Keyword)
	if kw != "" {
		// stored keywords are always lowercase
		return s.Repo.FindByKeyword(ctx, strings.ToLower(kw))
	}
	if sen := strings.TrimSpace(q.Sentiment); sen != "" {
		return s.Repo.FindBySentiment(ctx, sen)
	}
	return nil, ErrNoSearchCriteria
}

func (s *Service) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
