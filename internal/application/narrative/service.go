package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/knowledge-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/knowledge-analyzer/internal/infra/ai/prompt"
)

const (
	ErrParseFailed     = "Failed to parse JSON response"
	ErrUnexpectedShape = "Unexpected JSON response shape"
)

// Failure is returned instead of fields when the model reply is unusable.
type Failure struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
}

// Narrative holds either the decoded model object or a Failure, never both.
type Narrative struct {
	Fields  map[string]any
	Failure *Failure
}

func (n Narrative) Failed() bool { return n.Failure != nil }

func (n Narrative) Summary() string   { return stringField(n.Fields, prompt.KeySummary) }
func (n Narrative) Title() string     { return stringField(n.Fields, prompt.KeyTitle) }
func (n Narrative) Sentiment() string { return stringField(n.Fields, prompt.KeySentiment) }

// KeyTopics returns the string items of key_topics in order; anything else is skipped.
func (n Narrative) KeyTopics() []string {
	out := []string{}
	items, _ := n.Fields[prompt.KeyTopics].([]any)
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

// Analyze asks the model once and decodes its reply. Transport errors are
// returned as-is; an undecodable reply is a Failure, not an error.
func (s *Service) Analyze(ctx context.Context, text string) (Narrative, error) {
	content, err := s.client.Analyze(ctx, text)
	if err != nil {
		return Narrative{}, err
	}
	return Parse(content), nil
}

// Parse decodes a model reply without validating its keys. Numbers stay
// json.Number so they are echoed back exactly. An object carrying an "error"
// key is a Failure with that value as its message.
func Parse(content string) Narrative {
	v, err := decode(content)
	if err != nil {
		return Narrative{Failure: &Failure{Error: ErrParseFailed, RawResponse: content}}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Narrative{Failure: &Failure{Error: ErrUnexpectedShape, RawResponse: content}}
	}
	if msg, ok := obj[keyError]; ok {
		return Narrative{Failure: &Failure{Error: errorMessage(msg), RawResponse: content}}
	}
	return Narrative{Fields: obj}
}

const keyError = "error"

func decode(content string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(content)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// trailing data after the first value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func errorMessage(v any) string {
	if m, ok := v.(string); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ErrUnexpectedShape
	}
	return string(b)
}
