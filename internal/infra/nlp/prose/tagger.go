package prose

import (
	"fmt"
	"sync"

	"github.com/jdkato/prose/v2"

	"github.com/bryanwahyu/knowledge-analyzer/internal/application/keywords"
)

const probe = "the tagger reads this sentence"

// Tagger runs the prose averaged-perceptron tagger over whole texts.
// Sentence segmentation and entity extraction are disabled.
type Tagger struct {
	once    sync.Once
	loadErr error
}

func NewTagger() *Tagger { return &Tagger{} }

// Load decodes the embedded tagging model once by tagging a probe sentence.
// Later calls return the first result.
func (t *Tagger) Load() error {
	t.once.Do(func() {
		toks, err := t.tag(probe)
		if err != nil {
			t.loadErr = fmt.Errorf("load pos model: %w", err)
			return
		}
		if len(toks) == 0 {
			t.loadErr = fmt.Errorf("load pos model: probe produced no tokens")
		}
	})
	return t.loadErr
}

func (t *Tagger) Tag(text string) ([]keywords.TaggedWord, error) {
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t.tag(text)
}

func (t *Tagger) tag(text string) ([]keywords.TaggedWord, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	toks := doc.Tokens()
	out := make([]keywords.TaggedWord, 0, len(toks))
	for _, tok := range toks {
		out = append(out, keywords.TaggedWord{Word: tok.Text, Tag: tok.Tag})
	}
	return out, nil
}
