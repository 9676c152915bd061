package keywords

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
)

// TaggedWord is one token with its Penn Treebank tag.
type TaggedWord struct {
	Word string
	Tag  string
}

// Tagger tokenizes and POS-tags text.
type Tagger interface {
	Tag(text string) ([]TaggedWord, error)
}

// Extractor picks the most frequent nouns of a text.
type Extractor struct {
	tagger Tagger
	limit  int
}

func NewExtractor(tagger Tagger) *Extractor {
	return &Extractor{tagger: tagger, limit: analysis.MaxKeywords}
}

// Extract returns up to three distinct lowercase nouns (NN, NNS, NNP, NNPS)
// by descending frequency. Ties keep the order of first appearance.
func (e *Extractor) Extract(text string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(text) == "" {
		return out, nil
	}

	tagged, err := e.tagger.Tag(strings.ToLower(text))
	if err != nil {
		return nil, fmt.Errorf("tag text: %w", err)
	}

	counts := map[string]int{}
	var order []string
	for _, tw := range tagged {
		if !isNoun(tw.Tag) {
			continue
		}
		w := strings.ToLower(strings.TrimSpace(tw.Word))
		if w == "" {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > e.limit {
		order = order[:e.limit]
	}
	return append(out, order...), nil
}

func isNoun(tag string) bool { return strings.HasPrefix(tag, "NN") }
