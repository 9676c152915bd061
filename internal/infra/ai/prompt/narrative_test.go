package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetNarrativePrompt(t *testing.T) {
	p := GetNarrativePrompt("Python is great for data science.")

	assert.Contains(t, p, `"""Python is great for data science."""`)
	for _, k := range []string{KeySummary, KeyTitle, KeyTopics, KeySentiment} {
		assert.Contains(t, p, `"`+k+`"`)
	}
	assert.Contains(t, p, "positive/neutral/negative")
}
