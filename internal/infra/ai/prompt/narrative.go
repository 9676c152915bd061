package prompt

import "fmt"

// Keys the model is asked to return.
const (
	KeySummary   = "summary"
	KeyTitle     = "title"
	KeyTopics    = "key_topics"
	KeySentiment = "sentiment"
)

const narrativeTemplate = `Analyze the following text and return a JSON response with exactly this format:
{
  "summary": "1-2 sentence summary here",
  "title": "title if available, or null",
  "key_topics": ["topic1", "topic2", "topic3"],
  "sentiment": "positive/neutral/negative"
}

Text:
"""%s"""
`

// GetNarrativePrompt builds the single user message sent for one analysis.
func GetNarrativePrompt(text string) string {
	return fmt.Sprintf(narrativeTemplate, text)
}
