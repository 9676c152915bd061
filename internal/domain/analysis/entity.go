package analysis

import "time"

// ID assigned by the store on insert
type ID int64

// Sentiment values requested from the model. The store does not enforce them.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// MaxKeywords is the upper bound on Keywords per record.
const MaxKeywords = 3

// Analysis is one persisted result of POST /analyze.
// ID and CreatedAt are zero until the record has been saved.
type Analysis struct {
	ID        ID        `json:"id"`
	InputText string    `json:"input_text"`
	Summary   string    `json:"summary"`
	Title     string    `json:"title"`
	Topics    []string  `json:"topics"`
	Sentiment string    `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
}

// New returns a record with every field defaulted, ready to be filled and saved.
func New(inputText string) *Analysis {
	return &Analysis{
		InputText: inputText,
		Topics:    []string{},
		Keywords:  []string{},
	}
}

// Saved reports whether the store has assigned an id.
func (a *Analysis) Saved() bool { return a.ID != 0 }
