package ai

import "context"

// Client sends text to the language model and returns the raw reply content.
type Client interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// RawArchive keeps model replies that could not be parsed, for diagnostics.
type RawArchive interface {
	Archive(ctx context.Context, raw string) (string, error)
}
