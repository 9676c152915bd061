package analysis

import "context"

// Repository port untuk persistence Analysis
type Repository interface {
	// CreateTable is idempotent.
	CreateTable(ctx context.Context) error
	// DropTable removes the table; reset and tests only.
	DropTable(ctx context.Context) error

	Save(ctx context.Context, a *Analysis) (ID, error)
	FindByKeyword(ctx context.Context, keyword string) ([]*Analysis, error)
	FindBySentiment(ctx context.Context, sentiment string) ([]*Analysis, error)
}
