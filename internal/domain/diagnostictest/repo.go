package diagnostictest

import "context"

// Repository persists diagnostic tests. Implementations return errors
// classified through db.Classify; a missing id is a db.KindNotFound error.
type Repository interface {
	Create(ctx context.Context, t *DiagnosticTest) error
	GetByID(ctx context.Context, id int64) (*DiagnosticTest, error)
	Update(ctx context.Context, t *DiagnosticTest) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*DiagnosticTest, error)
	Count(ctx context.Context) (int64, error)
	First(ctx context.Context) (*DiagnosticTest, error)
	Ping(ctx context.Context) error
}
