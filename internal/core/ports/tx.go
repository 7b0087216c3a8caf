package ports

import "context"

// TxManager runs fn inside a single unit of work. Repositories called with the
// context passed to fn join that unit of work; nested calls reuse it.
type TxManager interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}
