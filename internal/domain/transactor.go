package domain

import "context"

// Transactor runs fn inside one store transaction. Repositories called with the
// ctx passed to fn join that transaction; any error from fn rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
