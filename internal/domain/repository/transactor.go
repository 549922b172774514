package repository

import "context"

// Transactor runs fn inside one store transaction. Repositories called with
// the context handed to fn take part in that transaction. A nested call joins
// the outer transaction instead of opening a new one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
