package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repositories accept a Tx and detect it implementation-side (e.g. pgx.Tx for
// Postgres) to run SELECT ... FOR UPDATE or tx-bound Exec/Query. They MUST
// gracefully accept NoTX for the non-transactional path.
//
// All cross-entity invariants (Property <-> Promotion <-> Payment) are
// enforced via these transaction boundaries, not external locks.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
