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
// Repository methods accept `tx Tx` so use-case interfaces stay free of
// storage types; the concrete handle is infra-defined (pgx.Tx for Postgres)
// and implementations must gracefully accept nil (non-transactional path).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error

	// WithMembershipTx runs fn in a transaction that holds a per-membership
	// advisory lock, serializing conflicting mutations to the same membership.
	WithMembershipTx(ctx context.Context, membershipID string, fn func(ctx context.Context, tx Tx) error) error
}
