package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	repo "github.com/momo-analytics/momo-backend/internal/repository"
)

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type Repositories struct {
	Transactions repo.Transactions
	IngestRuns   repo.IngestRuns
}

// NewRepositories wires every repository to one pool. zone is the time zone
// used for calendar-date filters and monthly buckets.
func NewRepositories(db DB, log *slog.Logger, zone string) Repositories {
	return Repositories{
		Transactions: NewTransactions(db, log, zone),
		IngestRuns:   &ingestRunsRepo{db: db},
	}
}
