package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/momo-analytics/momo-backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAllTablesFailed is returned when every table of a cross-table scan failed.
	ErrAllTablesFailed = errors.New("all tables failed")
)

// BatchError reports the row that aborted an atomic insert batch.
type BatchError struct {
	Index       int
	Transaction models.NormalizedTransaction
	Err         error
}

func (e *BatchError) Error() string {
	id := "<none>"
	if e.Transaction.TransactionID != nil {
		id = *e.Transaction.TransactionID
	}
	return fmt.Sprintf("insert %d (%s, transactionId=%s, amount=%s): %v",
		e.Index, e.Transaction.Type, id, e.Transaction.Amount, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type Transactions interface {
	// InsertBatch stores all rows in one database transaction or none of them.
	InsertBatch(ctx context.Context, txns []models.NormalizedTransaction) ([]models.StoredTransaction, error)
	// List pages one table when f.Type is set, otherwise the union of all tables.
	List(ctx context.Context, f models.QueryFilter, p models.Page) (models.PageResult, error)
	Stats(ctx context.Context, f models.QueryFilter) (models.Stats, error)
	// Get searches the hinted table, or every table in models.AllTypes order,
	// by storage id or external transactionId.
	Get(ctx context.Context, id string, hint *models.TransactionType) (models.StoredTransaction, error)
}

type IngestRuns interface {
	Create(ctx context.Context, run models.IngestRun) error
}
