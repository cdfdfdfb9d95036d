package postgres

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/momo-analytics/momo-backend/internal/metrics"
	"github.com/momo-analytics/momo-backend/internal/models"
	"github.com/momo-analytics/momo-backend/internal/repository"
)

type transactionsRepo struct {
	db   DB
	log  *slog.Logger
	zone string
}

func NewTransactions(db DB, log *slog.Logger, zone string) repository.Transactions {
	if log == nil {
		log = slog.Default()
	}
	if zone == "" {
		zone = "UTC"
	}
	return &transactionsRepo{db: db, log: log, zone: zone}
}

func (r *transactionsRepo) InsertBatch(ctx context.Context, txns []models.NormalizedTransaction) ([]models.StoredTransaction, error) {
	if len(txns) == 0 {
		return nil, nil
	}
	out := make([]models.StoredTransaction, 0, len(txns))
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		for i, txn := range txns {
			if _, ok := tableColumns[txn.Type]; !ok {
				return &repository.BatchError{Index: i, Transaction: txn, Err: errors.New("unknown transaction type")}
			}
			var id int64
			if err := tx.QueryRow(ctx, insertSQL(txn.Type), insertArgs(txn)...).Scan(&id); err != nil {
				return &repository.BatchError{Index: i, Transaction: txn, Err: err}
			}
			out = append(out, models.StoredTransaction{ID: id, NormalizedTransaction: txn})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithTx runs fn in one database transaction; any error rolls everything back.
func (r *transactionsRepo) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *transactionsRepo) List(ctx context.Context, f models.QueryFilter, p models.Page) (models.PageResult, error) {
	w := buildWhere(f, r.zone)
	if f.Type != nil {
		t, ok := models.ParseTransactionType(*f.Type)
		if !ok {
			return models.NewPageResult(nil, 0, p), nil
		}
		return r.listTable(ctx, t, w, p)
	}
	return r.listAll(ctx, w, p)
}

func (r *transactionsRepo) listTable(ctx context.Context, t models.TransactionType, w where, p models.Page) (models.PageResult, error) {
	var total int64
	if err := r.db.QueryRow(ctx, countSQL(t, w), w.args...).Scan(&total); err != nil {
		return models.PageResult{}, err
	}
	if total == 0 || int64(p.Offset()) >= total {
		return models.NewPageResult(nil, total, p), nil
	}
	rows, err := r.queryPage(ctx, pageSQL(t, w), append(w.args, p.Limit, p.Offset()))
	if err != nil {
		return models.PageResult{}, err
	}
	return models.NewPageResult(rows, total, p), nil
}

// listAll counts every table on its own so one failing table only drops its
// rows, then pages the union of the tables that have matching rows.
func (r *transactionsRepo) listAll(ctx context.Context, w where, p models.Page) (models.PageResult, error) {
	var (
		total   int64
		present []models.TransactionType
		skipped []string
		counts  = map[models.TransactionType]int64{}
	)
	for _, t := range models.AllTypes {
		var n int64
		if err := r.db.QueryRow(ctx, countSQL(t, w), w.args...).Scan(&n); err != nil {
			if ctx.Err() != nil {
				return models.PageResult{}, ctx.Err()
			}
			r.tableFault(t, "count", err)
			skipped = append(skipped, t.Table())
			continue
		}
		total += n
		counts[t] = n
		if n > 0 {
			present = append(present, t)
		}
	}
	if len(skipped) == len(models.AllTypes) {
		return models.PageResult{}, repository.ErrAllTablesFailed
	}

	var data []models.StoredTransaction
	if len(present) > 0 && int64(p.Offset()) < total {
		var err error
		data, err = r.queryPage(ctx, unionPageSQL(present, w), append(w.args, p.Limit, p.Offset()))
		if err != nil {
			if ctx.Err() != nil {
				return models.PageResult{}, ctx.Err()
			}
			r.log.Warn("union page failed, paging tables one by one", "err", err)
			var failed []models.TransactionType
			data, failed, err = r.pageEach(ctx, present, w, p)
			if err != nil {
				return models.PageResult{}, err
			}
			for _, t := range failed {
				total -= counts[t]
				skipped = append(skipped, t.Table())
			}
		}
	}
	res := models.NewPageResult(data, total, p)
	res.Incomplete = len(skipped) > 0
	res.SkippedTables = skipped
	return res, nil
}

// pageEach reads the first offset+limit rows of every table and merges them
// in union order. A table whose rows cannot be read is returned in failed.
func (r *transactionsRepo) pageEach(ctx context.Context, types []models.TransactionType, w where, p models.Page) ([]models.StoredTransaction, []models.TransactionType, error) {
	var (
		merged  []models.StoredTransaction
		failed  []models.TransactionType
		lastErr error
	)
	head := p.Offset() + p.Limit
	for _, t := range types {
		rows, err := r.queryPage(ctx, pageSQL(t, w), append(slices.Clip(w.args), head, 0))
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			r.tableFault(t, "page", err)
			failed = append(failed, t)
			lastErr = err
			continue
		}
		merged = append(merged, rows...)
	}
	if len(failed) == len(types) {
		return nil, nil, lastErr
	}
	slices.SortFunc(merged, compareStored)
	if p.Offset() >= len(merged) {
		return nil, failed, nil
	}
	return merged[p.Offset():min(head, len(merged))], failed, nil
}

// compareStored matches orderBy.
func compareStored(a, b models.StoredTransaction) int {
	if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ID, a.ID); c != 0 {
		return c
	}
	return cmp.Compare(a.Type, b.Type)
}

func (r *transactionsRepo) queryPage(ctx context.Context, sql string, args []any) ([]models.StoredTransaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StoredTransaction
	for rows.Next() {
		st, err := scanStored(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) Get(ctx context.Context, id string, hint *models.TransactionType) (models.StoredTransaction, error) {
	tables := models.AllTypes
	if hint != nil {
		tables = []models.TransactionType{*hint}
	}
	var numericID *int64
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		numericID = &n
	}

	failed := 0
	for _, t := range tables {
		st, err := scanStored(r.db.QueryRow(ctx, lookupSQL(t), id, numericID))
		if err == nil {
			return st, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if ctx.Err() != nil {
			return models.StoredTransaction{}, ctx.Err()
		}
		r.tableFault(t, "lookup", err)
		failed++
	}
	if failed == len(tables) {
		return models.StoredTransaction{}, repository.ErrAllTablesFailed
	}
	return models.StoredTransaction{}, repository.ErrNotFound
}

func (r *transactionsRepo) tableFault(t models.TransactionType, op string, err error) {
	r.log.Error("table scan failed", "table", t.Table(), "op", op, "err", err)
	metrics.QueryTableFaults.WithLabelValues(t.Table(), op).Inc()
}
