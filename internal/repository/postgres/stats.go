package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/models"
	"github.com/momo-analytics/momo-backend/internal/repository"
)

// Stats aggregates in the store, one table at a time. A table whose queries
// fail is left out and reported in SkippedTables.
func (r *transactionsRepo) Stats(ctx context.Context, f models.QueryFilter) (models.Stats, error) {
	stats := models.NewStats()
	tables := models.AllTypes
	if f.Type != nil {
		t, ok := models.ParseTransactionType(*f.Type)
		if !ok {
			return stats, nil
		}
		tables = []models.TransactionType{t}
	}

	w := buildWhere(f, r.zone)
	for _, t := range tables {
		if err := r.tableStats(ctx, t, w, &stats); err != nil {
			if ctx.Err() != nil {
				return models.Stats{}, ctx.Err()
			}
			r.tableFault(t, "stats", err)
			stats.SkippedTables = append(stats.SkippedTables, t.Table())
		}
	}
	if len(stats.SkippedTables) == len(tables) {
		return models.Stats{}, repository.ErrAllTablesFailed
	}
	stats.Incomplete = len(stats.SkippedTables) > 0
	stats.Finish()
	return stats, nil
}

// tableStats reads everything for one table before touching stats, so a
// failure halfway leaves no partial contribution.
func (r *transactionsRepo) tableStats(ctx context.Context, t models.TransactionType, w where, stats *models.Stats) error {
	var (
		count      int64
		total, avg string
	)
	if err := r.db.QueryRow(ctx, typeStatsSQL(t, w), w.args...).Scan(&count, &total, &avg); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	totalDec, err := decimal.NewFromString(total)
	if err != nil {
		return fmt.Errorf("sum %q: %w", total, err)
	}
	avgDec, err := decimal.NewFromString(avg)
	if err != nil {
		return fmt.Errorf("avg %q: %w", avg, err)
	}

	type monthRow struct {
		month int
		total decimal.Decimal
	}
	var months []monthRow
	rows, err := r.db.Query(ctx, monthlySQL(t, w), append(w.args, r.zone)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m int
		var s string
		if err := rows.Scan(&m, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("monthly sum %q: %w", s, err)
		}
		months = append(months, monthRow{month: m, total: d})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	stats.AddType(t, count, totalDec, avgDec)
	for _, m := range months {
		stats.AddMonth(t, m.month, m.total)
	}
	return nil
}
