package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/models"
)

const dateLayout = "2006-01-02"

// orderBy is total: id breaks timestamp ties inside a table, type across tables.
const orderBy = `ORDER BY "timestamp" DESC, id DESC, type`

type where struct {
	clause string
	args   []any
}

func (w where) next() string { return fmt.Sprintf("$%d", len(w.args)+1) }

// buildWhere turns a filter into an AND-ed WHERE clause with positional
// parameters. The type filter is not part of it: it selects the table.
// Calendar dates are taken in zone.
func buildWhere(f models.QueryFilter, zone string) where {
	var conds []string
	var args []any
	add := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.FreeText != nil && *f.FreeText != "" {
		conds = append(conds, "original_sms ILIKE "+add("%"+escapeLike(*f.FreeText)+"%"))
	}

	var day string
	if f.Date != nil || f.StartDate != nil || f.EndDate != nil {
		day = fmt.Sprintf(`("timestamp" AT TIME ZONE %s)::date`, add(zone))
	}
	if f.Date != nil {
		conds = append(conds, fmt.Sprintf("%s = %s::date", day, add(f.Date.Format(dateLayout))))
	}
	if f.StartDate != nil {
		conds = append(conds, fmt.Sprintf("%s >= %s::date", day, add(f.StartDate.Format(dateLayout))))
	}
	if f.EndDate != nil {
		conds = append(conds, fmt.Sprintf("%s <= %s::date", day, add(f.EndDate.Format(dateLayout))))
	}

	if f.MinAmount != nil {
		conds = append(conds, "amount >= "+add(f.MinAmount.String())+"::numeric")
	}
	if f.MaxAmount != nil {
		conds = append(conds, "amount <= "+add(f.MaxAmount.String())+"::numeric")
	}

	if len(conds) == 0 {
		return where{args: args}
	}
	return where{clause: "WHERE " + strings.Join(conds, " AND "), args: args}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func countSQL(t models.TransactionType, w where) string {
	return strings.TrimSpace(fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.Table(), w.clause))
}

func pageSQL(t models.TransactionType, w where) string {
	return fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT %s OFFSET $%d",
		projection(t), t.Table(), w.clause, orderBy, w.next(), len(w.args)+2)
}

// unionPageSQL pages the combined rows of several tables. Every branch reuses
// the same WHERE parameters.
func unionPageSQL(types []models.TransactionType, w where) string {
	branches := make([]string, len(types))
	for i, t := range types {
		branches[i] = strings.TrimSpace(fmt.Sprintf("SELECT %s FROM %s %s", projection(t), t.Table(), w.clause))
	}
	return fmt.Sprintf("SELECT * FROM (\n%s\n) AS combined %s LIMIT %s OFFSET $%d",
		strings.Join(branches, "\nUNION ALL\n"), orderBy, w.next(), len(w.args)+2)
}

func lookupSQL(t models.TransactionType) string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE transaction_id = $1 OR id = $2
ORDER BY COALESCE(transaction_id = $1, false) DESC, id LIMIT 1`, projection(t), t.Table())
}

func typeStatsSQL(t models.TransactionType, w where) string {
	return strings.TrimSpace(fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(SUM(amount), 0)::text, COALESCE(ROUND(AVG(amount), 2), 0)::text FROM %s %s",
		t.Table(), w.clause))
}

func monthlySQL(t models.TransactionType, w where) string {
	return fmt.Sprintf(`SELECT EXTRACT(MONTH FROM "timestamp" AT TIME ZONE %s)::int AS month, COALESCE(SUM(amount), 0)::text
FROM %s %s GROUP BY 1 ORDER BY 1`, w.next(), t.Table(), w.clause)
}

// scanStored reads one row shaped by projection.
func scanStored(row pgx.Row) (models.StoredTransaction, error) {
	var (
		st     models.StoredTransaction
		typ    string
		amount string
		ts     time.Time
		extras = make([]*string, len(superset))
	)
	dest := []any{&st.ID, &st.TransactionID, &typ, &amount, &ts, &st.Currency, &st.Details.OriginalSMS}
	for i := range extras {
		dest = append(dest, &extras[i])
	}
	if err := row.Scan(dest...); err != nil {
		return models.StoredTransaction{}, err
	}

	st.Type = models.TransactionType(typ)
	st.Timestamp = ts.UTC()
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return models.StoredTransaction{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	st.Amount = a
	for i, c := range superset {
		v := extras[i]
		if v == nil {
			continue
		}
		if c.numeric {
			fee, err := decimal.NewFromString(*v)
			if err != nil {
				return models.StoredTransaction{}, fmt.Errorf("%s %q: %w", c.name, *v, err)
			}
			st.Details.Fee = &fee
			continue
		}
		*c.ref(&st.Details) = v
	}
	return st, nil
}
