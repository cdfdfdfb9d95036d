package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-analytics/momo-backend/internal/db"
	"github.com/momo-analytics/momo-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestBuildWhere_Empty(t *testing.T) {
	w := buildWhere(models.QueryFilter{Type: ptr("INCOMING")}, "UTC")
	assert.Empty(t, w.clause)
	assert.Empty(t, w.args)
	assert.Equal(t, "$1", w.next())
}

func TestBuildWhere_AllFilters(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	f := models.QueryFilter{
		FreeText:  ptr("50%_off"),
		Date:      &day,
		StartDate: &day,
		EndDate:   &day,
		MinAmount: ptr(decimal.RequireFromString("1000")),
		MaxAmount: ptr(decimal.RequireFromString("5000")),
	}
	w := buildWhere(f, "Africa/Kigali")

	assert.Equal(t, `WHERE original_sms ILIKE $1`+
		` AND ("timestamp" AT TIME ZONE $2)::date = $3::date`+
		` AND ("timestamp" AT TIME ZONE $2)::date >= $4::date`+
		` AND ("timestamp" AT TIME ZONE $2)::date <= $5::date`+
		` AND amount >= $6::numeric AND amount <= $7::numeric`, w.clause)
	assert.Equal(t, []any{`%50\%\_off%`, "Africa/Kigali", "2024-01-15", "2024-01-15", "2024-01-15", "1000", "5000"}, w.args)
	assert.Equal(t, "$8", w.next())
}

func TestBuildWhere_ZoneOnlyWithDates(t *testing.T) {
	w := buildWhere(models.QueryFilter{MinAmount: ptr(decimal.NewFromInt(1))}, "Africa/Kigali")
	assert.Equal(t, []any{"1"}, w.args)
	assert.NotContains(t, w.clause, "AT TIME ZONE")
}

func TestProjection_SameShapeForEveryTable(t *testing.T) {
	for _, typ := range models.AllTypes {
		p := projection(typ)
		assert.Equal(t, 7+len(superset), strings.Count(p, ",")+1, typ)
		for _, c := range superset {
			if hasColumn(typ, c.name) {
				assert.NotContains(t, p, "NULL::text AS "+c.name, typ)
			} else {
				assert.Contains(t, p, "NULL::text AS "+c.name, typ)
			}
		}
	}
	assert.Contains(t, projection(models.TxnPayment), "fee::text AS fee")
}

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO third_party (transaction_id, type, amount, "timestamp", currency, original_sms, third_party, fee, external_transaction_id) `+
			`VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8::numeric, $9) RETURNING id`,
		insertSQL(models.TxnThirdParty))
	assert.Equal(t,
		`INSERT INTO bank_deposit (transaction_id, type, amount, "timestamp", currency, original_sms) `+
			`VALUES ($1, $2, $3::numeric, $4, $5, $6) RETURNING id`,
		insertSQL(models.TxnBankDeposit))
}

func TestInsertArgs_DropsForeignDetails(t *testing.T) {
	fee := decimal.RequireFromString("100")
	txn := models.NormalizedTransaction{
		Type:     models.TxnTransfer,
		Amount:   decimal.RequireFromString("10000"),
		Currency: "RWF",
		Details: models.Details{
			Recipient:       ptr("Samuel Carter"),
			RecipientNumber: ptr("250791666666"),
			Fee:             &fee,
			Agent:           ptr("should not be stored"),
		},
	}
	args := insertArgs(txn)
	require.Len(t, args, 9)
	assert.Equal(t, "TRANSFER", args[1])
	assert.Equal(t, "10000", args[2])
	assert.Equal(t, "Samuel Carter", *args[6].(*string))
	assert.Equal(t, "250791666666", *args[7].(*string))
	assert.Equal(t, "100", *args[8].(*string))
}

func TestUnionPageSQL(t *testing.T) {
	w := buildWhere(models.QueryFilter{MinAmount: ptr(decimal.NewFromInt(10))}, "UTC")
	sql := unionPageSQL([]models.TransactionType{models.TxnIncoming, models.TxnPayment}, w)

	assert.Equal(t, 1, strings.Count(sql, "UNION ALL"))
	assert.Equal(t, 2, strings.Count(sql, "WHERE amount >= $1::numeric"))
	assert.Contains(t, sql, `ORDER BY "timestamp" DESC, id DESC, type LIMIT $2 OFFSET $3`)
}

func TestPageSQL(t *testing.T) {
	sql := pageSQL(models.TxnIncoming, where{})
	assert.True(t, strings.HasSuffix(sql, `ORDER BY "timestamp" DESC, id DESC, type LIMIT $1 OFFSET $2`), sql)
}

func TestMonthlySQL_ZoneIsLastParam(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	w := buildWhere(models.QueryFilter{Date: &day}, "UTC")
	sql := monthlySQL(models.TxnIncoming, w)
	assert.Contains(t, sql, `EXTRACT(MONTH FROM "timestamp" AT TIME ZONE $3)`)
}

// Every table and column the mapper writes must exist in the migrations.
func TestMigrationsCoverSchemaMap(t *testing.T) {
	names, err := db.Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	var all strings.Builder
	for _, n := range names {
		body, err := db.MigrationSQL(n)
		require.NoError(t, err)
		all.WriteString(body)
	}
	schema := all.String()

	for _, typ := range models.AllTypes {
		start := strings.Index(schema, "CREATE TABLE IF NOT EXISTS "+typ.Table()+" (")
		require.GreaterOrEqual(t, start, 0, typ)
		end := strings.Index(schema[start:], ");")
		table := schema[start : start+end]
		for _, col := range tableColumns[typ] {
			assert.Contains(t, table, "\n  "+col+" ", "%s.%s", typ, col)
		}
		for _, c := range superset {
			if !hasColumn(typ, c.name) {
				assert.NotContains(t, table, "\n  "+c.name+" ", "%s.%s", typ, c.name)
			}
		}
	}
}
