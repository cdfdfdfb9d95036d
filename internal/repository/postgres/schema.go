package postgres

import (
	"fmt"
	"strings"

	"github.com/momo-analytics/momo-backend/internal/models"
)

// extraColumn is a type-specific column. Text columns map to a *string field of
// models.Details through ref; the only numeric column is fee.
type extraColumn struct {
	name    string
	numeric bool
	ref     func(d *models.Details) **string
}

// superset is the canonical column set every table row is projected onto.
var superset = []extraColumn{
	{name: "sender", ref: func(d *models.Details) **string { return &d.Sender }},
	{name: "sender_number", ref: func(d *models.Details) **string { return &d.SenderNumber }},
	{name: "recipient", ref: func(d *models.Details) **string { return &d.Recipient }},
	{name: "recipient_number", ref: func(d *models.Details) **string { return &d.RecipientNumber }},
	{name: "fee", numeric: true},
	{name: "agent", ref: func(d *models.Details) **string { return &d.Agent }},
	{name: "agent_number", ref: func(d *models.Details) **string { return &d.AgentNumber }},
	{name: "purchased_item", ref: func(d *models.Details) **string { return &d.PurchasedItem }},
	{name: "purchased_utility", ref: func(d *models.Details) **string { return &d.PurchasedUtility }},
	{name: "meter_token", ref: func(d *models.Details) **string { return &d.MeterToken }},
	{name: "third_party", ref: func(d *models.Details) **string { return &d.ThirdParty }},
	{name: "external_transaction_id", ref: func(d *models.Details) **string { return &d.ExternalTransactionID }},
}

// tableColumns lists the extra columns each table carries.
var tableColumns = map[models.TransactionType][]string{
	models.TxnIncoming:    {"sender"},
	models.TxnReclaimed:   {"sender", "sender_number"},
	models.TxnPayment:     {"recipient", "recipient_number", "fee"},
	models.TxnBankDeposit: {},
	models.TxnTransfer:    {"recipient", "recipient_number", "fee"},
	models.TxnWithdrawn:   {"agent", "agent_number", "fee"},
	models.TxnAirtimeBill: {"purchased_item"},
	models.TxnUtilityBill: {"purchased_utility", "meter_token", "fee"},
	models.TxnThirdParty:  {"third_party", "fee", "external_transaction_id"},
}

const coreProjection = `id, transaction_id, type, amount::text AS amount, "timestamp", currency, original_sms`

func hasColumn(t models.TransactionType, name string) bool {
	for _, c := range tableColumns[t] {
		if c == name {
			return true
		}
	}
	return false
}

// projection selects the core columns plus the full superset, with typed
// NULLs for columns the table lacks, so rows of any table share one shape.
func projection(t models.TransactionType) string {
	var b strings.Builder
	b.WriteString(coreProjection)
	for _, c := range superset {
		b.WriteString(", ")
		switch {
		case !hasColumn(t, c.name):
			fmt.Fprintf(&b, "NULL::text AS %s", c.name)
		case c.numeric:
			fmt.Fprintf(&b, "%s::text AS %s", c.name, c.name)
		default:
			b.WriteString(c.name)
		}
	}
	return b.String()
}

// insertSQL builds the parameterized insert for one table.
func insertSQL(t models.TransactionType) string {
	cols := []string{"transaction_id", "type", "amount", `"timestamp"`, "currency", "original_sms"}
	vals := []string{"$1", "$2", "$3::numeric", "$4", "$5", "$6"}
	for _, name := range tableColumns[t] {
		cols = append(cols, name)
		p := fmt.Sprintf("$%d", len(vals)+1)
		if name == "fee" {
			p += "::numeric"
		}
		vals = append(vals, p)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.Table(), strings.Join(cols, ", "), strings.Join(vals, ", "))
}

// insertArgs returns the values for insertSQL in column order. Details fields
// that do not belong to the table are dropped.
func insertArgs(txn models.NormalizedTransaction) []any {
	d := txn.Details
	args := []any{txn.TransactionID, string(txn.Type), txn.Amount.String(), txn.Timestamp, txn.Currency, d.OriginalSMS}
	for _, name := range tableColumns[txn.Type] {
		c := columnByName(name)
		if c.numeric {
			var fee *string
			if d.Fee != nil {
				s := d.Fee.String()
				fee = &s
			}
			args = append(args, fee)
			continue
		}
		args = append(args, *c.ref(&d))
	}
	return args
}

func columnByName(name string) extraColumn {
	for _, c := range superset {
		if c.name == name {
			return c
		}
	}
	panic("postgres: unknown column " + name)
}
