package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/models"
)

// Field names a capture group can bind to.
const (
	FieldTransactionID         = "transactionId"
	FieldAmount                = "amount"
	FieldCurrency              = "currency"
	FieldSender                = "sender"
	FieldSenderNumber          = "senderNumber"
	FieldRecipient             = "recipient"
	FieldRecipientNumber       = "recipientNumber"
	FieldFee                   = "fee"
	FieldAgent                 = "agent"
	FieldAgentNumber           = "agentNumber"
	FieldPurchasedItem         = "purchasedItem"
	FieldPurchasedUtility      = "purchasedUtility"
	FieldMeterToken            = "meterToken"
	FieldThirdParty            = "thirdParty"
	FieldExternalTransactionID = "externalTransactionId"
)

// Entry is one recognizer: a pattern plus the field each capture group feeds.
// Groups[i] names capture group i+1.
type Entry struct {
	ID      string
	Type    models.TransactionType
	Pattern *regexp.Regexp
	Groups  []string
}

// Extraction is the raw output of an entry before normalization.
type Extraction struct {
	EntryID   string
	Type      models.TransactionType
	Timestamp time.Time
	Amount    decimal.Decimal
	Fee       *decimal.Decimal
	Values    map[string]string
}

// Match returns the capture groups of text, or nil.
func (e Entry) Match(text string) []string {
	return e.Pattern.FindStringSubmatch(text)
}

// Extract binds captures to fields and parses the numeric ones.
func (e Entry) Extract(captures []string, sentAt time.Time) (Extraction, error) {
	if len(captures) != len(e.Groups)+1 {
		return Extraction{}, fmt.Errorf("expected %d capture groups, got %d", len(e.Groups), len(captures)-1)
	}
	ex := Extraction{
		EntryID:   e.ID,
		Type:      e.Type,
		Timestamp: sentAt,
		Values:    make(map[string]string, len(e.Groups)),
	}
	for i, field := range e.Groups {
		ex.Values[field] = strings.TrimSpace(captures[i+1])
	}

	raw, ok := ex.Values[FieldAmount]
	if !ok || raw == "" {
		return Extraction{}, fmt.Errorf("missing amount capture")
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return Extraction{}, fmt.Errorf("amount: %w", err)
	}
	ex.Amount = amount
	delete(ex.Values, FieldAmount)

	if raw, ok := ex.Values[FieldFee]; ok {
		delete(ex.Values, FieldFee)
		if raw != "" {
			fee, err := ParseAmount(raw)
			if err != nil {
				return Extraction{}, fmt.Errorf("fee: %w", err)
			}
			ex.Fee = &fee
		}
	}
	return ex, nil
}

// amountPattern accepts plain digits or digits grouped by three with commas.
var amountPattern = regexp.MustCompile(`^(\d{1,3}(,\d{3})+|\d+)(\.\d+)?$`)

// ParseAmount parses a captured number, tolerating thousands separators ("1,234" -> 1234).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number")
	}
	if !amountPattern.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("malformed number %q", s)
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// Catalog is an ordered list of entries; the first matching entry wins.
type Catalog []Entry

func entry(id string, t models.TransactionType, pattern string, groups ...string) Entry {
	return Entry{ID: id, Type: t, Pattern: regexp.MustCompile("(?i)" + pattern), Groups: groups}
}

// DefaultCatalog recognizes MTN MoMo notification phrasings. Order matters:
// the *162* utility and airtime entries precede the generic *162* payment, and
// the specific payment phrasings precede the catch-all ones.
func DefaultCatalog() Catalog {
	return Catalog{
		entry("incoming", models.TxnIncoming,
			`you have received ([\d,]+) (\w{2,3}) from ([\w\s]+\b) .+transaction id: (\d+)`,
			FieldAmount, FieldCurrency, FieldSender, FieldTransactionID),
		entry("reclaimed", models.TxnReclaimed,
			`your transaction to ([\w\s]+\b) \((\d+)\) with ([\d,]+) (\w{2,3}) has been reversed`,
			FieldSender, FieldSenderNumber, FieldAmount, FieldCurrency),
		entry("withdrawn", models.TxnWithdrawn,
			`via agent: ([\w\s]+\b) \((\d+)\), withdrawn ([\d,]+) (\w{2,3}) from your.+fee paid: ([\d,]+) .+ financial \w+ id: (\d+)`,
			FieldAgent, FieldAgentNumber, FieldAmount, FieldCurrency, FieldFee, FieldTransactionID),
		entry("transfer", models.TxnTransfer,
			`\*165\*S\*([\d,]+) (\w{2,3}) transferred to ([\w\s]+\b) \((\d+)\) .+ fee was: ([\d,]+) \w+`,
			FieldAmount, FieldCurrency, FieldRecipient, FieldRecipientNumber, FieldFee),
		entry("transfer_2", models.TxnTransfer,
			`you have transferred ([\d,]+) (\w{2,3}) to ([\w\s]+\b) \((\d+)\).+financial \w+ id: (\d+)`,
			FieldAmount, FieldCurrency, FieldRecipient, FieldRecipientNumber, FieldTransactionID),
		entry("bank_deposit", models.TxnBankDeposit,
			`\*113\*R\*A bank deposit of ([\d,]+) (\w{2,3}) has \w+ added`,
			FieldAmount, FieldCurrency),
		entry("utility_bill", models.TxnUtilityBill,
			`\*162\*txid:(\d+)\*S.+payment of ([\d,]+) (\w{2,3}) to (mtn cash power|wasac) with token ([\d-]+) has been(?:.+?fee was ([\d,]+))?`,
			FieldTransactionID, FieldAmount, FieldCurrency, FieldPurchasedUtility, FieldMeterToken, FieldFee),
		entry("airtime_bill", models.TxnAirtimeBill,
			`\*162\*txid:(\d+)\*S.+payment of ([\d,]+) (\w{2,3}) to (airtime|bundles and packs) with token`,
			FieldTransactionID, FieldAmount, FieldCurrency, FieldPurchasedItem),
		entry("third_party", models.TxnThirdParty,
			`\*164\*.+transaction of ([\d,]+) (\w{2,3}) by ([\w\s]+\b)\s+on your momo .+ fee was ([\d,]+) .+ financial \w+ id: (\d+).+external \w+ id: ([\w-]+)`,
			FieldAmount, FieldCurrency, FieldThirdParty, FieldFee, FieldTransactionID, FieldExternalTransactionID),
		entry("payment", models.TxnPayment,
			`txid: (\d+)\. .+ payment of ([\d,]+) (\w{2,3}) to ([\w\s]+\b) (\d+) has .+\. fee was ([\d,]+)`,
			FieldTransactionID, FieldAmount, FieldCurrency, FieldRecipient, FieldRecipientNumber, FieldFee),
		entry("payment_2", models.TxnPayment,
			`your payment of ([\d,]+) (\w{2,3}) to ([\w\s]+\b) \((\d+)\) has .+\. fee was ([\d,]+) .+ financial \w+ id: (\d+)`,
			FieldAmount, FieldCurrency, FieldRecipient, FieldRecipientNumber, FieldFee, FieldTransactionID),
		entry("payment_3", models.TxnPayment,
			`\*162\*txid:(\d+)\*S.+payment of ([\d,]+) (\w{2,3}) to ([\w\s]+) with token\s+has been.+fee was ([\d,]+)`,
			FieldTransactionID, FieldAmount, FieldCurrency, FieldRecipient, FieldFee),
	}
}
