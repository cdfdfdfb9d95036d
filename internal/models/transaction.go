package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnIncoming    TransactionType = "INCOMING"
	TxnReclaimed   TransactionType = "RECLAIMED"
	TxnPayment     TransactionType = "PAYMENT"
	TxnBankDeposit TransactionType = "BANK_DEPOSIT"
	TxnTransfer    TransactionType = "TRANSFER"
	TxnWithdrawn   TransactionType = "WITHDRAWN"
	TxnAirtimeBill TransactionType = "AIRTIME_BILL"
	TxnUtilityBill TransactionType = "UTILITY_BILL"
	TxnThirdParty  TransactionType = "THIRD_PARTY"
)

// AllTypes is the fixed order used for cross-table scans and lookups.
var AllTypes = []TransactionType{
	TxnIncoming,
	TxnReclaimed,
	TxnPayment,
	TxnBankDeposit,
	TxnTransfer,
	TxnWithdrawn,
	TxnAirtimeBill,
	TxnUtilityBill,
	TxnThirdParty,
}

// ParseTransactionType matches s case-insensitively against the enum.
func ParseTransactionType(s string) (TransactionType, bool) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range AllTypes {
		if string(t) == want {
			return t, true
		}
	}
	return "", false
}

// Table is the storage table holding rows of this type.
func (t TransactionType) Table() string { return strings.ToLower(string(t)) }

// IsIncome reports whether the type counts as income in the monthly summary.
func (t TransactionType) IsIncome() bool { return t == TxnIncoming || t == TxnBankDeposit }

// Details holds the type-specific fields. A nil pointer means the field is absent.
type Details struct {
	Sender                *string          `json:"sender,omitempty"`
	SenderNumber          *string          `json:"senderNumber,omitempty"`
	Recipient             *string          `json:"recipient,omitempty"`
	RecipientNumber       *string          `json:"recipientNumber,omitempty"`
	Fee                   *decimal.Decimal `json:"fee,omitempty"`
	Agent                 *string          `json:"agent,omitempty"`
	AgentNumber           *string          `json:"agentNumber,omitempty"`
	PurchasedItem         *string          `json:"purchasedItem,omitempty"`
	PurchasedUtility      *string          `json:"purchasedUtility,omitempty"`
	MeterToken            *string          `json:"meterToken,omitempty"`
	ThirdParty            *string          `json:"thirdParty,omitempty"`
	ExternalTransactionID *string          `json:"externalTransactionId,omitempty"`
	OriginalSMS           *string          `json:"originalSMS,omitempty"`
}

type NormalizedTransaction struct {
	TransactionID *string         `json:"transactionId"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
	Currency      string          `json:"currency"`
	Details       Details         `json:"details"`
}

type StoredTransaction struct {
	ID int64 `json:"id"`
	NormalizedTransaction
}

// RawMessage is one SMS read from the export.
type RawMessage struct {
	Body   string
	SentAt time.Time
}
