package extract

import (
	"errors"
	"fmt"

	"github.com/momo-analytics/momo-backend/internal/models"
)

// Normalize reshapes an extraction into the canonical transaction. Empty
// captures become nil; currency stays a string whatever it looks like.
func Normalize(ex Extraction, body string) (models.NormalizedTransaction, error) {
	if ex.Amount.IsNegative() {
		return models.NormalizedTransaction{}, errors.New("negative amount")
	}
	if ex.Fee != nil && ex.Fee.IsNegative() {
		return models.NormalizedTransaction{}, errors.New("negative fee")
	}
	if ex.Timestamp.IsZero() {
		return models.NormalizedTransaction{}, errors.New("missing timestamp")
	}
	currency := ex.Values[FieldCurrency]
	if currency == "" {
		return models.NormalizedTransaction{}, errors.New("missing currency")
	}

	txn := models.NormalizedTransaction{
		TransactionID: optional(ex.Values[FieldTransactionID]),
		Type:          ex.Type,
		Amount:        ex.Amount,
		Timestamp:     ex.Timestamp.UTC(),
		Currency:      currency,
	}
	d := &txn.Details
	d.Fee = ex.Fee
	d.OriginalSMS = optional(body)
	for field, v := range ex.Values {
		switch field {
		case FieldTransactionID, FieldCurrency:
		case FieldSender:
			d.Sender = optional(v)
		case FieldSenderNumber:
			d.SenderNumber = optional(v)
		case FieldRecipient:
			d.Recipient = optional(v)
		case FieldRecipientNumber:
			d.RecipientNumber = optional(v)
		case FieldAgent:
			d.Agent = optional(v)
		case FieldAgentNumber:
			d.AgentNumber = optional(v)
		case FieldPurchasedItem:
			d.PurchasedItem = optional(v)
		case FieldPurchasedUtility:
			d.PurchasedUtility = optional(v)
		case FieldMeterToken:
			d.MeterToken = optional(v)
		case FieldThirdParty:
			d.ThirdParty = optional(v)
		case FieldExternalTransactionID:
			d.ExternalTransactionID = optional(v)
		default:
			return models.NormalizedTransaction{}, fmt.Errorf("unknown field %q", field)
		}
	}
	return txn, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
