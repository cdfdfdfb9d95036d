package extract

import (
	"fmt"
	"log/slog"

	"github.com/momo-analytics/momo-backend/internal/models"
)

type Outcome int

const (
	// Recognized: an entry matched and produced a transaction.
	Recognized Outcome = iota
	// Unrecognized: no entry matched the body.
	Unrecognized
	// Faulted: at least one entry matched but none produced a transaction.
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Recognized:
		return "recognized"
	case Unrecognized:
		return "unrecognized"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Fault is an entry whose pattern matched but whose extraction failed.
type Fault struct {
	EntryID string
	Err     error
}

func (f Fault) Error() string { return fmt.Sprintf("pattern %s: %v", f.EntryID, f.Err) }

type Result struct {
	Outcome     Outcome
	Transaction models.NormalizedTransaction
	Faults      []Fault
}

type Classifier struct {
	catalog Catalog
	log     *slog.Logger
}

func NewClassifier(c Catalog, log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{catalog: c, log: log}
}

// Classify runs the catalog over one message. It depends only on the message
// and is safe for concurrent use.
func (c *Classifier) Classify(msg models.RawMessage) Result {
	var faults []Fault
	for _, e := range c.catalog {
		captures := e.Match(msg.Body)
		if captures == nil {
			continue
		}
		ex, err := e.Extract(captures, msg.SentAt)
		if err == nil {
			var txn models.NormalizedTransaction
			txn, err = Normalize(ex, msg.Body)
			if err == nil {
				return Result{Outcome: Recognized, Transaction: txn, Faults: faults}
			}
		}
		c.log.Error("extraction failed", "pattern", e.ID, "err", err)
		faults = append(faults, Fault{EntryID: e.ID, Err: err})
	}
	if len(faults) > 0 {
		return Result{Outcome: Faulted, Faults: faults}
	}
	c.log.Warn("unrecognized sms", "body", truncate(msg.Body, 80))
	return Result{Outcome: Unrecognized}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
