package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/momo-analytics/momo-backend/internal/models"
)

const DefaultSubject = "momo.ingest.completed"

// Publisher announces finished ingest runs to downstream consumers.
type Publisher interface {
	IngestCompleted(ctx context.Context, run models.IngestRun) error
}

// IngestCompletedEvent is the payload sent on the ingest subject.
type IngestCompletedEvent struct {
	RunID   string               `json:"runId"`
	Source  string               `json:"source"`
	Status  models.IngestStatus  `json:"status"`
	Summary models.IngestSummary `json:"summary"`
}

func NewIngestCompletedEvent(run models.IngestRun) IngestCompletedEvent {
	return IngestCompletedEvent{RunID: run.ID, Source: run.Source, Status: run.Status, Summary: run.Summary}
}

// Conn is the slice of *nats.Conn used for publishing.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

type NATSPublisher struct {
	conn    Conn
	subject string
	log     *slog.Logger
}

func NewNATSPublisher(conn Conn, subject string, log *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = slog.Default()
	}
	return &NATSPublisher{conn: conn, subject: subject, log: log}
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url, nats.Name("momo-backend"))
}

func (p *NATSPublisher) IngestCompleted(ctx context.Context, run models.IngestRun) error {
	payload, err := json.Marshal(NewIngestCompletedEvent(run))
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return err
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return err
	}
	p.log.Info("ingest event published", "subject", p.subject, "run_id", run.ID)
	return nil
}

type Noop struct{}

func (Noop) IngestCompleted(context.Context, models.IngestRun) error { return nil }
