package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/momo-analytics/momo-backend/internal/cache"
	"github.com/momo-analytics/momo-backend/internal/events"
	"github.com/momo-analytics/momo-backend/internal/extract"
	"github.com/momo-analytics/momo-backend/internal/metrics"
	"github.com/momo-analytics/momo-backend/internal/models"
	repo "github.com/momo-analytics/momo-backend/internal/repository"
	"github.com/momo-analytics/momo-backend/internal/source"
	"github.com/momo-analytics/momo-backend/internal/worker"
)

type IngestDeps struct {
	Transactions repo.Transactions
	Runs         repo.IngestRuns
	Classifier   *extract.Classifier
	Pool         *worker.Pool
	Cache        cache.Stats
	Publisher    events.Publisher
	Location     *time.Location
	Log          *slog.Logger
}

// IngestService runs the read, classify, persist pipeline for one SMS export.
// Runs are not meant to overlap.
type IngestService struct {
	trx   repo.Transactions
	runs  repo.IngestRuns
	cls   *extract.Classifier
	wp    *worker.Pool
	cache cache.Stats
	pub   events.Publisher
	loc   *time.Location
	log   *slog.Logger
	now   func() time.Time
}

func NewIngestService(d IngestDeps) *IngestService {
	s := &IngestService{
		trx:   d.Transactions,
		runs:  d.Runs,
		cls:   d.Classifier,
		wp:    d.Pool,
		cache: d.Cache,
		pub:   d.Publisher,
		loc:   d.Location,
		log:   d.Log,
		now:   time.Now,
	}
	if s.cls == nil {
		s.cls = extract.NewClassifier(extract.DefaultCatalog(), d.Log)
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.pub == nil {
		s.pub = events.Noop{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// IngestURI opens a local path or gs:// object and ingests it.
func (s *IngestService) IngestURI(ctx context.Context, uri string) (models.IngestRun, error) {
	rc, err := source.Open(ctx, uri)
	if err != nil {
		return s.fail(ctx, s.newRun(uri), models.IngestSummary{ByType: map[models.TransactionType]int{}}, err)
	}
	defer rc.Close()
	return s.Ingest(ctx, uri, rc)
}

// Ingest reads one export and stores every recognized message in a single
// atomic batch. A malformed document or a failed batch fails the run; the
// returned run is recorded in the ledger either way.
func (s *IngestService) Ingest(ctx context.Context, name string, r io.Reader) (models.IngestRun, error) {
	run := s.newRun(name)
	sum := models.IngestSummary{ByType: map[models.TransactionType]int{}}

	res, err := source.Read(r, s.loc)
	if err != nil {
		return s.fail(ctx, run, sum, err)
	}
	for _, sk := range res.Skipped {
		s.log.Warn("sms skipped", "index", sk.Index, "reason", sk.Reason)
	}
	sum.Skipped = len(res.Skipped)
	sum.Total = len(res.Messages) + len(res.Skipped)

	txns := s.classify(res.Messages, &sum)

	stored, err := s.trx.InsertBatch(ctx, txns)
	if err != nil {
		metrics.IngestBatches.WithLabelValues("rolled_back").Inc()
		var be *repo.BatchError
		if errors.As(err, &be) {
			s.log.Error("batch rolled back", "index", be.Index, "type", be.Transaction.Type, "err", be.Err)
		}
		return s.fail(ctx, run, sum, fmt.Errorf("insert batch: %w", err))
	}
	metrics.IngestBatches.WithLabelValues("committed").Inc()
	sum.Inserted = len(stored)

	run.Status = models.IngestCompleted
	run.Summary = sum
	run.FinishedAt = s.now().UTC()
	s.record(ctx, run)

	if sum.Inserted > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("stats cache invalidate failed", "err", err)
		}
	}
	if err := s.pub.IngestCompleted(ctx, run); err != nil {
		s.log.Warn("ingest event not published", "run_id", run.ID, "err", err)
	}
	s.log.Info("ingest completed", "run_id", run.ID, "source", name,
		"total", sum.Total, "recognized", sum.Recognized, "unrecognized", sum.Unrecognized,
		"faults", sum.ExtractionFaults, "skipped", sum.Skipped, "inserted", sum.Inserted)
	return run, nil
}

// classify fans the messages out over the pool and keeps source order.
func (s *IngestService) classify(msgs []models.RawMessage, sum *models.IngestSummary) []models.NormalizedTransaction {
	var results []extract.Result
	if s.wp != nil {
		results = worker.Map(s.wp, msgs, func(_ int, m models.RawMessage) extract.Result { return s.cls.Classify(m) })
	} else {
		results = make([]extract.Result, len(msgs))
		for i, m := range msgs {
			results[i] = s.cls.Classify(m)
		}
	}

	txns := make([]models.NormalizedTransaction, 0, len(results))
	for _, r := range results {
		for _, f := range r.Faults {
			metrics.ExtractionFaults.WithLabelValues(f.EntryID).Inc()
		}
		switch r.Outcome {
		case extract.Recognized:
			sum.Recognized++
			sum.ByType[r.Transaction.Type]++
			metrics.MessagesClassified.WithLabelValues(string(r.Transaction.Type)).Inc()
			txns = append(txns, r.Transaction)
		case extract.Faulted:
			sum.ExtractionFaults++
		default:
			sum.Unrecognized++
			metrics.MessagesUnrecognized.Inc()
		}
	}
	return txns
}

func (s *IngestService) newRun(name string) models.IngestRun {
	return models.IngestRun{ID: uuid.NewString(), Source: name, StartedAt: s.now().UTC()}
}

func (s *IngestService) fail(ctx context.Context, run models.IngestRun, sum models.IngestSummary, err error) (models.IngestRun, error) {
	msg := err.Error()
	run.Status = models.IngestFailed
	run.Error = &msg
	run.Summary = sum
	run.FinishedAt = s.now().UTC()
	s.log.Error("ingest failed", "run_id", run.ID, "source", run.Source, "err", err)
	s.record(ctx, run)
	return run, err
}

// record writes the ledger row. The ledger is informational, so a failure
// here is logged and does not change the run's outcome.
func (s *IngestService) record(ctx context.Context, run models.IngestRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.log.Error("ingest run not recorded", "run_id", run.ID, "err", err)
	}
}
