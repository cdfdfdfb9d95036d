package postgres

import (
	"context"
	"encoding/json"

	"github.com/momo-analytics/momo-backend/internal/models"
)

type ingestRunsRepo struct{ db DB }

func (r *ingestRunsRepo) Create(ctx context.Context, run models.IngestRun) error {
	byType, err := json.Marshal(run.Summary.ByType)
	if err != nil {
		return err
	}
	s := run.Summary
	_, err = r.db.Exec(ctx,
		`INSERT INTO ingest_runs(id, source, status, error, total, recognized, unrecognized,
		   extraction_faults, skipped, inserted, by_type, started_at, finished_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		run.ID, run.Source, string(run.Status), run.Error, s.Total, s.Recognized, s.Unrecognized,
		s.ExtractionFaults, s.Skipped, s.Inserted, byType, run.StartedAt, run.FinishedAt,
	)
	return err
}
