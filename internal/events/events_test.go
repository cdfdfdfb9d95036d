package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momo-analytics/momo-backend/internal/logger"
	"github.com/momo-analytics/momo-backend/internal/models"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushed    bool
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.subject, c.data = subj, data
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	c.flushed = true
	return nil
}

func TestNATSPublisher_IngestCompleted(t *testing.T) {
	conn := &fakeConn{}
	p := NewNATSPublisher(conn, "", logger.Discard())

	run := models.IngestRun{
		ID:     "run-1",
		Source: "sms.xml",
		Status: models.IngestCompleted,
		Summary: models.IngestSummary{
			Total: 3, Recognized: 2, Unrecognized: 1, Inserted: 2,
			ByType: map[models.TransactionType]int{models.TxnIncoming: 2},
		},
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	require.NoError(t, p.IngestCompleted(t.Context(), run))

	assert.Equal(t, DefaultSubject, conn.subject)
	assert.True(t, conn.flushed)

	var got IngestCompletedEvent
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 2, got.Summary.Inserted)
	assert.Equal(t, 2, got.Summary.ByType[models.TxnIncoming])
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := &fakeConn{publishErr: errors.New("nats: connection closed")}
	p := NewNATSPublisher(conn, "custom.subject", logger.Discard())

	err := p.IngestCompleted(t.Context(), models.IngestRun{ID: "x"})
	require.Error(t, err)
	assert.False(t, conn.flushed)
}
