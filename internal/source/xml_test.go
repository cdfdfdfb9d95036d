package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<smses count="4">
  <sms protocol="0" address="M-Money" date="1715351451000" type="1" body="You have received 2000 RWF from Jane Smith (*********013) on your mobile money account at 2024-05-10 16:30:51. Financial Transaction Id: 76662021700." readable_date="10 May 2024 4:30:51 PM" contact_name="(Unknown)" />
  <sms protocol="0" address="M-Money" date="1715351458724" type="1" body="*113*R*A bank deposit of 40000 RWF has been added to your mobile money account." readable_date="" />
  <sms protocol="0" address="M-Money" date="" type="1" body="no date at all" readable_date="yesterday" />
  <sms protocol="0" address="M-Money" date="1715351458724" type="1" readable_date="10 May 2024 4:30:58 PM" />
</smses>`

func TestRead_ParsesMessagesAndSkipsMalformed(t *testing.T) {
	res, err := Read(strings.NewReader(sampleExport), time.UTC)
	require.NoError(t, err)

	require.Len(t, res.Messages, 2)
	assert.Contains(t, res.Messages[0].Body, "You have received 2000 RWF")
	assert.Equal(t, time.Date(2024, 5, 10, 16, 30, 51, 0, time.UTC), res.Messages[0].SentAt)
	// readable_date empty: falls back to epoch millis
	assert.Equal(t, time.UnixMilli(1715351458724).UTC(), res.Messages[1].SentAt)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, Skip{Index: 2, Reason: "missing or invalid send date"}, res.Skipped[0])
	assert.Equal(t, Skip{Index: 3, Reason: "missing body"}, res.Skipped[1])
}

func TestRead_ReadableDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("CAT", 2*60*60)
	doc := `<smses><sms body="x" readable_date="15 Jan 2024 12:30:00 PM" /></smses>`

	res, err := Read(strings.NewReader(doc), loc)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), res.Messages[0].SentAt)
}

func TestRead_MalformedXMLIsFatal(t *testing.T) {
	_, err := Read(strings.NewReader(`<smses><sms body="x" readable_date="15 Jan 2024 12:30:00 PM">`), time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceRead))

	_, err = Read(strings.NewReader(""), time.UTC)
	assert.True(t, errors.Is(err, ErrSourceRead))
}

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))

	rc, err := Open(t.Context(), path)
	require.NoError(t, err)
	defer rc.Close()

	res, err := Read(rc, time.UTC)
	require.NoError(t, err)
	assert.Len(t, res.Messages, 2)

	_, err = Open(t.Context(), filepath.Join(t.TempDir(), "missing.xml"))
	assert.True(t, errors.Is(err, ErrSourceRead))
}

func TestParseGCSURI(t *testing.T) {
	b, o, err := ParseGCSURI("gs://exports/2024/dump.xml")
	require.NoError(t, err)
	assert.Equal(t, "exports", b)
	assert.Equal(t, "2024/dump.xml", o)

	for _, bad := range []string{"gs://bucket", "gs:///obj", "s3://bucket/obj"} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}
