package source

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/momo-analytics/momo-backend/internal/models"
)

// ErrSourceRead marks a fatal problem with the export as a whole.
var ErrSourceRead = errors.New("source read failed")

// ReadableDateLayout is the format of the readable_date attribute in SMS backups.
const ReadableDateLayout = "2 Jan 2006 3:04:05 PM"

// Skip records a message element that could not become a RawMessage.
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type Result struct {
	Messages []models.RawMessage
	Skipped  []Skip
}

type smsElement struct {
	Body         *string `xml:"body,attr"`
	ReadableDate string  `xml:"readable_date,attr"`
	Date         string  `xml:"date,attr"`
}

// Read decodes an SMS backup export (<smses><sms .../></smses>). Malformed XML
// aborts with ErrSourceRead; individual unusable messages are reported in Skipped.
// Readable dates carry no zone and are interpreted in loc.
func Read(r io.Reader, loc *time.Location) (Result, error) {
	if loc == nil {
		loc = time.UTC
	}
	dec := xml.NewDecoder(r)
	var res Result
	idx := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrSourceRead, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "sms" {
			continue
		}
		var el smsElement
		if err := dec.DecodeElement(&el, &se); err != nil {
			return Result{}, fmt.Errorf("%w: message %d: %v", ErrSourceRead, idx, err)
		}
		msg, reason := el.toRaw(loc)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{Index: idx, Reason: reason})
		} else {
			res.Messages = append(res.Messages, msg)
		}
		idx++
	}
	if !sawRoot {
		return Result{}, fmt.Errorf("%w: no root element", ErrSourceRead)
	}
	return res, nil
}

func (el smsElement) toRaw(loc *time.Location) (models.RawMessage, string) {
	if el.Body == nil || strings.TrimSpace(*el.Body) == "" {
		return models.RawMessage{}, "missing body"
	}
	sentAt, ok := parseSentAt(el.ReadableDate, el.Date, loc)
	if !ok {
		return models.RawMessage{}, "missing or invalid send date"
	}
	return models.RawMessage{Body: *el.Body, SentAt: sentAt}, ""
}

func parseSentAt(readable, epochMillis string, loc *time.Location) (time.Time, bool) {
	if readable = strings.TrimSpace(readable); readable != "" {
		if t, err := time.ParseInLocation(ReadableDateLayout, readable, loc); err == nil {
			return t.UTC(), true
		}
	}
	if ms, err := strconv.ParseInt(strings.TrimSpace(epochMillis), 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
