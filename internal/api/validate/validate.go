package validate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/momo-analytics/momo-backend/internal/models"
)

const DateLayout = "2006-01-02"

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Date parses a YYYY-MM-DD query value; empty means absent.
func Date(field, value string) (*time.Time, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, &ErrField{Field: field, Msg: "invalid date format, use YYYY-MM-DD"}
	}
	return &t, nil
}

// Amount parses a decimal query value; empty means absent.
func Amount(field, value string) (*decimal.Decimal, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, &ErrField{Field: field, Msg: "must be a number"}
	}
	return &d, nil
}

// Filter builds a QueryFilter from request query parameters.
func Filter(q url.Values) (models.QueryFilter, error) {
	var (
		f    models.QueryFilter
		errs Errs
	)
	collect := func(e *ErrField) {
		if e != nil {
			errs = append(errs, *e)
		}
	}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		f.Type = &v
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		f.FreeText = &v
	}

	var e *ErrField
	f.Date, e = Date("date", q.Get("date"))
	collect(e)
	f.StartDate, e = Date("startDate", q.Get("startDate"))
	collect(e)
	f.EndDate, e = Date("endDate", q.Get("endDate"))
	collect(e)
	f.MinAmount, e = Amount("minAmount", q.Get("minAmount"))
	collect(e)
	f.MaxAmount, e = Amount("maxAmount", q.Get("maxAmount"))
	collect(e)

	if len(errs) > 0 {
		return models.QueryFilter{}, errs
	}
	return f, nil
}

// Page reads page and limit. Missing or non-numeric values take the defaults
// before clamping.
func Page(q url.Values) models.Page {
	return models.NewPage(intOr(q.Get("page"), 1), intOr(q.Get("limit"), models.DefaultPageLimit))
}

func intOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
