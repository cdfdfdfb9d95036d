package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TypeStats struct {
	Count         int64           `json:"count"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AverageAmount decimal.Decimal `json:"averageAmount"`
}

type TypeVolume struct {
	Type        TransactionType `json:"type"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type MonthSummary struct {
	Month       string          `json:"month"`
	Income      decimal.Decimal `json:"income"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

type Distribution struct {
	Payments map[TransactionType]decimal.Decimal `json:"payments"`
	Deposits map[TransactionType]decimal.Decimal `json:"deposits"`
}

type ChartData struct {
	TotalVolumeByType []TypeVolume   `json:"totalVolumeByType"`
	MonthlySummary    []MonthSummary `json:"monthlySummary"`
	Distribution      Distribution   `json:"distribution"`
}

type Stats struct {
	TotalTransactions  int64                         `json:"totalTransactions"`
	TotalAmount        decimal.Decimal               `json:"totalAmount"`
	AverageAmount      decimal.Decimal               `json:"averageAmount"`
	TransactionsByType map[TransactionType]TypeStats `json:"transactionsByType"`
	ChartData          ChartData                     `json:"chartData"`
	Incomplete         bool                          `json:"incomplete,omitempty"`
	SkippedTables      []string                      `json:"skippedTables,omitempty"`
}

// NewStats returns zeroed stats with twelve month buckets (Jan..Dec).
func NewStats() Stats {
	months := make([]MonthSummary, 12)
	for i := range months {
		months[i] = MonthSummary{
			Month:       time.Month(i + 1).String()[:3],
			Income:      decimal.Zero,
			Expenditure: decimal.Zero,
		}
	}
	return Stats{
		TotalAmount:        decimal.Zero,
		AverageAmount:      decimal.Zero,
		TransactionsByType: map[TransactionType]TypeStats{},
		ChartData: ChartData{
			TotalVolumeByType: []TypeVolume{},
			MonthlySummary:    months,
			Distribution: Distribution{
				Payments: map[TransactionType]decimal.Decimal{},
				Deposits: map[TransactionType]decimal.Decimal{},
			},
		},
	}
}

// AddType folds one per-type aggregate row into the totals and chart data.
func (s *Stats) AddType(t TransactionType, count int64, total, avg decimal.Decimal) {
	s.TotalTransactions += count
	s.TotalAmount = s.TotalAmount.Add(total)
	s.TransactionsByType[t] = TypeStats{Count: count, TotalAmount: total, AverageAmount: avg}
	if total.IsZero() {
		return
	}
	s.ChartData.TotalVolumeByType = append(s.ChartData.TotalVolumeByType, TypeVolume{Type: t, TotalAmount: total})
	if t.IsIncome() {
		s.ChartData.Distribution.Deposits[t] = total
	} else {
		s.ChartData.Distribution.Payments[t] = total
	}
}

// AddMonth adds a per-type monthly total; month is 1..12.
func (s *Stats) AddMonth(t TransactionType, month int, total decimal.Decimal) {
	if month < 1 || month > 12 {
		return
	}
	m := &s.ChartData.MonthlySummary[month-1]
	if t.IsIncome() {
		m.Income = m.Income.Add(total)
	} else {
		m.Expenditure = m.Expenditure.Add(total)
	}
}

// Finish computes the overall average.
func (s *Stats) Finish() {
	if s.TotalTransactions > 0 {
		s.AverageAmount = s.TotalAmount.Div(decimal.NewFromInt(s.TotalTransactions)).Round(2)
	}
}
