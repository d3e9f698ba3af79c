// Package analytics computes the derived dashboard views from a user's
// transaction set. Everything here is a pure function of the rows it is
// handed: callers fetch owner-scoped expenses once and the engine recomputes
// from scratch, so there is never a stale cached aggregate.
package analytics

import (
	"sort"
	"time"

	"fintrack/models"
)

// DashboardStats is the headline card block on the dashboard. Amounts are
// calendar-month sums over OccurredAt; the change percentages compare against
// the immediately preceding month.
type DashboardStats struct {
	TotalBalance      models.Cents `json:"totalBalance"`
	ThisMonthExpenses models.Cents `json:"thisMonthExpenses"`
	ThisMonthIncome   models.Cents `json:"thisMonthIncome"`
	SavingsRate       float64      `json:"savingsRate"`
	ExpenseChange     float64      `json:"expenseChange"`
	IncomeChange      float64      `json:"incomeChange"`
}

// CategoryBreakdown is one slice of the expenses-by-category chart.
type CategoryBreakdown struct {
	Category   string       `json:"category"`
	Amount     models.Cents `json:"amount"`
	Percentage float64      `json:"percentage"`
	Color      string       `json:"color"`
}

// SpendingTrend is one month of the trend chart. Rows are grouped by
// (year, month) internally; the short month name is display-only.
type SpendingTrend struct {
	Month    string       `json:"month"`
	Amount   models.Cents `json:"amount"`
	Income   models.Cents `json:"income"`
	Expenses models.Cents `json:"expenses"`

	year int
	mon  time.Month
}

// chartPalette is cycled over breakdown entries in output order.
var chartPalette = []string{
	"hsl(221 83% 53%)",
	"hsl(142 71% 45%)",
	"hsl(0 84% 60%)",
	"hsl(47 96% 53%)",
	"hsl(271 81% 56%)",
}

// ComputeDashboardStats derives the stat block from rows at the given
// reference instant. Month boundaries use the instant's location (server
// calendar, not the user's configured timezone).
//
// A zero prior-month denominator yields a 0% change rather than an infinite
// or undefined delta; same damping for the savings rate when the month has no
// income.
func ComputeDashboardStats(rows []models.Expense, now time.Time) DashboardStats {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfLastMonth := startOfMonth.AddDate(0, -1, 0)

	var thisExp, thisInc, lastExp, lastInc models.Cents
	for _, e := range rows {
		switch {
		case !e.OccurredAt.Before(startOfMonth):
			if e.Type == models.TypeExpense {
				thisExp += e.Amount
			} else if e.Type == models.TypeIncome {
				thisInc += e.Amount
			}
		case !e.OccurredAt.Before(startOfLastMonth):
			if e.Type == models.TypeExpense {
				lastExp += e.Amount
			} else if e.Type == models.TypeIncome {
				lastInc += e.Amount
			}
		}
	}

	stats := DashboardStats{
		TotalBalance:      thisInc - thisExp,
		ThisMonthExpenses: thisExp,
		ThisMonthIncome:   thisInc,
	}
	if lastExp > 0 {
		stats.ExpenseChange = float64(thisExp-lastExp) / float64(lastExp) * 100
	}
	if lastInc > 0 {
		stats.IncomeChange = float64(thisInc-lastInc) / float64(lastInc) * 100
	}
	if thisInc > 0 {
		stats.SavingsRate = float64(thisInc-thisExp) / float64(thisInc) * 100
	}
	return stats
}

// ComputeCategoryBreakdown sums expense-kind rows per category over the
// inclusive [start, end] window. Categories are ordered alphabetically before
// percentages and palette colors are assigned, so the output is deterministic
// for a given row set. Every distinct category gets its own entry.
func ComputeCategoryBreakdown(rows []models.Expense, start, end time.Time) []CategoryBreakdown {
	sums := make(map[string]models.Cents)
	for _, e := range rows {
		if e.Type != models.TypeExpense {
			continue
		}
		if e.OccurredAt.Before(start) || e.OccurredAt.After(end) {
			continue
		}
		sums[e.Category] += e.Amount
	}

	names := make([]string, 0, len(sums))
	var total models.Cents
	for name, amt := range sums {
		names = append(names, name)
		total += amt
	}
	sort.Strings(names)

	out := make([]CategoryBreakdown, 0, len(names))
	for i, name := range names {
		pct := 0.0
		if total > 0 {
			pct = float64(sums[name]) / float64(total) * 100
		}
		out = append(out, CategoryBreakdown{
			Category:   name,
			Amount:     sums[name],
			Percentage: pct,
			Color:      chartPalette[i%len(chartPalette)],
		})
	}
	return out
}

// ComputeSpendingTrends buckets rows by calendar month over the trailing
// monthsBack window ending at now. Months without activity are emitted as
// zero rows so charts stay continuous, and the buckets run oldest first.
func ComputeSpendingTrends(rows []models.Expense, now time.Time, monthsBack int) []SpendingTrend {
	if monthsBack < 0 {
		monthsBack = 0
	}
	// First day of the earliest month in the window. Subtracting months on
	// the normalized date, not via AddDate on now, keeps the window at
	// monthsBack+1 buckets even when now is a month-end day that a shorter
	// month would roll over.
	startDate := time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, now.Location())

	type ym struct {
		year int
		mon  time.Month
	}
	buckets := make(map[ym]*SpendingTrend)
	var out []SpendingTrend

	// Pre-create one bucket per month in the window, first month to current.
	cursor := startDate
	last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for !cursor.After(last) {
		out = append(out, SpendingTrend{
			Month: cursor.Month().String()[:3],
			year:  cursor.Year(),
			mon:   cursor.Month(),
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	for i := range out {
		buckets[ym{out[i].year, out[i].mon}] = &out[i]
	}

	for _, e := range rows {
		if e.OccurredAt.Before(startDate) {
			continue
		}
		b, ok := buckets[ym{e.OccurredAt.Year(), e.OccurredAt.Month()}]
		if !ok {
			continue // after now; outside the chart window
		}
		b.Amount += e.Amount
		switch e.Type {
		case models.TypeExpense:
			b.Expenses += e.Amount
		case models.TypeIncome:
			b.Income += e.Amount
		}
	}
	return out
}
