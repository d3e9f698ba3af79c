// Package advisor is the boundary to the text-generation collaborator that
// categorizes expenses and writes advice. Callers must treat every method as
// best-effort: on any failure they substitute the Fallback* values and carry
// on, so a down model never blocks a money operation.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fintrack/models"
)

// ExpenseAnalysis is the structured categorization result for one expense.
type ExpenseAnalysis struct {
	SuggestedCategory string   `json:"suggestedCategory"`
	Confidence        float64  `json:"confidence"`
	Tags              []string `json:"tags"`
	Insights          string   `json:"insights"`
}

// FinancialAdvice answers a free-form user question against their ledger.
type FinancialAdvice struct {
	Advice               string   `json:"advice"`
	Recommendations      []string `json:"recommendations"`
	SavingsOpportunities []string `json:"savingsOpportunities"`
	Category             string   `json:"category"`
}

// SpendingInsights summarizes patterns across the whole ledger.
type SpendingInsights struct {
	Patterns         []string `json:"patterns"`
	Warnings         []string `json:"warnings"`
	Suggestions      []string `json:"suggestions"`
	SavingsPotential float64  `json:"savingsPotential"`
}

// Advisor is the capability interface handlers depend on.
type Advisor interface {
	AnalyzeExpense(ctx context.Context, description string, amount float64, location string) (ExpenseAnalysis, error)
	FinancialAdvice(ctx context.Context, expenses []models.Expense, question string) (FinancialAdvice, error)
	SpendingInsights(ctx context.Context, expenses []models.Expense) (SpendingInsights, error)
}

// FallbackAnalysis is what an expense gets when the collaborator is
// unavailable: unclassified but never failed.
func FallbackAnalysis() ExpenseAnalysis {
	return ExpenseAnalysis{
		SuggestedCategory: "other",
		Confidence:        0,
		Tags:              []string{},
		Insights:          "Unable to analyze expense automatically.",
	}
}

func FallbackAdvice() FinancialAdvice {
	return FinancialAdvice{
		Advice:               "I'm here to help with your financial questions. Please try asking again.",
		Recommendations:      []string{},
		SavingsOpportunities: []string{},
		Category:             "general",
	}
}

func FallbackInsights() SpendingInsights {
	return SpendingInsights{
		Patterns:         []string{},
		Warnings:         []string{},
		Suggestions:      []string{},
		SavingsPotential: 0,
	}
}

// SummarizeExpenses renders a compact ledger summary for prompt context:
// totals, net, and the top five spending categories.
func SummarizeExpenses(expenses []models.Expense) string {
	var totalExp, totalInc models.Cents
	catTotals := make(map[string]models.Cents)
	for _, e := range expenses {
		switch e.Type {
		case models.TypeExpense:
			totalExp += e.Amount
			catTotals[e.Category] += e.Amount
		case models.TypeIncome:
			totalInc += e.Amount
		}
	}

	type catSum struct {
		name   string
		amount models.Cents
	}
	top := make([]catSum, 0, len(catTotals))
	for name, amt := range catTotals {
		top = append(top, catSum{name, amt})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].amount != top[j].amount {
			return top[i].amount > top[j].amount
		}
		return top[i].name < top[j].name
	})
	if len(top) > 5 {
		top = top[:5]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total Income: $%s\n", totalInc)
	fmt.Fprintf(&b, "Total Expenses: $%s\n", totalExp)
	fmt.Fprintf(&b, "Net: $%s\n\n", totalInc-totalExp)
	b.WriteString("Top Spending Categories:\n")
	for _, c := range top {
		fmt.Fprintf(&b, "- %s: $%s\n", c.name, c.amount)
	}
	fmt.Fprintf(&b, "\nNumber of Transactions: %d\n", len(expenses))
	return b.String()
}
