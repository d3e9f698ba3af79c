package advisor

import (
	"context"
	"strings"
	"testing"
	"time"

	"fintrack/models"
)

func TestFallbackAnalysisContract(t *testing.T) {
	fb := FallbackAnalysis()
	if fb.SuggestedCategory != "other" {
		t.Fatalf("fallback category = %q, want other", fb.SuggestedCategory)
	}
	if fb.Confidence != 0 {
		t.Fatalf("fallback confidence = %v, want 0", fb.Confidence)
	}
	if fb.Tags == nil || len(fb.Tags) != 0 {
		t.Fatalf("fallback tags = %v, want empty non-nil slice", fb.Tags)
	}
	if fb.Insights == "" {
		t.Fatalf("fallback insight must not be empty")
	}
}

func TestSummarizeExpenses(t *testing.T) {
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Expense{
		{Amount: 10000, Type: models.TypeIncome, Category: "salary", OccurredAt: at},
		{Amount: 3000, Type: models.TypeExpense, Category: "food", OccurredAt: at},
		{Amount: 1000, Type: models.TypeExpense, Category: "transport", OccurredAt: at},
	}
	got := SummarizeExpenses(rows)
	for _, want := range []string{
		"Total Income: $100.00",
		"Total Expenses: $40.00",
		"Net: $60.00",
		"- food: $30.00",
		"- transport: $10.00",
		"Number of Transactions: 3",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
	// Largest category listed first.
	if strings.Index(got, "food") > strings.Index(got, "transport") {
		t.Fatalf("categories not ordered by descending amount:\n%s", got)
	}
}

func TestGeminiReusesClient(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	g := NewGemini()
	c1, err := g.conn(context.Background())
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	c2, err := g.conn(context.Background())
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	if c1 != c2 {
		t.Fatalf("client rebuilt between calls")
	}
}

func TestCleanModelJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := cleanModelJSON(tc.in); got != tc.want {
			t.Fatalf("cleanModelJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
