package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"fintrack/models"
)

// DefaultModelName is the Gemini model used for analysis and advice.
const DefaultModelName = "gemini-2.5-flash"

// Gemini talks to the GenAI API. Credentials come from the environment
// (GEMINI_API_KEY / GOOGLE_API_KEY), same as the client library expects. The
// underlying client is built on first use and shared by every call.
type Gemini struct {
	Model string

	initOnce  sync.Once
	client    *genai.Client
	clientErr error
}

func NewGemini() *Gemini {
	return &Gemini{Model: DefaultModelName}
}

func (g *Gemini) conn(ctx context.Context) (*genai.Client, error) {
	g.initOnce.Do(func() {
		g.client, g.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		})
	})
	return g.client, g.clientErr
}

var _ Advisor = (*Gemini)(nil)

func (g *Gemini) AnalyzeExpense(ctx context.Context, description string, amount float64, location string) (ExpenseAnalysis, error) {
	if location == "" {
		location = "Not specified"
	}
	prompt := "You are a financial categorization expert. Analyze this expense:\n\n" +
		fmt.Sprintf("Description: %q\nAmount: $%.2f\nLocation: %s\n\n", description, amount, location) +
		"Respond with STRICT JSON only, no markdown fences, in this shape:\n" +
		`{"suggestedCategory": "category_name", "confidence": 0.0, "tags": ["tag1"], "insights": "brief insight"}` + "\n\n" +
		"Category must be one of: " + strings.Join(models.DefaultCategories, ", ")

	var out ExpenseAnalysis
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return ExpenseAnalysis{}, err
	}
	if out.SuggestedCategory == "" {
		out.SuggestedCategory = "other"
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	} else if out.Confidence > 1 {
		out.Confidence = 1
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Insights == "" {
		out.Insights = "No specific insights available."
	}
	return out, nil
}

func (g *Gemini) FinancialAdvice(ctx context.Context, expenses []models.Expense, question string) (FinancialAdvice, error) {
	prompt := "You are a professional financial advisor. Answer the user's question using their spending data.\n\n" +
		fmt.Sprintf("User Question: %q\n\nSpending Summary:\n%s\n", question, SummarizeExpenses(expenses)) +
		"Respond with STRICT JSON only, no markdown fences, in this shape:\n" +
		`{"advice": "main advice", "recommendations": ["r1"], "savingsOpportunities": ["o1"], "category": "advice_category"}`

	var out FinancialAdvice
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return FinancialAdvice{}, err
	}
	if out.Advice == "" {
		out.Advice = "I'd be happy to help with your financial questions."
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	if out.SavingsOpportunities == nil {
		out.SavingsOpportunities = []string{}
	}
	if out.Category == "" {
		out.Category = "general"
	}
	return out, nil
}

func (g *Gemini) SpendingInsights(ctx context.Context, expenses []models.Expense) (SpendingInsights, error) {
	prompt := "You are a financial analyst. Identify spending patterns in this data.\n\n" +
		SummarizeExpenses(expenses) + "\n" +
		"Respond with STRICT JSON only, no markdown fences, in this shape:\n" +
		`{"patterns": ["p1"], "warnings": ["w1"], "suggestions": ["s1"], "savingsPotential": 0}`

	var out SpendingInsights
	if err := g.generateJSON(ctx, prompt, &out); err != nil {
		return SpendingInsights{}, err
	}
	if out.Patterns == nil {
		out.Patterns = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	return out, nil
}

// generateJSON sends one prompt and decodes the model's JSON object reply
// into dst, tolerating markdown fences the model was told not to emit.
func (g *Gemini) generateJSON(ctx context.Context, prompt string, dst interface{}) error {
	client, err := g.conn(ctx)
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, nil)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return fmt.Errorf("empty response from model")
	}
	clean := cleanModelJSON(raw)
	if err := json.Unmarshal([]byte(clean), dst); err != nil {
		return fmt.Errorf("unmarshal model JSON: %w (raw: %s)", err, raw)
	}
	return nil
}

// cleanModelJSON strips markdown fences and surrounding junk, keeping the
// outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
