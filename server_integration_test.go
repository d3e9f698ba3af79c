package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fintrack/advisor"
	"fintrack/currency"
	"fintrack/models"
)

// failingAdvisor simulates an unreachable model so the create-expense path
// must fall back to the neutral categorization.
type failingAdvisor struct{}

func (failingAdvisor) AnalyzeExpense(_ context.Context, _ string, _ float64, _ string) (advisor.ExpenseAnalysis, error) {
	return advisor.ExpenseAnalysis{}, errors.New("model unavailable")
}

func (failingAdvisor) FinancialAdvice(_ context.Context, _ []models.Expense, _ string) (advisor.FinancialAdvice, error) {
	return advisor.FinancialAdvice{}, errors.New("model unavailable")
}

func (failingAdvisor) SpendingInsights(_ context.Context, _ []models.Expense) (advisor.SpendingInsights, error) {
	return advisor.SpendingInsights{}, errors.New("model unavailable")
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var err error
	db, err = gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	migrateAll(db)
	seedDB()

	jwtSecret = []byte("test-secret")
	logger = zerolog.Nop()
	ai = failingAdvisor{}

	// Local rate source so no conversion ever leaves the process.
	rateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{"EUR":0.85,"GBP":0.73}}`)
	}))
	t.Cleanup(rateSrv.Close)
	fx = currency.New()
	fx.SourceURL = rateSrv.URL

	r := gin.Default()
	r.Use(requestIDMiddleware())
	setupRoutes(r)
	return r
}

func loginAs(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, gin.H{"username": username, "password": password}), "")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, gin.H{"username": username, "password": password}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register + login
	token := loginAs(t, r, "user1", "hunter22")

	// 2. Create expense without a category: the advisor is down, so the
	// expense must still land under the fallback category.
	resp := performRequest(r, http.MethodPost, "/api/expenses", jsonBody(t, gin.H{
		"amount":      42.50,
		"type":        "expense",
		"description": "mystery purchase",
		"occurredAt":  time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create uncategorized expense failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created models.Expense
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	if created.Category != "other" {
		t.Fatalf("expected fallback category other, got %q", created.Category)
	}
	firstID := created.ID

	// 3. More transactions for filtering and dashboards.
	fixtures := []gin.H{
		{"amount": 3000.00, "type": "income", "description": "salary", "category": "salary", "occurredAt": time.Now().Add(-90 * time.Minute).Format(time.RFC3339)},
		{"amount": 25.00, "type": "expense", "description": "groceries at market", "category": "food", "occurredAt": time.Now().Add(-60 * time.Minute).Format(time.RFC3339), "tags": []string{"weekly", "essentials"}},
		{"amount": 12.00, "type": "expense", "description": "bus pass", "category": "transport", "occurredAt": time.Now().Add(-30 * time.Minute).Format(time.RFC3339), "location": "Berlin"},
	}
	for _, body := range fixtures {
		resp = performRequest(r, http.MethodPost, "/api/expenses", jsonBody(t, body), token)
		if resp.Code != 200 {
			t.Fatalf("create expense failed status=%d body=%s", resp.Code, resp.Body.String())
		}
	}

	// 4. List newest-first, all four back.
	resp = performRequest(r, http.MethodGet, "/api/expenses", nil, token)
	if resp.Code != 200 {
		t.Fatalf("list expenses failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var listed []models.Expense
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 4 {
		t.Fatalf("expected 4 expenses, got %d", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].OccurredAt.After(listed[i-1].OccurredAt) {
			t.Fatalf("expenses not ordered newest-first at index %d", i)
		}
	}

	// 5. Filters: category, type, search, tags.
	resp = performRequest(r, http.MethodGet, "/api/expenses?category=food", nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Category != "food" {
		t.Fatalf("category filter returned %+v", listed)
	}
	resp = performRequest(r, http.MethodGet, "/api/expenses?type=income", nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Type != models.TypeIncome {
		t.Fatalf("type filter returned %+v", listed)
	}
	resp = performRequest(r, http.MethodGet, "/api/expenses?search=GROCERIES", nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 1 || listed[0].Description != "groceries at market" {
		t.Fatalf("search filter returned %+v", listed)
	}
	resp = performRequest(r, http.MethodGet, "/api/expenses?tags=weekly,essentials", nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 1 {
		t.Fatalf("tags filter returned %+v", listed)
	}

	// 6. Another user must not see or touch user1's records.
	token2 := loginAs(t, r, "user2", "hunter23")
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/api/expenses/%d", firstID), nil, token2)
	if resp.Code != 404 {
		t.Fatalf("expected 404 for foreign expense, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/api/expenses", nil, token2)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 0 {
		t.Fatalf("user2 sees %d foreign expenses", len(listed))
	}

	// 7. Dashboard endpoints.
	resp = performRequest(r, http.MethodGet, "/api/dashboard/stats", nil, token)
	if resp.Code != 200 {
		t.Fatalf("dashboard stats failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var stats map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &stats)
	for _, key := range []string{"totalBalance", "thisMonthExpenses", "thisMonthIncome", "savingsRate", "expenseChange"} {
		if _, ok := stats[key]; !ok {
			t.Fatalf("dashboard stats missing %q: %v", key, stats)
		}
	}
	resp = performRequest(r, http.MethodGet, "/api/dashboard/category-breakdown", nil, token)
	if resp.Code != 200 {
		t.Fatalf("category breakdown failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/dashboard/spending-trends?months=3", nil, token)
	if resp.Code != 200 {
		t.Fatalf("spending trends failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var trends []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &trends)
	if len(trends) != 4 {
		t.Fatalf("expected 4 trend buckets for months=3, got %d", len(trends))
	}

	// 8. AI endpoints degrade to the documented neutral answers, never 5xx.
	resp = performRequest(r, http.MethodPost, "/api/ai/analyze-expense", jsonBody(t, gin.H{"description": "coffee", "amount": 4.5}), token)
	if resp.Code != 200 {
		t.Fatalf("ai analyze failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var analysis advisor.ExpenseAnalysis
	_ = json.Unmarshal(resp.Body.Bytes(), &analysis)
	if analysis.SuggestedCategory != "other" || analysis.Confidence != 0 {
		t.Fatalf("expected fallback analysis, got %+v", analysis)
	}
	resp = performRequest(r, http.MethodPost, "/api/ai/financial-advice", jsonBody(t, gin.H{"question": "how do I save more?"}), token)
	if resp.Code != 200 {
		t.Fatalf("ai advice failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/ai/spending-insights", nil, token)
	if resp.Code != 200 {
		t.Fatalf("ai insights failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 9. Currency conversion against the local rate source.
	resp = performRequest(r, http.MethodPost, "/api/currencies/convert", jsonBody(t, gin.H{"amount": 100, "from": "EUR", "to": "USD"}), token)
	if resp.Code != 200 {
		t.Fatalf("convert failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var conv currency.Conversion
	_ = json.Unmarshal(resp.Body.Bytes(), &conv)
	if conv.ConvertedAmount < 117.6 || conv.ConvertedAmount > 117.7 {
		t.Fatalf("100 EUR -> USD = %v, want ~117.65", conv.ConvertedAmount)
	}
	resp = performRequest(r, http.MethodPost, "/api/currencies/convert", jsonBody(t, gin.H{"amount": 100, "from": "EUR", "to": "XXX"}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for unknown currency, got %d body=%s", resp.Code, resp.Body.String())
	}

	// 10. Budgets and goals CRUD.
	resp = performRequest(r, http.MethodPost, "/api/budgets", jsonBody(t, gin.H{
		"name": "Food budget", "category": "food", "amount": 300.00,
		"period": "monthly", "startDate": time.Now().Format(time.RFC3339),
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create budget failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var budget models.Budget
	_ = json.Unmarshal(resp.Body.Bytes(), &budget)
	resp = performRequest(r, http.MethodPatch, fmt.Sprintf("/api/budgets/%d", budget.ID), jsonBody(t, gin.H{"amount": 250.00}), token)
	if resp.Code != 200 {
		t.Fatalf("update budget failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/goals", jsonBody(t, gin.H{"name": "Vacation", "targetAmount": 1500.00}), token)
	if resp.Code != 200 {
		t.Fatalf("create goal failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 11. Categories: defaults were seeded at registration, duplicates are 409.
	resp = performRequest(r, http.MethodGet, "/api/categories", nil, token)
	var cats []models.Category
	_ = json.Unmarshal(resp.Body.Bytes(), &cats)
	if len(cats) != len(models.DefaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(models.DefaultCategories), len(cats))
	}
	resp = performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, gin.H{"name": "food"}), token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 for duplicate category, got %d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/categories", jsonBody(t, gin.H{"name": "subscriptions", "color": "hsl(271 81% 56%)"}), token)
	if resp.Code != 200 {
		t.Fatalf("create category failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 12. Notifications list is empty but well-formed.
	resp = performRequest(r, http.MethodGet, "/api/notifications", nil, token)
	if resp.Code != 200 {
		t.Fatalf("list notifications failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 13. Preference updates are partial.
	resp = performRequest(r, http.MethodPatch, "/api/auth/user", jsonBody(t, gin.H{"currency": "EUR", "theme": "dark"}), token)
	if resp.Code != 200 {
		t.Fatalf("update user failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var me models.User
	_ = json.Unmarshal(resp.Body.Bytes(), &me)
	if me.Currency != "EUR" || me.Theme != "dark" {
		t.Fatalf("preferences not applied: %+v", me)
	}

	// 14. Export carries everything owned.
	resp = performRequest(r, http.MethodGet, "/api/user/export", nil, token)
	if resp.Code != 200 {
		t.Fatalf("export failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	if cd := resp.Header().Get("Content-Disposition"); cd == "" {
		t.Fatalf("export missing Content-Disposition header")
	}
	var export UserDataExport
	_ = json.Unmarshal(resp.Body.Bytes(), &export)
	if len(export.Expenses) != 4 || len(export.Budgets) != 1 || len(export.Goals) != 1 {
		t.Fatalf("export incomplete: %d expenses, %d budgets, %d goals",
			len(export.Expenses), len(export.Budgets), len(export.Goals))
	}

	// 15. Delete everything; the account itself survives.
	resp = performRequest(r, http.MethodDelete, "/api/user/data", nil, token)
	if resp.Code != 200 {
		t.Fatalf("delete all data failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/expenses", nil, token)
	_ = json.Unmarshal(resp.Body.Bytes(), &listed)
	if len(listed) != 0 {
		t.Fatalf("expenses survived wipe: %d left", len(listed))
	}
	resp = performRequest(r, http.MethodGet, "/api/auth/user", nil, token)
	if resp.Code != 200 {
		t.Fatalf("account should survive data wipe, got %d", resp.Code)
	}

	// 16. Unauthorized access to a protected endpoint is 401.
	unauth := performRequest(r, http.MethodGet, "/api/expenses", nil, "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list, got %d", unauth.Code)
	}
}

func TestFilterIdempotenceAndTiebreak(t *testing.T) {
	r := setupTestServer(t)
	token := loginAs(t, r, "repeater", "hunter22")

	// Two food expenses share the exact same timestamp; the third is noise.
	tie := time.Date(2025, time.August, 20, 9, 0, 0, 0, time.UTC)
	for _, body := range []gin.H{
		{"amount": 10.00, "type": "expense", "description": "lunch", "category": "food", "occurredAt": tie.Format(time.RFC3339)},
		{"amount": 20.00, "type": "expense", "description": "dinner", "category": "food", "occurredAt": tie.Format(time.RFC3339)},
		{"amount": 5.00, "type": "expense", "description": "bus", "category": "transport", "occurredAt": tie.Format(time.RFC3339)},
	} {
		resp := performRequest(r, http.MethodPost, "/api/expenses", jsonBody(t, body), token)
		if resp.Code != 200 {
			t.Fatalf("create expense failed status=%d body=%s", resp.Code, resp.Body.String())
		}
	}

	first := performRequest(r, http.MethodGet, "/api/expenses?category=food", nil, token)
	second := performRequest(r, http.MethodGet, "/api/expenses?category=food", nil, token)
	if first.Code != 200 || second.Code != 200 {
		t.Fatalf("filtered list failed: %d / %d", first.Code, second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("same filter returned different ordered results:\n%s\nvs\n%s",
			first.Body.String(), second.Body.String())
	}

	var listed []models.Expense
	_ = json.Unmarshal(first.Body.Bytes(), &listed)
	if len(listed) != 2 {
		t.Fatalf("expected 2 food expenses, got %d", len(listed))
	}
	// Equal occurrence dates fall back to the store-assigned id, descending.
	if listed[0].ID <= listed[1].ID {
		t.Fatalf("tiebreak not id-descending: %d before %d", listed[0].ID, listed[1].ID)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	r := setupTestServer(t)

	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, gin.H{"username": "rotator", "password": "hunter22"}), "")
	if resp.Code != 200 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, gin.H{"username": "rotator", "password": "hunter22"}), "")
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	refresh, _ := loginResp["refresh_token"].(string)
	if refresh == "" {
		t.Fatalf("no refresh token in login response: %+v", loginResp)
	}

	// Exchange works once and rotates the token.
	resp = performRequest(r, http.MethodPost, "/refresh", jsonBody(t, gin.H{"refresh_token": refresh}), "")
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var rotated map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &rotated)
	newRefresh, _ := rotated["refresh_token"].(string)
	if newRefresh == "" || newRefresh == refresh {
		t.Fatalf("refresh token was not rotated")
	}

	// The old token is dead after rotation.
	resp = performRequest(r, http.MethodPost, "/refresh", jsonBody(t, gin.H{"refresh_token": refresh}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rotated refresh token, got %d", resp.Code)
	}

	// Revoking the new one kills it too.
	resp = performRequest(r, http.MethodPost, "/revoke_refresh", jsonBody(t, gin.H{"refresh_token": newRefresh}), "")
	if resp.Code != 200 {
		t.Fatalf("revoke failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/refresh", jsonBody(t, gin.H{"refresh_token": newRefresh}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked refresh token, got %d", resp.Code)
	}
}
