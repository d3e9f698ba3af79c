package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/advisor"
	"fintrack/models"
)

// createExpenseHandler inserts one transaction for the authenticated user.
// When category is omitted the advisor suggests one; if that call fails the
// expense is still created under the fallback category, never rejected.
func createExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Amount      models.Cents `json:"amount"`
		Type        string       `json:"type" binding:"required"`
		Description string       `json:"description" binding:"required"`
		Category    string       `json:"category"`
		OccurredAt  time.Time    `json:"occurredAt" binding:"required"`
		Location    string       `json:"location"`
		Mood        string       `json:"mood"`
		Rating      int          `json:"rating"`
		Tags        []string     `json:"tags"`
		ReceiptURL  string       `json:"receiptUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e := models.Expense{
		UserID:      user.ID,
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
		OccurredAt:  req.OccurredAt,
		Location:    req.Location,
		Mood:        req.Mood,
		Rating:      req.Rating,
		Tags:        req.Tags,
		ReceiptURL:  req.ReceiptURL,
	}

	if e.Category == "" && e.Description != "" {
		analysis, err := ai.AnalyzeExpense(c.Request.Context(), e.Description, e.Amount.Float64(), e.Location)
		if err != nil {
			logger.Warn().Err(err).Str("request_id", c.GetString("request_id")).
				Msg("expense analysis failed, using fallback category")
			analysis = advisor.FallbackAnalysis()
		}
		e.Category = analysis.SuggestedCategory
		if len(e.Tags) == 0 {
			e.Tags = analysis.Tags
		}
	}

	if err := e.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := db.Create(&e).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// listExpensesHandler lists the user's transactions, filtered by any
// combination of query params.
func listExpensesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	f, err := parseExpenseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := listExpenses(user.ID, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func parseExpenseFilters(c *gin.Context) (ExpenseFilters, error) {
	f := ExpenseFilters{
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Search:   c.Query("search"),
		Location: c.Query("location"),
	}
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}
	if v := c.Query("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	return f, nil
}

func getExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	e, err := getExpense(id, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// updateExpenseHandler applies a partial update; owner and id are immutable.
func updateExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	e, err := getExpense(id, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req struct {
		Amount      *models.Cents `json:"amount"`
		Type        *string       `json:"type"`
		Description *string       `json:"description"`
		Category    *string       `json:"category"`
		OccurredAt  *time.Time    `json:"occurredAt"`
		Location    *string       `json:"location"`
		Mood        *string       `json:"mood"`
		Rating      *int          `json:"rating"`
		Tags        *[]string     `json:"tags"`
		ReceiptURL  *string       `json:"receiptUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Type != nil {
		e.Type = *req.Type
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.OccurredAt != nil {
		e.OccurredAt = *req.OccurredAt
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Mood != nil {
		e.Mood = *req.Mood
	}
	if req.Rating != nil {
		e.Rating = *req.Rating
	}
	if req.Tags != nil {
		e.Tags = *req.Tags
	}
	if req.ReceiptURL != nil {
		e.ReceiptURL = *req.ReceiptURL
	}

	if err := e.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := db.Save(&e).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, e)
}

// deleteExpenseHandler removes one transaction. Permanent, no soft delete.
func deleteExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := getExpense(id, user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Expense{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted successfully"})
}
