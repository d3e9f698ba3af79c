package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/advisor"
	"fintrack/models"
)

// AI endpoints degrade gracefully: a collaborator failure is logged and the
// documented neutral values are returned, never a 5xx.

func analyzeExpenseHandler(c *gin.Context) {
	if _, ok := getUserFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Description string       `json:"description" binding:"required"`
		Amount      models.Cents `json:"amount"`
		Location    string       `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	analysis, err := ai.AnalyzeExpense(c.Request.Context(), req.Description, req.Amount.Float64(), req.Location)
	if err != nil {
		logger.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("expense analysis failed")
		analysis = advisor.FallbackAnalysis()
	}
	c.JSON(http.StatusOK, analysis)
}

func financialAdviceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := allExpensesFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	adviceResp, err := ai.FinancialAdvice(c.Request.Context(), rows, req.Question)
	if err != nil {
		logger.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("financial advice failed")
		adviceResp = advisor.FallbackAdvice()
	}
	c.JSON(http.StatusOK, adviceResp)
}

func spendingInsightsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	rows, err := allExpensesFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	insights, err := ai.SpendingInsights(c.Request.Context(), rows)
	if err != nil {
		logger.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("spending insights failed")
		insights = advisor.FallbackInsights()
	}
	c.JSON(http.StatusOK, insights)
}
