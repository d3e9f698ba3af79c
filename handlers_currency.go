package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/currency"
)

func listCurrenciesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, fx.Supported())
}

// convertCurrencyHandler converts an amount between two codes. An unknown
// code is a client error; a rate-source outage is invisible here because the
// service keeps serving cached rates.
func convertCurrencyHandler(c *gin.Context) {
	if _, ok := getUserFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Amount float64 `json:"amount" binding:"required"`
		From   string  `json:"from" binding:"required"`
		To     string  `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	conv, err := fx.Convert(c.Request.Context(), req.Amount, req.From, req.To)
	if err != nil {
		if errors.Is(err, currency.ErrUnsupportedCurrency) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "conversion failed"})
		return
	}
	c.JSON(http.StatusOK, conv)
}
