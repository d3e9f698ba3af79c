package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/models"
)

// UserDataExport is the full-fidelity dump a user can download. Shapes match
// the stored records; amounts carry two fractional digits.
type UserDataExport struct {
	User       models.User       `json:"user"`
	Expenses   []models.Expense  `json:"expenses"`
	Budgets    []models.Budget   `json:"budgets"`
	Goals      []models.Goal     `json:"goals"`
	Categories []models.Category `json:"categories"`
}

func exportDataHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	out := UserDataExport{User: *user}
	var err error
	if out.Expenses, err = allExpensesFor(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	if err = db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&out.Budgets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	if err = db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&out.Goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	if err = db.Where("user_id = ?", user.ID).Order("name").Find(&out.Categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="expense-data-%d.json"`, time.Now().Unix()))
	c.JSON(http.StatusOK, out)
}

// deleteAllDataHandler wipes every owned record. Irreversible and immediate.
func deleteAllDataHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if err := deleteAllUserData(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	logger.Info().Uint("user_id", user.ID).Msg("all user data deleted")
	c.JSON(http.StatusOK, gin.H{"message": "all user data deleted successfully"})
}
