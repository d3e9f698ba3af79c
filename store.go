package main

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrack/models"
)

// ErrNotFound marks a lookup that matched no row owned by the caller. Absent
// ids and other users' rows are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// ExpenseFilters are the optional listing criteria. All supplied criteria
// combine with AND; Search checks description OR location.
type ExpenseFilters struct {
	Category  string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Tags      []string
	Location  string
}

// listExpenses returns the owner's expenses matching all supplied filters,
// ordered by occurrence date descending with the store-assigned id as a
// stable tiebreaker. The owner filter is unconditional: no filter combination
// can reach another user's rows.
func listExpenses(userID uint, f ExpenseFilters) ([]models.Expense, error) {
	q := db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.StartDate != nil {
		q = q.Where("occurred_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("occurred_at <= ?", *f.EndDate)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(description) LIKE ? OR LOWER(location) LIKE ?", needle, needle)
	}
	if f.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}

	var items []models.Expense
	if err := q.Order("occurred_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	// Tags are a serialized column, so the set-intersection check runs here
	// rather than in SQL. Order within the tag list is irrelevant.
	if len(f.Tags) > 0 {
		filtered := items[:0]
		for _, e := range items {
			if tagsIntersect(e.Tags, f.Tags) {
				filtered = append(filtered, e)
			}
		}
		items = filtered
	}
	return items, nil
}

func tagsIntersect(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// getExpense fetches one expense scoped to its owner.
func getExpense(id, userID uint) (models.Expense, error) {
	var e models.Expense
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Expense{}, ErrNotFound
	}
	return e, err
}

// allExpensesFor fetches the user's complete ledger, newest first. The
// aggregation engine and the AI summarizer recompute from this on every call.
func allExpensesFor(userID uint) ([]models.Expense, error) {
	return listExpenses(userID, ExpenseFilters{})
}

// deleteAllUserData irreversibly removes every owned record. The user row
// itself survives so the account keeps working afterwards.
func deleteAllUserData(userID uint) error {
	for _, m := range []interface{}{
		&models.Notification{},
		&models.Category{},
		&models.Goal{},
		&models.Budget{},
		&models.Expense{},
	} {
		if err := db.Where("user_id = ?", userID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
