package planner

import (
	"math"
	"time"

	"github.com/Dan9191/market-planner/internal/models"
)

// NoDueDate is the daysLeft sentinel for companies without a due date
const NoDueDate = 999

// DaysLeft returns the whole days from now until due, rounded up.
// Overdue dates yield zero or negative values.
func DaysLeft(due *models.Date, now time.Time) int {
	if due == nil || due.IsZero() {
		return NoDueDate
	}
	return int(math.Ceil(due.Time.Sub(now).Hours() / 24))
}

// Classify maps days until due to a priority tier
func Classify(daysLeft int) models.Priority {
	switch {
	case daysLeft <= 0:
		return models.PriorityOverdue
	case daysLeft <= 7:
		return models.PriorityUrgent
	case daysLeft <= 30:
		return models.PriorityNormal
	default:
		return models.PriorityLow
	}
}

// IsUrgent is true for overdue debts as well as those due within a week
func IsUrgent(daysLeft int) bool {
	return daysLeft <= 7
}
