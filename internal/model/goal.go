package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsGoal is one row of the celengan sheet. Current is written as zero
// and nothing increments it; contributions are not tracked.
type SavingsGoal struct {
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Target      decimal.Decimal `json:"target"`
	Current     decimal.Decimal `json:"current"`
	Deadline    *time.Time      `json:"deadline"`
	RawDeadline string          `json:"raw_deadline"`
}
