package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
)

// ReportType selects the window of a summary.
type ReportType int

const (
	AllTimeReport ReportType = iota
	DailyReport
	WeeklyReport
	MonthlyReport
	YearlyReport
)

// ParseReportType accepts all, day, week, month and year, plus the
// Indonesian semua, hari, minggu, bulan and tahun. Empty means all.
func ParseReportType(s string) (ReportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "semua":
		return AllTimeReport, nil
	case "day", "daily", "hari":
		return DailyReport, nil
	case "week", "weekly", "minggu":
		return WeeklyReport, nil
	case "month", "monthly", "bulan":
		return MonthlyReport, nil
	case "year", "yearly", "tahun":
		return YearlyReport, nil
	}
	return AllTimeReport, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, s)
}

// CategoryStat is the total of one category within a period.
type CategoryStat struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	// Share is the percentage of the period total.
	Share float64 `json:"share"`
	// TrendPercent compares with the same category in the previous period.
	TrendPercent float64 `json:"trend_percent"`
}

// PeriodTotals sums the transactions of one window.
type PeriodTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

// Summary is the dashboard of one period.
type Summary struct {
	Period string `json:"period"`
	// Start and End bound the window as [Start, End); both are nil for the
	// all-time summary.
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	PeriodTotals
	ExpensesByCategory []CategoryStat `json:"expenses_by_category"`
	IncomeByCategory   []CategoryStat `json:"income_by_category"`

	// Previous is the window of the same length just before this one.
	Previous      *PeriodTotals `json:"previous,omitempty"`
	IncomeChange  float64       `json:"income_change"`
	ExpenseChange float64       `json:"expense_change"`
}

// Summary computes income, expense and balance of the session user for the
// period. The all-time summary includes rows with an unreadable date; a
// windowed one cannot place them and leaves them out.
func (s *FinanceTracker) Summary(ctx context.Context, sess *session.Session, reportType ReportType) (*Summary, error) {
	txs, err := s.ListUserTransactions(ctx, sess)
	if err != nil {
		return nil, err
	}

	if reportType == AllTimeReport {
		current, expenses, income := analyzePeriod(txs)
		return &Summary{
			Period:             formatPeriod(reportType, time.Time{}, time.Time{}),
			PeriodTotals:       current,
			ExpensesByCategory: categoryStats(expenses, nil),
			IncomeByCategory:   categoryStats(income, nil),
		}, nil
	}

	start, end := periodBounds(reportType, s.today())
	prevStart := start.Add(-end.Sub(start))
	if reportType == MonthlyReport {
		prevStart = start.AddDate(0, -1, 0)
	} else if reportType == YearlyReport {
		prevStart = start.AddDate(-1, 0, 0)
	}

	current, expenses, income := analyzePeriod(within(txs, start, end))
	previous, prevExpenses, prevIncome := analyzePeriod(within(txs, prevStart, start))

	return &Summary{
		Period:             formatPeriod(reportType, start, end),
		Start:              &start,
		End:                &end,
		PeriodTotals:       current,
		ExpensesByCategory: categoryStats(expenses, prevExpenses),
		IncomeByCategory:   categoryStats(income, prevIncome),
		Previous:           &previous,
		IncomeChange:       percentChange(current.Income, previous.Income),
		ExpenseChange:      percentChange(current.Expense, previous.Expense),
	}, nil
}

// periodBounds returns the window containing today. Weeks are the last seven
// days including today.
func periodBounds(reportType ReportType, today time.Time) (time.Time, time.Time) {
	switch reportType {
	case DailyReport:
		return today, today.AddDate(0, 0, 1)
	case WeeklyReport:
		return today.AddDate(0, 0, -6), today.AddDate(0, 0, 1)
	case MonthlyReport:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
}

func within(txs []model.Transaction, start, end time.Time) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date == nil || tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// analyzePeriod sums the transactions by type and category. Rows whose type
// is neither income nor expense are ignored.
func analyzePeriod(txs []model.Transaction) (PeriodTotals, map[string]decimal.Decimal, map[string]decimal.Decimal) {
	totals := PeriodTotals{Income: decimal.Zero, Expense: decimal.Zero}
	expenses := make(map[string]decimal.Decimal)
	income := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		txType, err := model.ParseTransactionType(string(tx.Type))
		if err != nil {
			continue
		}
		totals.Count++
		switch txType {
		case model.Income:
			totals.Income = totals.Income.Add(tx.Amount)
			income[tx.Category] = income[tx.Category].Add(tx.Amount)
		case model.Expense:
			totals.Expense = totals.Expense.Add(tx.Amount)
			expenses[tx.Category] = expenses[tx.Category].Add(tx.Amount)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expense)
	return totals, expenses, income
}

// categoryStats orders categories by amount, largest first.
func categoryStats(current, previous map[string]decimal.Decimal) []CategoryStat {
	total := decimal.Zero
	for _, amount := range current {
		total = total.Add(amount)
	}

	stats := make([]CategoryStat, 0, len(current))
	for name, amount := range current {
		share := 0.0
		if !total.IsZero() {
			share = amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		stats = append(stats, CategoryStat{
			Name:         name,
			Amount:       amount,
			Share:        share,
			TrendPercent: percentChange(amount, previous[name]),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Amount.Equal(stats[j].Amount) {
			return stats[i].Amount.GreaterThan(stats[j].Amount)
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// percentChange returns the change from previous to current in percent.
// Growth from zero counts as 100%.
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

var monthNames = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func formatPeriod(reportType ReportType, start, end time.Time) string {
	switch reportType {
	case AllTimeReport:
		return "Semua waktu"
	case DailyReport:
		return start.Format("02.01.2006")
	case WeeklyReport:
		return fmt.Sprintf("%s - %s", start.Format("02.01.2006"), end.AddDate(0, 0, -1).Format("02.01.2006"))
	case MonthlyReport:
		return fmt.Sprintf("%s %d", monthNames[start.Month()-1], start.Year())
	default:
		return start.Format("2006")
	}
}

// DebtTotals sums the unpaid debts of a user by direction.
type DebtTotals struct {
	// IOwe is what the user still has to pay back.
	IOwe decimal.Decimal `json:"i_owe"`
	// OwedToMe is what others still have to pay the user.
	OwedToMe  decimal.Decimal `json:"owed_to_me"`
	OpenCount int             `json:"open_count"`
}

func (s *FinanceTracker) DebtTotals(ctx context.Context, sess *session.Session) (*DebtTotals, error) {
	debts, err := s.ListUserDebts(ctx, sess)
	if err != nil {
		return nil, err
	}
	totals := &DebtTotals{IOwe: decimal.Zero, OwedToMe: decimal.Zero}
	for _, d := range debts {
		if !d.Unpaid() {
			continue
		}
		direction, err := model.ParseDebtDirection(string(d.Direction))
		if err != nil {
			continue
		}
		totals.OpenCount++
		if direction == model.IBorrowed {
			totals.IOwe = totals.IOwe.Add(d.Amount)
		} else {
			totals.OwedToMe = totals.OwedToMe.Add(d.Amount)
		}
	}
	return totals, nil
}
