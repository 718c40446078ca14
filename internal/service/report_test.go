package service

import (
	"context"
	"testing"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

func TestSummaryBalance(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)
	sess := sessionFor("ani")

	for _, in := range []TransactionInput{
		{Type: "Pemasukan", Category: "Lainnya", Amount: amount("100000")},
		{Type: "Pengeluaran", Category: "Makan", Amount: amount("30000")},
		{Type: "Pengeluaran", Category: "Transport", Amount: amount("20000")},
	} {
		if _, err := tracker.RecordTransaction(ctx, sess, in); err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}
	}

	sum, err := tracker.Summary(ctx, sess, AllTimeReport)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !sum.Income.Equal(amount("100000")) || !sum.Expense.Equal(amount("50000")) || !sum.Balance.Equal(amount("50000")) {
		t.Fatalf("income=%s expense=%s balance=%s", sum.Income, sum.Expense, sum.Balance)
	}
	if len(sum.ExpensesByCategory) != 2 || sum.ExpensesByCategory[0].Name != "Makan" || sum.ExpensesByCategory[0].Share != 60 {
		t.Fatalf("expenses = %+v", sum.ExpensesByCategory)
	}
	if sum.Previous != nil {
		t.Fatalf("all-time summary has no previous period")
	}
}

func TestSummaryMonthlyWindow(t *testing.T) {
	ctx := context.Background()
	tracker, doc := newTestTracker(t) // today is 2024-05-15
	doc.SetRows(store.TableTransactions, [][]string{
		store.Schemas[store.TableTransactions],
		{"ani", "2024-05-01", "Pemasukan", "Lainnya", "200", ""},
		{"ani", "2024-05-31", "Pengeluaran", "Makan", "50", ""},
		{"ani", "2024-06-01", "Pengeluaran", "Makan", "999", ""},
		{"ani", "2024-04-10", "Pemasukan", "Lainnya", "100", ""},
		{"ani", "2024-04-11", "Pengeluaran", "Makan", "100", ""},
		{"ani", "tanpa tanggal", "Pengeluaran", "Makan", "7", ""},
		{"budi", "2024-05-02", "Pemasukan", "Lainnya", "5000", ""},
	})

	sum, err := tracker.Summary(ctx, sessionFor("ani"), MonthlyReport)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Period != "Mei 2024" {
		t.Fatalf("period = %q", sum.Period)
	}
	if !sum.Income.Equal(amount("200")) || !sum.Expense.Equal(amount("50")) || sum.Count != 2 {
		t.Fatalf("current = %+v", sum.PeriodTotals)
	}
	if sum.Previous == nil || !sum.Previous.Income.Equal(amount("100")) || !sum.Previous.Expense.Equal(amount("100")) {
		t.Fatalf("previous = %+v", sum.Previous)
	}
	if sum.IncomeChange != 100 || sum.ExpenseChange != -50 {
		t.Fatalf("changes income=%v expense=%v", sum.IncomeChange, sum.ExpenseChange)
	}

	all, _ := tracker.Summary(ctx, sessionFor("ani"), AllTimeReport)
	if !all.Expense.Equal(amount("1156")) {
		t.Fatalf("all-time expense = %s", all.Expense)
	}
}

func TestParseReportType(t *testing.T) {
	cases := map[string]ReportType{"": AllTimeReport, "bulan": MonthlyReport, "Week": WeeklyReport, "day": DailyReport, "tahun": YearlyReport}
	for in, want := range cases {
		got, err := ParseReportType(in)
		if err != nil || got != want {
			t.Fatalf("ParseReportType(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseReportType("decade"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPercentChange(t *testing.T) {
	if got := percentChange(amount("150"), amount("100")); got != 50 {
		t.Fatalf("got %v", got)
	}
	if got := percentChange(amount("5"), amount("0")); got != 100 {
		t.Fatalf("got %v", got)
	}
	if got := percentChange(amount("0"), amount("0")); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestDebtTotals(t *testing.T) {
	ctx := context.Background()
	tracker, doc := newTestTracker(t)
	doc.SetRows(store.TableDebts, [][]string{
		store.Schemas[store.TableDebts],
		{"ani", "2024-05-01", "Budi", "Saya Pinjam", "10000", "Belum Lunas ❌", "", ""},
		{"ani", "2024-05-01", "Cici", "Dia Pinjam", "25000", "Belum", "", ""},
		{"ani", "2024-05-01", "Dodi", "Dia Pinjam", "99999", "Lunas ✅", "", ""},
		{"budi", "2024-05-01", "Ani", "Saya Pinjam", "5", "Belum Lunas ❌", "", ""},
	})

	totals, err := tracker.DebtTotals(ctx, sessionFor("ani"))
	if err != nil {
		t.Fatalf("DebtTotals: %v", err)
	}
	if !totals.IOwe.Equal(amount("10000")) || !totals.OwedToMe.Equal(amount("25000")) || totals.OpenCount != 2 {
		t.Fatalf("totals = %+v", totals)
	}
}
