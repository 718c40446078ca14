package charts

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func testSummary() *service.Summary {
	return &service.Summary{
		Period: "Mei 2024",
		PeriodTotals: service.PeriodTotals{
			Income:  decimal.NewFromInt(100000),
			Expense: decimal.NewFromInt(50000),
			Balance: decimal.NewFromInt(50000),
			Count:   3,
		},
		ExpensesByCategory: []service.CategoryStat{
			{Name: "Makan", Amount: decimal.NewFromInt(30000), Share: 60},
			{Name: "Transport", Amount: decimal.NewFromInt(20000), Share: 40},
		},
		IncomeByCategory: []service.CategoryStat{
			{Name: "Lainnya", Amount: decimal.NewFromInt(100000), Share: 100},
		},
		Previous: &service.PeriodTotals{
			Income:  decimal.NewFromInt(80000),
			Expense: decimal.NewFromInt(60000),
		},
	}
}

func TestGenerateExpenseChart(t *testing.T) {
	png, err := NewChartGenerator().GenerateExpenseChart(testSummary())
	if err != nil {
		t.Fatalf("GenerateExpenseChart: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestGenerateExpenseChartEmpty(t *testing.T) {
	png, err := NewChartGenerator().GenerateExpenseChart(&service.Summary{})
	if err != nil || png != nil {
		t.Fatalf("expected nil chart, got %d bytes err=%v", len(png), err)
	}
}

func TestGenerateCategoryPieChart(t *testing.T) {
	png, err := NewChartGenerator().GenerateCategoryPieChart(testSummary(), true)
	if err != nil {
		t.Fatalf("GenerateCategoryPieChart: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestGenerateComparisonChart(t *testing.T) {
	g := NewChartGenerator()
	png, err := g.GenerateComparisonChart(testSummary())
	if err != nil || !bytes.HasPrefix(png, pngMagic) {
		t.Fatalf("GenerateComparisonChart: %d bytes err=%v", len(png), err)
	}

	s := testSummary()
	s.Previous = nil
	if png, err := g.GenerateComparisonChart(s); err != nil || png != nil {
		t.Fatalf("all-time summary must not have a comparison chart")
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[string]string{
		"0":        "Rp 0",
		"999":      "Rp 999",
		"1000":     "Rp 1.000",
		"1250000":  "Rp 1.250.000",
		"-15000":   "-Rp 15.000",
		"2500.5":   "Rp 2.501",
		"100000.4": "Rp 100.000",
	}
	for in, want := range cases {
		if got := FormatRupiah(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatRupiah(%s) = %q, want %q", in, got, want)
		}
	}
}
