package charts

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
)

// ChartGenerator renders summaries as PNG images.
type ChartGenerator struct{}

func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

var background = chart.Style{
	Padding: chart.Box{
		Top:    50,
		Left:   50,
		Right:  50,
		Bottom: 50,
	},
	FillColor: chart.ColorWhite,
}

var labelStyle = chart.Style{
	FontSize:  12,
	FontColor: chart.ColorBlack,
}

// FormatRupiah renders an amount with dot thousands separators, as in
// "Rp 1.250.000".
func FormatRupiah(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	digits := amount.Round(0).String()
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + "Rp " + string(out)
}

func rupiahFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return FormatRupiah(decimal.NewFromFloat(f))
}

// GenerateExpenseChart draws one bar per expense category. It returns nil
// when the period has no expenses.
func (g *ChartGenerator) GenerateExpenseChart(summary *service.Summary) ([]byte, error) {
	if summary == nil || !summary.Expense.IsPositive() {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(summary.ExpensesByCategory))
	maxValue := 0.0
	for _, cat := range summary.ExpensesByCategory {
		v := cat.Amount.InexactFloat64()
		if v > maxValue {
			maxValue = v
		}
		bars = append(bars, chart.Value{
			Label: cat.Name,
			Value: v,
			Style: chart.Style{
				StrokeColor: chart.ColorRed,
				FillColor:   chart.ColorRed.WithAlpha(180),
			},
		})
	}

	graph := chart.BarChart{
		Title:      "Pengeluaran per Kategori (" + summary.Period + ")",
		TitleStyle: labelStyle,
		Width:      1000,
		Height:     600,
		BarWidth:   60,
		Background: background,
		XAxis:      labelStyle,
		YAxis: chart.YAxis{
			ValueFormatter: rupiahFormatter,
			Style:          labelStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render expense chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// GenerateCategoryPieChart draws the share of each category of expenses or
// income. Categories under 1% are left out.
func (g *ChartGenerator) GenerateCategoryPieChart(summary *service.Summary, isExpense bool) ([]byte, error) {
	if summary == nil {
		return nil, nil
	}
	categories := summary.ExpensesByCategory
	title := "Distribusi Pengeluaran"
	if !isExpense {
		categories = summary.IncomeByCategory
		title = "Distribusi Pemasukan"
	}

	values := make([]chart.Value, 0, len(categories))
	for _, cat := range categories {
		if cat.Share <= 1.0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", cat.Name, FormatRupiah(cat.Amount), cat.Share),
			Value: cat.Amount.InexactFloat64(),
			Style: labelStyle,
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:      title,
		Width:      800,
		Height:     800,
		Values:     values,
		Background: background,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// GenerateComparisonChart compares income and expense with the previous
// period. It returns nil for the all-time summary or when both periods are
// empty.
func (g *ChartGenerator) GenerateComparisonChart(summary *service.Summary) ([]byte, error) {
	if summary == nil || summary.Previous == nil {
		return nil, nil
	}
	prev := summary.Previous

	bar := func(label string, amount decimal.Decimal, color chart.Style) chart.Value {
		return chart.Value{
			Label: fmt.Sprintf("%s: %s", label, FormatRupiah(amount)),
			Value: amount.InexactFloat64(),
			Style: color,
		}
	}
	bars := []chart.Value{
		bar("Pemasukan (lalu)", prev.Income, chart.Style{StrokeColor: chart.ColorGreen, FillColor: chart.ColorGreen.WithAlpha(100)}),
		bar("Pemasukan (kini)", summary.Income, chart.Style{StrokeColor: chart.ColorGreen, FillColor: chart.ColorGreen}),
		bar("Pengeluaran (lalu)", prev.Expense, chart.Style{StrokeColor: chart.ColorRed, FillColor: chart.ColorRed.WithAlpha(100)}),
		bar("Pengeluaran (kini)", summary.Expense, chart.Style{StrokeColor: chart.ColorRed, FillColor: chart.ColorRed}),
	}
	maxValue := 0.0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}
	if maxValue == 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:      "Perbandingan Periode",
		TitleStyle: labelStyle,
		Width:      1200,
		Height:     600,
		BarWidth:   60,
		Background: background,
		XAxis:      labelStyle,
		YAxis: chart.YAxis{
			ValueFormatter: rupiahFormatter,
			Style:          labelStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render comparison chart: %w", err)
	}
	return buffer.Bytes(), nil
}
