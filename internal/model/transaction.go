package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the literal stored in the tipe column.
type TransactionType string

const (
	Income  TransactionType = "Pemasukan"
	Expense TransactionType = "Pengeluaran"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType accepts the stored literal, a UI label such as
// "Pengeluaran 📤" (only the token before the first space counts) or the
// English names Income and Expense.
func ParseTransactionType(s string) (TransactionType, error) {
	token := strings.TrimSpace(s)
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	switch strings.ToLower(token) {
	case "pemasukan", "income":
		return Income, nil
	case "pengeluaran", "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is one row of the transaksi sheet. It has no id; its identity
// is its position in the sheet.
type Transaction struct {
	Username string          `json:"username"`
	Date     *time.Time      `json:"date"`
	RawDate  string          `json:"raw_date"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

// GenerateRawDate fills RawDate from Date when only the parsed date is set.
func (t *Transaction) GenerateRawDate() {
	if t.RawDate == "" && t.Date != nil {
		t.RawDate = FormatDate(*t.Date)
	}
}
