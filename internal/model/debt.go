package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DebtDirection is the literal stored in the jenis column.
type DebtDirection string

const (
	IBorrowed    DebtDirection = "Saya Pinjam"
	TheyBorrowed DebtDirection = "Dia Pinjam"
)

func (d DebtDirection) Valid() bool {
	return d == IBorrowed || d == TheyBorrowed
}

// ParseDebtDirection accepts the stored literal or its first word
// ("saya"/"dia"), case-insensitively.
func ParseDebtDirection(s string) (DebtDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "saya pinjam", "saya", "i borrowed":
		return IBorrowed, nil
	case "dia pinjam", "dia", "they borrowed":
		return TheyBorrowed, nil
	}
	return "", fmt.Errorf("unknown debt direction %q", s)
}

// Status literals. Any status containing "Belum" counts as unpaid; rows
// written by hand may use a shorter form than StatusUnpaid.
const (
	StatusUnpaid = "Belum Lunas ❌"
	StatusPaid   = "Lunas ✅"
)

// IsUnpaid reports whether a stored status means the debt is still open.
func IsUnpaid(status string) bool {
	return strings.Contains(status, "Belum")
}

// Debt is one row of the hutang sheet. It has no id: updates find it by
// (username, counterparty, amount).
type Debt struct {
	Username      string          `json:"username"`
	BorrowedOn    *time.Time      `json:"borrowed_on"`
	RawBorrowedOn string          `json:"raw_borrowed_on"`
	Counterparty  string          `json:"counterparty"`
	Direction     DebtDirection   `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Note          string          `json:"note"`
	DueOn         *time.Time      `json:"due_on"`
	RawDueOn      string          `json:"raw_due_on"`
}

func (d Debt) Unpaid() bool {
	return IsUnpaid(d.Status)
}
