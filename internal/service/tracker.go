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

// Repository is the storage the tracker needs.
type Repository interface {
	GetUsers(ctx context.Context, username string) ([]model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransactions(ctx context.Context, username string) ([]model.Transaction, error)

	CreateGoal(ctx context.Context, goal *model.SavingsGoal) error
	GetGoals(ctx context.Context, username string) ([]model.SavingsGoal, error)

	CreateDebt(ctx context.Context, debt *model.Debt) error
	GetDebts(ctx context.Context, username string) ([]model.Debt, error)
	UpdateDebtStatus(ctx context.Context, username string, match func(model.Debt) bool, status string) (bool, error)
}

// FinanceTracker implements the use cases of the app. It holds no per-user
// state: every user-scoped call takes the caller's session.
type FinanceTracker struct {
	repo    Repository
	hashing string
	now     func() time.Time
}

// NewFinanceTracker creates a tracker. passwordHashing selects how new
// passwords are stored (config.HashingPlain or config.HashingBcrypt).
func NewFinanceTracker(repo Repository, passwordHashing string) *FinanceTracker {
	return &FinanceTracker{
		repo:    repo,
		hashing: passwordHashing,
		now:     time.Now,
	}
}

func (s *FinanceTracker) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func checkSession(sess *session.Session) error {
	if sess == nil || sess.Username == "" {
		return fmt.Errorf("%w: no active session", ErrInvalidInput)
	}
	return nil
}

// TransactionInput is what a user fills in to record a transaction. A nil
// Date means today.
type TransactionInput struct {
	Date     *time.Time
	Type     string
	Category string
	Amount   decimal.Decimal
	Note     string
}

func (s *FinanceTracker) RecordTransaction(ctx context.Context, sess *session.Session, in TransactionInput) (*model.Transaction, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	txType, err := model.ParseTransactionType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	date := s.today()
	if in.Date != nil {
		date = time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, time.UTC)
	}
	tx := &model.Transaction{
		Username: sess.Username,
		Date:     &date,
		Type:     txType,
		Category: category,
		Amount:   in.Amount,
		Note:     in.Note,
	}
	tx.GenerateRawDate()
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// ListUserTransactions returns the session user's transactions in the order
// they were recorded.
func (s *FinanceTracker) ListUserTransactions(ctx context.Context, sess *session.Session) ([]model.Transaction, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	return s.repo.GetTransactions(ctx, sess.Username)
}

// TransactionHistory returns the transactions newest first. Rows with an
// unreadable date come last, in recorded order.
func (s *FinanceTracker) TransactionHistory(ctx context.Context, sess *session.Session) ([]model.Transaction, error) {
	txs, err := s.ListUserTransactions(ctx, sess)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i].Date, txs[j].Date
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
	return txs, nil
}

func (s *FinanceTracker) RecordGoal(ctx context.Context, sess *session.Session, name string, target decimal.Decimal, deadline *time.Time) (*model.SavingsGoal, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: goal name is required", ErrInvalidInput)
	}
	if target.IsNegative() {
		return nil, fmt.Errorf("%w: target must not be negative", ErrInvalidInput)
	}
	goal := &model.SavingsGoal{
		Username: sess.Username,
		Name:     name,
		Target:   target,
		Current:  decimal.Zero,
		Deadline: deadline,
	}
	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *FinanceTracker) ListUserGoals(ctx context.Context, sess *session.Session) ([]model.SavingsGoal, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	return s.repo.GetGoals(ctx, sess.Username)
}

// DebtInput describes a new debt. A nil BorrowedOn means today; an empty
// Status means unpaid.
type DebtInput struct {
	BorrowedOn   *time.Time
	Counterparty string
	Direction    string
	Amount       decimal.Decimal
	Status       string
	Note         string
	DueOn        *time.Time
}

func (s *FinanceTracker) RecordDebt(ctx context.Context, sess *session.Session, in DebtInput) (*model.Debt, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	counterparty := strings.TrimSpace(in.Counterparty)
	if counterparty == "" {
		return nil, fmt.Errorf("%w: counterparty is required", ErrInvalidInput)
	}
	direction, err := model.ParseDebtDirection(in.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	borrowed := s.today()
	if in.BorrowedOn != nil {
		borrowed = *in.BorrowedOn
	}
	status := in.Status
	if status == "" {
		status = model.StatusUnpaid
	}
	debt := &model.Debt{
		Username:     sess.Username,
		BorrowedOn:   &borrowed,
		Counterparty: counterparty,
		Direction:    direction,
		Amount:       in.Amount,
		Status:       status,
		Note:         in.Note,
		DueOn:        in.DueOn,
	}
	if err := s.repo.CreateDebt(ctx, debt); err != nil {
		return nil, err
	}
	return debt, nil
}

func (s *FinanceTracker) ListUserDebts(ctx context.Context, sess *session.Session) ([]model.Debt, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	return s.repo.GetDebts(ctx, sess.Username)
}

// MarkDebtPaid marks the first unpaid debt of the session user with this
// counterparty and amount as paid. When several rows fit, only the first in
// table order changes.
func (s *FinanceTracker) MarkDebtPaid(ctx context.Context, sess *session.Session, counterparty string, amount decimal.Decimal) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	match := func(d model.Debt) bool {
		return d.Counterparty == counterparty && d.Amount.Equal(amount) && d.Unpaid()
	}
	ok, err := s.repo.UpdateDebtStatus(ctx, sess.Username, match, model.StatusPaid)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
