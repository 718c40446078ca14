package repository

import (
	"context"
	"fmt"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

const (
	colUsername = "username"
	colStatus   = "status"
)

// SheetRepository stores users, transactions, goals and debts in the four
// tables of one document. Rows are written in the column order of
// store.Schemas.
type SheetRepository struct {
	users        *RecordTable
	transactions *RecordTable
	goals        *RecordTable
	debts        *RecordTable
}

func NewSheetRepository(doc store.Document) *SheetRepository {
	return &SheetRepository{
		users:        NewRecordTable(doc, store.TableUsers),
		transactions: NewRecordTable(doc, store.TableTransactions),
		goals:        NewRecordTable(doc, store.TableGoals),
		debts:        NewRecordTable(doc, store.TableDebts),
	}
}

func byUser(username string) Predicate {
	return func(r Record) bool {
		return r.Get(colUsername) == username
	}
}

// Users

// GetUsers returns every user row with exactly this username, in sheet
// order. More than one row means a registration race slipped through.
func (r *SheetRepository) GetUsers(ctx context.Context, username string) ([]model.User, error) {
	found, err := r.users.FindBy(ctx, byUser(username))
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	users := make([]model.User, 0, len(found))
	for _, rec := range found {
		users = append(users, model.User{
			Username: rec.Get("username"),
			Password: rec.Get("password"),
			FullName: rec.Get("nama_lengkap"),
		})
	}
	return users, nil
}

func (r *SheetRepository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.users.Append(ctx, []string{user.Username, user.Password, user.FullName}); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Transactions

func (r *SheetRepository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	tx.GenerateRawDate()
	values := []string{tx.Username, tx.RawDate, string(tx.Type), tx.Category, tx.Amount.String(), tx.Note}
	if err := r.transactions.Append(ctx, values); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactions returns the user's transactions in sheet order. Rows of
// other users are never decoded.
func (r *SheetRepository) GetTransactions(ctx context.Context, username string) ([]model.Transaction, error) {
	found, err := r.transactions.FindBy(ctx, byUser(username))
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	out := make([]model.Transaction, 0, len(found))
	for _, rec := range found {
		tx, err := decodeTransaction(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func decodeTransaction(rec Record) (model.Transaction, error) {
	amount, err := model.ParseAmount(rec.Get("nominal"))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %s row %d nominal %q", ErrShapeMismatch, store.TableTransactions, rec.Row, rec.Get("nominal"))
	}
	return model.Transaction{
		Username: rec.Get("username"),
		Date:     model.ParseDate(rec.Get("tanggal")),
		RawDate:  rec.Get("tanggal"),
		Type:     model.TransactionType(rec.Get("tipe")),
		Category: rec.Get("kategori"),
		Amount:   amount,
		Note:     rec.Get("catatan"),
	}, nil
}

// Savings goals

func (r *SheetRepository) CreateGoal(ctx context.Context, goal *model.SavingsGoal) error {
	if goal.RawDeadline == "" && goal.Deadline != nil {
		goal.RawDeadline = model.FormatDate(*goal.Deadline)
	}
	values := []string{goal.Username, goal.Name, goal.Target.String(), goal.Current.String(), goal.RawDeadline}
	if err := r.goals.Append(ctx, values); err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *SheetRepository) GetGoals(ctx context.Context, username string) ([]model.SavingsGoal, error) {
	found, err := r.goals.FindBy(ctx, byUser(username))
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}
	out := make([]model.SavingsGoal, 0, len(found))
	for _, rec := range found {
		target, err := model.ParseAmount(rec.Get("target"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d target %q", ErrShapeMismatch, store.TableGoals, rec.Row, rec.Get("target"))
		}
		// A blank current means nothing was saved yet.
		current := rec.Get("current")
		if current == "" {
			current = "0"
		}
		cur, err := model.ParseAmount(current)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d current %q", ErrShapeMismatch, store.TableGoals, rec.Row, current)
		}
		out = append(out, model.SavingsGoal{
			Username:    rec.Get("username"),
			Name:        rec.Get("nama_target"),
			Target:      target,
			Current:     cur,
			Deadline:    model.ParseDate(rec.Get("deadline")),
			RawDeadline: rec.Get("deadline"),
		})
	}
	return out, nil
}

// Debts

func (r *SheetRepository) CreateDebt(ctx context.Context, debt *model.Debt) error {
	if debt.RawBorrowedOn == "" && debt.BorrowedOn != nil {
		debt.RawBorrowedOn = model.FormatDate(*debt.BorrowedOn)
	}
	if debt.RawDueOn == "" && debt.DueOn != nil {
		debt.RawDueOn = model.FormatDate(*debt.DueOn)
	}
	values := []string{
		debt.Username, debt.RawBorrowedOn, debt.Counterparty, string(debt.Direction),
		debt.Amount.String(), debt.Status, debt.Note, debt.RawDueOn,
	}
	if err := r.debts.Append(ctx, values); err != nil {
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

func (r *SheetRepository) GetDebts(ctx context.Context, username string) ([]model.Debt, error) {
	found, err := r.debts.FindBy(ctx, byUser(username))
	if err != nil {
		return nil, fmt.Errorf("failed to read debts: %w", err)
	}
	out := make([]model.Debt, 0, len(found))
	for _, rec := range found {
		d, err := decodeDebt(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// UpdateDebtStatus sets the status of the first debt of username, in sheet
// order, accepted by match. It reports false when no row matched.
func (r *SheetRepository) UpdateDebtStatus(ctx context.Context, username string, match func(model.Debt) bool, status string) (bool, error) {
	var decodeErr error
	pred := func(rec Record) bool {
		if rec.Get(colUsername) != username {
			return false
		}
		d, err := decodeDebt(rec)
		if err != nil {
			if decodeErr == nil {
				decodeErr = err
			}
			return false
		}
		return match(d)
	}
	ok, err := r.debts.UpdateMatchingCell(ctx, pred, colStatus, status)
	if err != nil {
		return false, fmt.Errorf("failed to update debt status: %w", err)
	}
	if !ok && decodeErr != nil {
		return false, decodeErr
	}
	return ok, nil
}

func decodeDebt(rec Record) (model.Debt, error) {
	amount, err := model.ParseAmount(rec.Get("nominal"))
	if err != nil {
		return model.Debt{}, fmt.Errorf("%w: %s row %d nominal %q", ErrShapeMismatch, store.TableDebts, rec.Row, rec.Get("nominal"))
	}
	return model.Debt{
		Username:      rec.Get("username"),
		BorrowedOn:    model.ParseDate(rec.Get("tanggal")),
		RawBorrowedOn: rec.Get("tanggal"),
		Counterparty:  rec.Get("nama_orang"),
		Direction:     model.DebtDirection(rec.Get("jenis")),
		Amount:        amount,
		Status:        rec.Get("status"),
		Note:          rec.Get("catatan"),
		DueOn:         model.ParseDate(rec.Get("tgl_tempo")),
		RawDueOn:      rec.Get("tgl_tempo"),
	}, nil
}
