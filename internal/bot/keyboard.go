package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/charts"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
)

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonRecord),
			tgbotapi.NewKeyboardButton(buttonDash),
			tgbotapi.NewKeyboardButton(buttonHistory),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonGoals),
			tgbotapi.NewKeyboardButton(buttonDebts),
		),
	)
}

func typeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Pemasukan 📥", callbackType+string(model.Income)),
			tgbotapi.NewInlineKeyboardButtonData("Pengeluaran 📤", callbackType+string(model.Expense)),
		),
	)
}

// categoryKeyboard lays the category menu out two buttons per row.
func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range model.DefaultCategories {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c, callbackCat+c))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// debtsKeyboard offers a "Lunas" button for every unpaid debt. It reports
// false when there is none.
func debtsKeyboard(debts []model.Debt) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, d := range debts {
		if !d.Unpaid() {
			continue
		}
		label := fmt.Sprintf("Lunas ✅ %d. %s %s", i+1, d.Counterparty, charts.FormatRupiah(d.Amount))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackPaid+strconv.Itoa(i)),
		))
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
