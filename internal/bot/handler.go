package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/charts"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
)

const (
	textNeedLogin  = "Silakan masuk dulu: /masuk <username> <password>"
	historyLimit   = 10
	callbackType   = "type_"
	callbackCat    = "cat_"
	callbackPaid   = "lunas_"
	buttonRecord   = "📝 Catat"
	buttonDash     = "📊 Dashboard"
	buttonHistory  = "📜 Riwayat"
	buttonGoals    = "🐷 Celengan"
	buttonDebts    = "🤝 Hutang"
	amountHelpText = "Ketik nominal dan keterangan, contoh:\n15000 makan siang"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		return b.handleStart(chatID)
	case "daftar":
		return b.handleRegister(ctx, chatID, args)
	case "masuk":
		return b.handleLogin(ctx, message, args)
	case "keluar":
		return b.handleLogout(chatID)
	case "catat":
		return b.handleRecord(chatID)
	case "riwayat":
		return b.handleHistory(ctx, chatID)
	case "dashboard":
		return b.handleDashboard(ctx, chatID, strings.Join(args, " "))
	case "celengan":
		return b.handleGoals(ctx, chatID)
	case "target":
		return b.handleNewGoal(ctx, chatID, args)
	case "hutang":
		return b.handleDebts(ctx, chatID)
	case "hutang_baru":
		return b.handleNewDebt(ctx, chatID, args)
	default:
		return b.sendText(chatID, "Perintah tidak dikenal. Ketik /start untuk bantuan.")
	}
}

func (b *Bot) handleStart(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID,
		"Selamat datang di Dompet Mahasiswa! 💰\n\n"+
			"/daftar <username> <password> <nama lengkap>\n"+
			"/masuk <username> <password>\n"+
			"/keluar\n\n"+
			"/catat mencatat pemasukan atau pengeluaran\n"+
			"/riwayat transaksi terakhir\n"+
			"/dashboard [hari|minggu|bulan|tahun]\n"+
			"/celengan daftar target tabungan\n"+
			"/target <nominal> <YYYY-MM-DD> <nama target>\n"+
			"/hutang daftar hutang dan piutang\n"+
			"/hutang_baru <saya|dia> <nama> <nominal> [YYYY-MM-DD] [catatan]")
	msg.ReplyMarkup = mainKeyboard()
	return b.send(msg)
}

func (b *Bot) handleRegister(ctx context.Context, chatID int64, args []string) error {
	if len(args) < 3 {
		return b.sendText(chatID, "Format: /daftar <username> <password> <nama lengkap>")
	}
	fullName := strings.Join(args[2:], " ")
	if err := b.service.Register(ctx, args[0], args[1], fullName); err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, "Akun berhasil dibuat! ✅ Silakan /masuk.")
}

func (b *Bot) handleLogin(ctx context.Context, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	// The password should not stay in the chat history.
	b.request(tgbotapi.NewDeleteMessage(chatID, message.MessageID), "delete login message")

	if len(args) != 2 {
		return b.sendText(chatID, "Format: /masuk <username> <password>")
	}
	fullName, err := b.service.Authenticate(ctx, args[0], args[1])
	if errors.Is(err, service.ErrNotFound) {
		return b.sendText(chatID, "❌ Username atau password salah.")
	}
	if err != nil {
		return b.sendError(chatID, err)
	}

	sess, err := b.sessions.Create(args[0], fullName)
	if err != nil {
		return b.sendError(chatID, err)
	}
	st := b.state(chatID)
	b.mu.Lock()
	if st.SessionID != "" {
		b.sessions.Destroy(st.SessionID)
	}
	*st = ChatState{SessionID: sess.ID}
	b.mu.Unlock()

	name := fullName
	if name == "" {
		name = args[0]
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Halo, %s! 👋", name))
	msg.ReplyMarkup = mainKeyboard()
	return b.send(msg)
}

func (b *Bot) handleLogout(chatID int64) error {
	st := b.state(chatID)
	b.mu.Lock()
	id := st.SessionID
	*st = ChatState{}
	b.mu.Unlock()
	if id != "" {
		b.sessions.Destroy(id)
	}
	return b.sendText(chatID, "Kamu sudah keluar. Sampai jumpa! 👋")
}

func (b *Bot) handleRecord(chatID int64) error {
	if b.currentSession(chatID) == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	msg := tgbotapi.NewMessage(chatID, "Jenis transaksi:")
	msg.ReplyMarkup = typeKeyboard()
	return b.send(msg)
}

func (b *Bot) handleHistory(ctx context.Context, chatID int64) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	txs, err := b.service.TransactionHistory(ctx, sess)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(txs) == 0 {
		return b.sendText(chatID, "Belum ada transaksi.")
	}

	var sb strings.Builder
	sb.WriteString("📜 Riwayat transaksi\n\n")
	for i, tx := range txs {
		if i == historyLimit {
			fmt.Fprintf(&sb, "\n…dan %d transaksi lainnya", len(txs)-historyLimit)
			break
		}
		sign := "−"
		if tx.Type == model.Income {
			sign = "+"
		}
		fmt.Fprintf(&sb, "%s %s %s %s", tx.RawDate, tx.Category, sign, charts.FormatRupiah(tx.Amount))
		if tx.Note != "" {
			fmt.Fprintf(&sb, " (%s)", tx.Note)
		}
		sb.WriteString("\n")
	}
	return b.sendText(chatID, sb.String())
}

func (b *Bot) handleDashboard(ctx context.Context, chatID int64, period string) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	reportType, err := service.ParseReportType(period)
	if err != nil {
		return b.sendError(chatID, err)
	}
	summary, err := b.service.Summary(ctx, sess, reportType)
	if err != nil {
		return b.sendError(chatID, err)
	}

	if err := b.sendText(chatID, formatSummary(summary)); err != nil {
		return err
	}
	png, err := b.charts.GenerateExpenseChart(summary)
	if err != nil {
		return fmt.Errorf("failed to generate chart: %w", err)
	}
	if png == nil {
		return nil
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "dashboard.png", Bytes: png})
	return b.send(photo)
}

func formatSummary(s *service.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Dashboard %s\n\n", s.Period)
	fmt.Fprintf(&sb, "💰 Pemasukan: %s%s\n", charts.FormatRupiah(s.Income), formatChange(s, s.IncomeChange))
	fmt.Fprintf(&sb, "💸 Pengeluaran: %s%s\n", charts.FormatRupiah(s.Expense), formatChange(s, s.ExpenseChange))
	fmt.Fprintf(&sb, "💵 Saldo: %s\n", charts.FormatRupiah(s.Balance))
	if len(s.ExpensesByCategory) > 0 {
		sb.WriteString("\nPengeluaran per kategori:\n")
		for _, cat := range s.ExpensesByCategory {
			fmt.Fprintf(&sb, "• %s: %s (%.1f%%)\n", cat.Name, charts.FormatRupiah(cat.Amount), cat.Share)
		}
	}
	return sb.String()
}

func formatChange(s *service.Summary, change float64) string {
	if s.Previous == nil || change == 0 {
		return ""
	}
	if change > 0 {
		return fmt.Sprintf(" (+%.1f%%⬆️)", change)
	}
	return fmt.Sprintf(" (%.1f%%⬇️)", change)
}

func (b *Bot) handleGoals(ctx context.Context, chatID int64) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	goals, err := b.service.ListUserGoals(ctx, sess)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(goals) == 0 {
		return b.sendText(chatID, "Belum ada target. Buat dengan /target <nominal> <YYYY-MM-DD> <nama target>")
	}
	var sb strings.Builder
	sb.WriteString("🐷 Celengan\n\n")
	for _, g := range goals {
		fmt.Fprintf(&sb, "• %s: %s / %s", g.Name, charts.FormatRupiah(g.Current), charts.FormatRupiah(g.Target))
		if g.RawDeadline != "" {
			fmt.Fprintf(&sb, " (tenggat %s)", g.RawDeadline)
		}
		sb.WriteString("\n")
	}
	return b.sendText(chatID, sb.String())
}

func (b *Bot) handleNewGoal(ctx context.Context, chatID int64, args []string) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	if len(args) < 3 {
		return b.sendText(chatID, "Format: /target <nominal> <YYYY-MM-DD> <nama target>")
	}
	target, err := model.ParseAmount(args[0])
	if err != nil {
		return b.sendText(chatID, "Nominal harus berupa angka, contoh: 5000000")
	}
	deadline := model.ParseDate(args[1])
	if deadline == nil {
		return b.sendText(chatID, "Tanggal harus berformat YYYY-MM-DD")
	}
	goal, err := b.service.RecordGoal(ctx, sess, strings.Join(args[2:], " "), target, deadline)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Target %s sebesar %s tersimpan! ✅", goal.Name, charts.FormatRupiah(goal.Target)))
}

func (b *Bot) handleDebts(ctx context.Context, chatID int64) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	debts, err := b.service.ListUserDebts(ctx, sess)
	if err != nil {
		return b.sendError(chatID, err)
	}
	if len(debts) == 0 {
		return b.sendText(chatID, "Tidak ada catatan hutang. Tambah dengan /hutang_baru")
	}
	totals, err := b.service.DebtTotals(ctx, sess)
	if err != nil {
		return b.sendError(chatID, err)
	}

	st := b.state(chatID)
	b.mu.Lock()
	st.Debts = debts
	b.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("🤝 Hutang & piutang\n\n")
	for i, d := range debts {
		fmt.Fprintf(&sb, "%d. %s %s %s (%s)", i+1, d.Counterparty, d.Direction, charts.FormatRupiah(d.Amount), d.Status)
		if d.RawDueOn != "" {
			fmt.Fprintf(&sb, ", jatuh tempo %s", d.RawDueOn)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nHutangku: %s\nPiutangku: %s", charts.FormatRupiah(totals.IOwe), charts.FormatRupiah(totals.OwedToMe))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	if kb, ok := debtsKeyboard(debts); ok {
		msg.ReplyMarkup = kb
	}
	return b.send(msg)
}

func (b *Bot) handleNewDebt(ctx context.Context, chatID int64, args []string) error {
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	if len(args) < 3 {
		return b.sendText(chatID, "Format: /hutang_baru <saya|dia> <nama> <nominal> [YYYY-MM-DD] [catatan]")
	}
	amount, err := model.ParseAmount(args[2])
	if err != nil {
		return b.sendText(chatID, "Nominal harus berupa angka, contoh: 50000")
	}
	in := service.DebtInput{
		Direction:    args[0],
		Counterparty: args[1],
		Amount:       amount,
	}
	rest := args[3:]
	if len(rest) > 0 {
		if due := model.ParseDate(rest[0]); due != nil {
			in.DueOn = due
			rest = rest[1:]
		}
	}
	in.Note = strings.Join(rest, " ")

	debt, err := b.service.RecordDebt(ctx, sess, in)
	if err != nil {
		return b.sendError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("Hutang %s (%s) %s tersimpan! ✅", debt.Counterparty, debt.Direction, charts.FormatRupiah(debt.Amount)))
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Answer first so the button stops spinning.
	b.request(tgbotapi.NewCallback(callback.ID, ""), "answer callback")

	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	st := b.state(chatID)

	switch data := callback.Data; {
	case strings.HasPrefix(data, callbackType):
		txType, err := model.ParseTransactionType(strings.TrimPrefix(data, callbackType))
		if err != nil {
			return b.sendError(chatID, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		}
		b.mu.Lock()
		st.TransactionType = txType
		st.Category = ""
		st.AwaitingAmount = false
		b.mu.Unlock()
		msg := tgbotapi.NewMessage(chatID, "Kategori:")
		msg.ReplyMarkup = categoryKeyboard()
		return b.send(msg)

	case strings.HasPrefix(data, callbackCat):
		b.mu.Lock()
		if st.TransactionType == "" {
			b.mu.Unlock()
			return b.handleRecord(chatID)
		}
		st.Category = strings.TrimPrefix(data, callbackCat)
		st.AwaitingAmount = true
		category := st.Category
		b.mu.Unlock()
		return b.sendText(chatID, fmt.Sprintf("Kategori: %s\n%s", category, amountHelpText))

	case strings.HasPrefix(data, callbackPaid):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, callbackPaid))
		b.mu.Lock()
		var debt model.Debt
		valid := err == nil && idx >= 0 && idx < len(st.Debts)
		if valid {
			debt = st.Debts[idx]
		}
		b.mu.Unlock()
		if !valid {
			return b.sendText(chatID, "Daftar hutang sudah berubah, buka /hutang lagi.")
		}
		err = b.service.MarkDebtPaid(ctx, sess, debt.Counterparty, debt.Amount)
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(chatID, "Hutang itu sudah lunas atau tidak ditemukan.")
		}
		if err != nil {
			return b.sendError(chatID, err)
		}
		return b.sendText(chatID, fmt.Sprintf("Hutang %s %s ditandai lunas ✅", debt.Counterparty, charts.FormatRupiah(debt.Amount)))
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Text {
	case buttonRecord:
		return b.handleRecord(chatID)
	case buttonDash:
		return b.handleDashboard(ctx, chatID, "")
	case buttonHistory:
		return b.handleHistory(ctx, chatID)
	case buttonGoals:
		return b.handleGoals(ctx, chatID)
	case buttonDebts:
		return b.handleDebts(ctx, chatID)
	}

	sess := b.currentSession(chatID)
	if sess == nil {
		return b.sendText(chatID, textNeedLogin)
	}
	st := b.state(chatID)
	b.mu.Lock()
	awaiting, txType, category := st.AwaitingAmount, st.TransactionType, st.Category
	b.mu.Unlock()
	if !awaiting {
		msg := tgbotapi.NewMessage(chatID, "Pilih menu:")
		msg.ReplyMarkup = mainKeyboard()
		return b.send(msg)
	}

	parts := strings.SplitN(strings.TrimSpace(message.Text), " ", 2)
	amount, err := model.ParseAmount(parts[0])
	if err != nil {
		return b.sendText(chatID, "Nominal harus berupa angka. "+amountHelpText)
	}
	note := ""
	if len(parts) == 2 {
		note = strings.TrimSpace(parts[1])
	}

	tx, err := b.service.RecordTransaction(ctx, sess, service.TransactionInput{
		Type:     string(txType),
		Category: category,
		Amount:   amount,
		Note:     note,
	})
	if err != nil {
		return b.sendError(chatID, err)
	}

	b.mu.Lock()
	st.TransactionType, st.Category, st.AwaitingAmount = "", "", false
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s %s %s tersimpan! ✅", tx.Type, tx.Category, charts.FormatRupiah(tx.Amount)))
	msg.ReplyMarkup = mainKeyboard()
	return b.send(msg)
}
