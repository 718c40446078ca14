package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/charts"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/model"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

// sender is the part of the Telegram client the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ChatState is what the bot remembers about one chat between updates.
type ChatState struct {
	SessionID string
	// TransactionType and Category hold the /catat choices made so far.
	TransactionType model.TransactionType
	Category        string
	AwaitingAmount  bool
	// Debts is the list shown by the last /hutang; the "Lunas" buttons
	// refer to it by index.
	Debts []model.Debt
}

type Bot struct {
	client   *tgbotapi.BotAPI
	api      sender
	service  *service.FinanceTracker
	sessions *session.Manager
	charts   *charts.ChartGenerator

	mu     sync.Mutex
	states map[int64]*ChatState
}

// NewBot connects to Telegram with token.
func NewBot(token string, tracker *service.FinanceTracker, sessions *session.Manager) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	b := newBot(client, tracker, sessions)
	b.client = client
	return b, nil
}

func newBot(api sender, tracker *service.FinanceTracker, sessions *session.Manager) *Bot {
	return &Bot{
		api:      api,
		service:  tracker,
		sessions: sessions,
		charts:   charts.NewChartGenerator(),
		states:   make(map[int64]*ChatState),
	}
}

// Start receives updates by long polling until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no telegram client")
	}
	log.Printf("INFO: Authorized on account %s", b.client.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.client.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				log.Printf("ERROR: Failed to handle update %d: %v", update.UpdateID, err)
			}
		}
	}
}

// HandleWebhook processes one update delivered by a webhook.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		return nil
	case update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	default:
		return b.handleMessage(ctx, update.Message)
	}
}

// state returns the state of a chat, creating it on first use.
func (b *Bot) state(chatID int64) *ChatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[chatID]
	if !ok {
		st = &ChatState{}
		b.states[chatID] = st
	}
	return st
}

// currentSession returns the live session of the chat, or nil after logout
// or expiry.
func (b *Bot) currentSession(chatID int64) *session.Session {
	st := b.state(chatID)
	b.mu.Lock()
	id := st.SessionID
	b.mu.Unlock()
	sess, ok := b.sessions.Get(id)
	if !ok {
		return nil
	}
	return sess
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// request performs a call whose failure must not stop the update.
func (b *Bot) request(c tgbotapi.Chattable, what string) {
	if _, err := b.api.Request(c); err != nil {
		log.Printf("ERROR: Failed to %s: %v", what, err)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.send(tgbotapi.NewMessage(chatID, text))
}

// sendError tells the user what went wrong. Outages and rejected logins get
// different messages.
func (b *Bot) sendError(chatID int64, err error) error {
	return b.sendText(chatID, "❌ "+errorText(err))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return "Database sedang tidak bisa diakses. Coba lagi nanti."
	case errors.Is(err, service.ErrAlreadyExists):
		return "Username sudah dipakai."
	case errors.Is(err, service.ErrInvalidInput):
		return "Input tidak valid: " + err.Error()
	case errors.Is(err, service.ErrNotFound):
		return "Data tidak ditemukan."
	default:
		log.Printf("ERROR: %v", err)
		return "Terjadi kesalahan. Coba lagi nanti."
	}
}
