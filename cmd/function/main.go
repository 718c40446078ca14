package main

import (
	"context"
	"log"
	"sync"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/bot"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/config"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/repository"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

// Request is the API Gateway event carrying a Telegram update.
type Request struct {
	Body string `json:"body"`
}

// Response is returned to API Gateway.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// The bot is built once per instance and reused by warm invocations. Chat
// state and sessions live in memory, so a cold start logs every chat out.
var (
	initOnce sync.Once
	instance *bot.Bot
	initErr  error
)

func setup() (*bot.Bot, error) {
	initOnce.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		sessions, err := session.NewManager(cfg.SessionTTL)
		if err != nil {
			initErr = err
			return
		}
		repo := repository.NewSheetRepository(store.Open(cfg))
		tracker := service.NewFinanceTracker(repo, cfg.PasswordHashing)
		instance, initErr = bot.NewBot(cfg.TelegramToken, tracker, sessions)
	})
	return instance, initErr
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	b, err := setup()
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook(ctx, []byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	log.Printf("ERROR: Failed to handle webhook: %v", err)
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

func main() {
	// Entry point for local runs; the platform calls Handler.
}
