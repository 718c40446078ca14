package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/bot"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/config"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/repository"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// The store connects on first use; the bot keeps answering with an
	// outage message while it is unreachable.
	repo := repository.NewSheetRepository(store.Open(cfg))
	tracker := service.NewFinanceTracker(repo, cfg.PasswordHashing)

	sessions, err := session.NewManager(cfg.SessionTTL)
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()

	b, err := bot.NewBot(cfg.TelegramToken, tracker, sessions)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		log.Fatal(err)
	}
	log.Printf("INFO: Bot stopped")
}
