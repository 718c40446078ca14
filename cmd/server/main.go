package main

import (
	"log"
	"net/http"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/api"
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

	tokens, err := api.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	sessions, err := session.NewManager(cfg.SessionTTL)
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()

	repo := repository.NewSheetRepository(store.Open(cfg))
	tracker := service.NewFinanceTracker(repo, cfg.PasswordHashing)
	router := api.NewRouter(api.NewHandler(tracker, sessions, tokens), cfg.AllowedOrigins)

	log.Printf("INFO: Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
