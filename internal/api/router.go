package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/charts"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
)

// Handler serves the JSON API.
type Handler struct {
	service  *service.FinanceTracker
	sessions *session.Manager
	charts   *charts.ChartGenerator
	tokens   *TokenIssuer
}

func NewHandler(tracker *service.FinanceTracker, sessions *session.Manager, tokens *TokenIssuer) *Handler {
	return &Handler{
		service:  tracker,
		sessions: sessions,
		charts:   charts.NewChartGenerator(),
		tokens:   tokens,
	}
}

// NewRouter mounts the API. allowedOrigins may contain "*" to accept any
// browser origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:         300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		// Protected routes
		r.With(h.RequireSession).Group(func(r chi.Router) {
			r.Post("/logout", h.Logout)

			r.Get("/transactions", h.ListTransactions)
			r.Post("/transactions", h.CreateTransaction)
			r.Get("/transactions/history", h.TransactionHistory)

			r.Get("/summary", h.Summary)
			r.Get("/summary/chart.png", h.SummaryChart)

			r.Get("/goals", h.ListGoals)
			r.Post("/goals", h.CreateGoal)

			r.Get("/debts", h.ListDebts)
			r.Post("/debts", h.CreateDebt)
			r.Get("/debts/totals", h.DebtTotals)
			r.Post("/debts/paid", h.MarkDebtPaid)
		})
	})

	return r
}
