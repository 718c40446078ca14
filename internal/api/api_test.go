package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/config"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/repository"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/service"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/session"
	"github.com/liaanastasya321-oss/Dompet-Mahasiswa/internal/store"
)

func newTestServer(t *testing.T, doc store.Document) *httptest.Server {
	return newTestServerWithOrigins(t, doc, []string{"*"})
}

func newTestServerWithOrigins(t *testing.T, doc store.Document, origins []string) *httptest.Server {
	t.Helper()
	sessions, err := session.NewManager(time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(sessions.Close)
	tokens, err := NewTokenIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	tracker := service.NewFinanceTracker(repository.NewSheetRepository(doc), config.HashingBcrypt)
	srv := httptest.NewServer(NewRouter(NewHandler(tracker, sessions, tokens), origins))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "password": "rahasia", "full_name": "Ani Lestari",
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": "rahasia",
	})
	expectStatus(t, resp, http.StatusOK)
	var out struct {
		Token    string `json:"token"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if out.Token == "" || out.FullName != "Ani Lestari" {
		t.Fatalf("login response = %+v", out)
	}
	return out.Token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	resp := do(t, srv, http.MethodGet, "/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestCORS(t *testing.T) {
	srv := newTestServerWithOrigins(t, store.NewMemoryDocument(store.Schemas), []string{"https://dompet.example"})

	preflight := func(origin string) *http.Response {
		req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("OPTIONS: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := preflight("https://dompet.example")
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://dompet.example" {
		t.Fatalf("allowed origin header = %q", got)
	}
	resp = preflight("https://evil.example")
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin got %q", got)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))

	expectStatus(t, do(t, srv, http.MethodGet, "/api/transactions", "", nil), http.StatusUnauthorized)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/transactions", "garbage", nil), http.StatusUnauthorized)

	token := registerAndLogin(t, srv, "ani")

	resp := do(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"username": "ani", "password": "lain", "full_name": "Ani",
	})
	expectStatus(t, resp, http.StatusConflict)

	resp = do(t, srv, http.MethodPost, "/api/register", "", map[string]string{"username": "", "password": "x"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"username": "ani", "password": "salah"})
	expectStatus(t, resp, http.StatusUnauthorized)

	expectStatus(t, do(t, srv, http.MethodGet, "/api/transactions", token, nil), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/logout", token, nil), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/transactions", token, nil), http.StatusUnauthorized)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	registerAndLogin(t, srv, "ani")

	other, _ := NewTokenIssuer("other-secret")
	forged, err := other.Issue(&session.Session{
		ID: "x", Username: "ani", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/api/goals", forged, nil), http.StatusUnauthorized)
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestTransactionsAndSummary(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	token := registerAndLogin(t, srv, "ani")

	// No data yet: no chart.
	expectStatus(t, do(t, srv, http.MethodGet, "/api/summary/chart.png", token, nil), http.StatusNoContent)

	resp := do(t, srv, http.MethodPost, "/api/transactions", token, map[string]string{
		"date": "2024-05-01", "type": "Pemasukan", "category": "Gaji", "amount": "100000", "note": "kiriman",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp = do(t, srv, http.MethodPost, "/api/transactions", token, map[string]interface{}{
		"date": "2024-05-02", "type": "Pengeluaran", "category": "Makan", "amount": 25000,
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, http.MethodPost, "/api/transactions", token, map[string]string{
		"date": "kemarin", "type": "Pengeluaran", "category": "Makan", "amount": "1",
	})
	expectStatus(t, resp, http.StatusBadRequest)
	resp = do(t, srv, http.MethodPost, "/api/transactions", token, map[string]string{
		"type": "Hadiah", "category": "Makan", "amount": "1",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/api/transactions/history", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var history []struct {
		RawDate string `json:"raw_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 2 || history[0].RawDate != "2024-05-02" {
		t.Fatalf("history = %+v", history)
	}

	resp = do(t, srv, http.MethodGet, "/api/summary?period=all", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var summary struct {
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Balance decimal.Decimal `json:"balance"`
		Count   int             `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(75000)) || summary.Count != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	expectStatus(t, do(t, srv, http.MethodGet, "/api/summary?period=decade", token, nil), http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/api/summary/chart.png", token, nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	expectStatus(t, do(t, srv, http.MethodGet, "/api/summary/chart.png?kind=pie", token, nil), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/summary/chart.png?kind=radar", token, nil), http.StatusBadRequest)
}

func TestTransactionsAreScopedToUser(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	ani := registerAndLogin(t, srv, "ani")
	budi := registerAndLogin(t, srv, "budi")

	resp := do(t, srv, http.MethodPost, "/api/transactions", ani, map[string]string{
		"type": "Pengeluaran", "category": "Makan", "amount": "10000",
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, http.MethodGet, "/api/transactions", budi, nil)
	expectStatus(t, resp, http.StatusOK)
	var txs []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("budi sees %d transactions", len(txs))
	}
}

func TestDebts(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	token := registerAndLogin(t, srv, "ani")

	resp := do(t, srv, http.MethodPost, "/api/debts", token, map[string]string{
		"counterparty": "Budi", "direction": "dia", "amount": "50000", "due_on": "2024-06-01",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp = do(t, srv, http.MethodPost, "/api/debts", token, map[string]string{
		"counterparty": "Citra", "direction": "saya", "amount": "20000",
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = do(t, srv, http.MethodGet, "/api/debts/totals", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var totals struct {
		IOwe      decimal.Decimal `json:"i_owe"`
		OwedToMe  decimal.Decimal `json:"owed_to_me"`
		OpenCount int             `json:"open_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if totals.OpenCount != 2 || !totals.IOwe.Equal(decimal.NewFromInt(20000)) || !totals.OwedToMe.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("totals = %+v", totals)
	}

	paid := map[string]string{"counterparty": "Budi", "amount": "50000.00"}
	expectStatus(t, do(t, srv, http.MethodPost, "/api/debts/paid", token, paid), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/debts/paid", token, paid), http.StatusNotFound)

	resp = do(t, srv, http.MethodGet, "/api/debts", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var debts []struct {
		Counterparty string `json:"counterparty"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&debts); err != nil {
		t.Fatalf("decode debts: %v", err)
	}
	if len(debts) != 2 || debts[0].Status != "Lunas ✅" || debts[1].Status != "Belum Lunas ❌" {
		t.Fatalf("debts = %+v", debts)
	}
}

func TestGoals(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryDocument(store.Schemas))
	token := registerAndLogin(t, srv, "ani")

	resp := do(t, srv, http.MethodPost, "/api/goals", token, map[string]string{
		"name": "Laptop", "target": "5000000", "deadline": "2024-12-31",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp = do(t, srv, http.MethodPost, "/api/goals", token, map[string]string{
		"name": "Laptop", "target": "5000000", "deadline": "akhir tahun",
	})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/api/goals", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var goals []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&goals); err != nil {
		t.Fatalf("decode goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("goals = %d", len(goals))
	}
}

func TestStoreOutage(t *testing.T) {
	srv := newTestServer(t, store.Unavailable("no credentials"))
	resp := do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"username": "ani", "password": "x"})
	expectStatus(t, resp, http.StatusServiceUnavailable)
	resp = do(t, srv, http.MethodPost, "/api/register", "", map[string]string{"username": "ani", "password": "x"})
	expectStatus(t, resp, http.StatusServiceUnavailable)
}
