package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/handler"
	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/receipt"
	"github.com/Dan9191/installment-ledger/internal/seed"
	"github.com/Dan9191/installment-ledger/internal/service"
	"github.com/Dan9191/installment-ledger/internal/utils/email"
)

type stubRates struct{}

func (stubRates) GetSavingsRate(ctx context.Context) (*models.SavingsRate, error) {
	return &models.SavingsRate{Date: "2019-10-01", Percent: 0.3434}, nil
}

type disabledMailer struct{}

func (disabledMailer) SendReceipt(to string, r *receipt.Receipt) error {
	return email.ErrDisabled
}

func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := &config.Config{JWTSecret: "jwt", ReceiptSecret: "receipt", OperatorPasswordHash: string(hash)}

	loader := seed.NewLoader(12)
	schedules, err := loader.Schedules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := service.NewService(ledger.New(schedules), loader, stubRates{}, disabledMailer{}, log, cfg)
	srv := httptest.NewServer(handler.NewHandler(svc).Router(cfg))
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/login", "", `{"password":"s3nha"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return srv, body["token"]
}

func do(t *testing.T, srv *httptest.Server, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestEditAndStatistics(t *testing.T) {
	srv, token := newServer(t)

	resp := do(t, srv, http.MethodPatch, "/buyers/ively/installments/1", token, `{"field":"savings_rate","value":"1.0"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var inst models.Installment
	if err := json.NewDecoder(resp.Body).Decode(&inst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(inst.TotalRate-0.015) > 1e-9 {
		t.Errorf("unexpected total rate %v", inst.TotalRate)
	}

	stats := do(t, srv, http.MethodGet, "/buyers/ively/statistics", "", "")
	defer stats.Body.Close()
	var got models.Statistics
	if err := json.NewDecoder(stats.Body).Decode(&got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 12 || got.Paid != 3 || got.Overdue != 1 {
		t.Errorf("unexpected statistics %+v", got)
	}
}

func TestEditErrors(t *testing.T) {
	srv, token := newServer(t)

	cases := []struct {
		name  string
		path  string
		token string
		body  string
		want  int
	}{
		{"no token", "/buyers/ively/installments/1", "", `{"field":"status","value":"Pago"}`, http.StatusUnauthorized},
		{"bad rate", "/buyers/ively/installments/1", token, `{"field":"savings_rate","value":"abc"}`, http.StatusBadRequest},
		{"out of range", "/buyers/ively/installments/999", token, `{"field":"status","value":"Pago"}`, http.StatusNotFound},
		{"unknown buyer", "/buyers/maria/installments/1", token, `{"field":"status","value":"Pago"}`, http.StatusNotFound},
		{"unknown field", "/buyers/ively/installments/1", token, `{"field":"number","value":"3"}`, http.StatusBadRequest},
		{"bad body", "/buyers/ively/installments/1", token, `{"field":`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPatch, tc.path, tc.token, tc.body)
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestListInstallments(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodGet, "/buyers/renato/installments?q=vencida", "", "")
	defer resp.Body.Close()

	var list []models.Installment
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Number != 4 {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestReceipt(t *testing.T) {
	srv, token := newServer(t)

	text := do(t, srv, http.MethodGet, "/buyers/ively/installments/1/receipt", "", "")
	defer text.Body.Close()
	body, _ := io.ReadAll(text.Body)
	if text.StatusCode != http.StatusOK || !strings.Contains(string(body), "Parcela: 1 de 12") {
		t.Errorf("unexpected text receipt %d:\n%s", text.StatusCode, body)
	}

	xml := do(t, srv, http.MethodGet, "/buyers/ively/installments/1/receipt?format=xml", "", "")
	defer xml.Body.Close()
	if ct := xml.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("unexpected content type %q", ct)
	}

	bad := do(t, srv, http.MethodGet, "/buyers/ively/installments/1/receipt?format=pdf", "", "")
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for pdf, got %d", bad.StatusCode)
	}

	mail := do(t, srv, http.MethodPost, "/buyers/ively/installments/1/receipt/email", token, `{"to":"ively@example.com"}`)
	defer mail.Body.Close()
	if mail.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without SMTP, got %d", mail.StatusCode)
	}
}

func TestSavingsRate(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodGet, "/savings-rate", "", "")
	defer resp.Body.Close()
	var rate models.SavingsRate
	if err := json.NewDecoder(resp.Body).Decode(&rate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.Percent != 0.3434 {
		t.Errorf("unexpected rate %+v", rate)
	}
}

func TestLoginRejected(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, srv, http.MethodPost, "/login", "", `{"password":"wrong"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}
