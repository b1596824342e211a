package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/service"
	"github.com/Dan9191/installment-ledger/internal/utils/email"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Password string `json:"password"`
}

type editRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type emailRequest struct {
	To string `json:"to"`
}

// Login handles operator authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ListInstallments handles the filtered schedule listing
func (h *Handler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerParam(w, r)
	if !ok {
		return
	}

	installments, err := h.svc.ListInstallments(buyer, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, installments)
}

// Statistics handles the aggregate figures of a buyer
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerParam(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Statistics(buyer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// EditInstallment handles an inline edit of one field
func (h *Handler) EditInstallment(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerParam(w, r)
	if !ok {
		return
	}
	number, ok := numberParam(w, r)
	if !ok {
		return
	}

	var req editRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inst, err := h.svc.EditInstallment(buyer, number, ledger.Field(req.Field), req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// Receipt handles receipt rendering as text or XML
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerParam(w, r)
	if !ok {
		return
	}
	number, ok := numberParam(w, r)
	if !ok {
		return
	}

	rcpt, err := h.svc.Receipt(buyer, number)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(rcpt.Text()))
	case "xml":
		out, err := rcpt.XML()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	default:
		writeError(w, http.StatusBadRequest, "format must be text or xml")
	}
}

// EmailReceipt handles sending a receipt by email
func (h *Handler) EmailReceipt(w http.ResponseWriter, r *http.Request) {
	buyer, ok := buyerParam(w, r)
	if !ok {
		return
	}
	number, ok := numberParam(w, r)
	if !ok {
		return
	}

	var req emailRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rcpt, err := h.svc.EmailReceipt(buyer, number, req.To)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"receipt_id": rcpt.ID.String()})
}

// SavingsRate handles the published savings-rate lookup
func (h *Handler) SavingsRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.SavingsRate(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to get savings rate: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func buyerParam(w http.ResponseWriter, r *http.Request) (models.Buyer, bool) {
	buyer, err := models.ParseBuyer(mux.Vars(r)["buyer"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return buyer, true
}

func numberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "installment number must be an integer")
		return 0, false
	}
	return number, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, email.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(data)
}
