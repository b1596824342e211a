package handler

import (
	"github.com/gorilla/mux"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/middleware"
)

// Router wires every endpoint. Mutating routes require an operator token.
func (h *Handler) Router(cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/savings-rate", h.SavingsRate).Methods("GET")
	r.HandleFunc("/buyers/{buyer}/installments", h.ListInstallments).Methods("GET")
	r.HandleFunc("/buyers/{buyer}/statistics", h.Statistics).Methods("GET")
	r.HandleFunc("/buyers/{buyer}/installments/{number:[0-9]+}/receipt", h.Receipt).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/buyers/{buyer}/installments/{number:[0-9]+}", h.EditInstallment).Methods("PATCH")
	authRouter.HandleFunc("/buyers/{buyer}/installments/{number:[0-9]+}/receipt/email", h.EmailReceipt).Methods("POST")

	return r
}
