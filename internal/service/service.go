package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/installment-ledger/internal/config"
	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/receipt"
)

// ErrInvalidCredentials is returned when operator login fails
var ErrInvalidCredentials = errors.New("invalid credentials")

// InfoProvider supplies the static buyer metadata used on receipts
type InfoProvider interface {
	Info(buyer models.Buyer) (models.BuyerInfo, error)
}

// RateProvider supplies the published savings rate
type RateProvider interface {
	GetSavingsRate(ctx context.Context) (*models.SavingsRate, error)
}

// ReceiptMailer delivers receipts by email
type ReceiptMailer interface {
	SendReceipt(to string, r *receipt.Receipt) error
}

// Service handles business logic
type Service struct {
	ledger *ledger.Ledger
	info   InfoProvider
	rates  RateProvider
	mailer ReceiptMailer
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service
func NewService(l *ledger.Ledger, info InfoProvider, rates RateProvider, mailer ReceiptMailer, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		ledger: l,
		info:   info,
		rates:  rates,
		mailer: mailer,
		log:    log,
		config: cfg,
		now:    time.Now,
	}
}

// Login checks the operator password and returns a JWT token
func (s *Service) Login(password string) (string, error) {
	if s.config.OperatorPasswordHash == "" {
		return "", ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.OperatorPasswordHash), []byte(password)); err != nil {
		s.log.Warn("Operator login rejected")
		return "", ErrInvalidCredentials
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info("Operator logged in")
	return tokenString, nil
}

// EditInstallment applies an edit to the installment with the given 1-based number
func (s *Service) EditInstallment(buyer models.Buyer, number int, field ledger.Field, raw string) (*models.Installment, error) {
	inst, err := s.ledger.ApplyEdit(buyer, number-1, field, raw)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"buyer":       buyer,
			"installment": number,
			"field":       field,
		}).Warnf("Edit rejected: %v", err)
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"buyer":       buyer,
		"installment": number,
		"field":       field,
	})
	if field == ledger.FieldSavingsRate {
		entry.Infof("Installment updated, recalculated installments %d-%d", number, s.lastNumber(buyer))
	} else {
		entry.Info("Installment updated")
	}
	return &inst, nil
}

func (s *Service) lastNumber(buyer models.Buyer) int {
	schedule, err := s.ledger.Schedule(buyer)
	if err != nil || len(schedule) == 0 {
		return 0
	}
	return schedule[len(schedule)-1].Number
}

// ListInstallments returns the buyer's installments matching the search text
func (s *Service) ListInstallments(buyer models.Buyer, search string) ([]models.Installment, error) {
	return s.ledger.Filter(buyer, search)
}

// Statistics returns the buyer's aggregate figures
func (s *Service) Statistics(buyer models.Buyer) (*models.Statistics, error) {
	return s.ledger.Statistics(buyer)
}

// Receipt builds a signed receipt for the installment with the given 1-based number
func (s *Service) Receipt(buyer models.Buyer, number int) (*receipt.Receipt, error) {
	inst, err := s.ledger.Installment(buyer, number-1)
	if err != nil {
		return nil, err
	}
	info, err := s.info.Info(buyer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrOutOfRange, err)
	}

	r := receipt.New(info, inst, s.now())
	r.Sign(s.config.ReceiptSecret)

	s.log.Infof("Receipt %s generated for %s installment %d", r.ID, buyer, number)
	return r, nil
}

// EmailReceipt generates a receipt and sends it to the given address
func (s *Service) EmailReceipt(buyer models.Buyer, number int, to string) (*receipt.Receipt, error) {
	if to == "" {
		return nil, fmt.Errorf("%w: recipient address is required", ledger.ErrInvalidInput)
	}
	r, err := s.Receipt(buyer, number)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendReceipt(to, r); err != nil {
		return nil, err
	}
	return r, nil
}

// SavingsRate returns the latest published savings rate
func (s *Service) SavingsRate(ctx context.Context) (*models.SavingsRate, error) {
	return s.rates.GetSavingsRate(ctx)
}
