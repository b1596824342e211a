package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/Dan9191/installment-ledger/internal/models"
)

// Field names an editable installment column
type Field string

const (
	FieldSavingsRate    Field = "savings_rate"
	FieldBoletoSendDate Field = "boleto_send_date"
	FieldDueDate        Field = "due_date"
	FieldStatus         Field = "status"
	FieldAmountPaid     Field = "amount_paid"
)

// Edit is a validated change to one field of an installment.
// Only the types in this file implement it.
type Edit interface {
	Field() Field
	apply(inst *models.Installment)
}

// SavingsRateEdit sets the variable monthly rate, stored as a fraction
type SavingsRateEdit struct{ Rate float64 }

// BoletoSendDateEdit sets the date the boleto was sent
type BoletoSendDateEdit struct{ Date civil.Date }

// DueDateEdit sets the due date
type DueDateEdit struct{ Date civil.Date }

// StatusEdit sets the payment status
type StatusEdit struct{ Status models.Status }

// AmountPaidEdit records or clears the paid amount
type AmountPaidEdit struct{ Amount *float64 }

func (SavingsRateEdit) Field() Field    { return FieldSavingsRate }
func (BoletoSendDateEdit) Field() Field { return FieldBoletoSendDate }
func (DueDateEdit) Field() Field        { return FieldDueDate }
func (StatusEdit) Field() Field         { return FieldStatus }
func (AmountPaidEdit) Field() Field     { return FieldAmountPaid }

func (e SavingsRateEdit) apply(inst *models.Installment)    { inst.SavingsRate = e.Rate }
func (e BoletoSendDateEdit) apply(inst *models.Installment) { inst.BoletoSendDate = e.Date }
func (e DueDateEdit) apply(inst *models.Installment)        { inst.DueDate = e.Date }
func (e StatusEdit) apply(inst *models.Installment)         { inst.Status = e.Status }

func (e AmountPaidEdit) apply(inst *models.Installment) {
	if e.Amount == nil {
		inst.AmountPaid = nil
		return
	}
	amount := *e.Amount
	inst.AmountPaid = &amount
}

// ParseEdit validates raw text for the given field and returns the typed edit.
// Savings rates are entered as percentages ("0.3715" means 0.3715%).
func ParseEdit(field Field, raw string) (Edit, error) {
	value := strings.TrimSpace(raw)

	switch field {
	case FieldSavingsRate:
		pct, err := parseFinite(value)
		if err != nil {
			return nil, fmt.Errorf("%w: savings rate %q: %v", ErrInvalidInput, raw, err)
		}
		return SavingsRateEdit{Rate: pct / 100}, nil
	case FieldBoletoSendDate, FieldDueDate:
		date, err := civil.ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidInput, field, raw, err)
		}
		if field == FieldDueDate {
			return DueDateEdit{Date: date}, nil
		}
		return BoletoSendDateEdit{Date: date}, nil
	case FieldStatus:
		status, err := models.ParseStatus(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return StatusEdit{Status: status}, nil
	case FieldAmountPaid:
		if value == "" {
			return AmountPaidEdit{}, nil
		}
		amount, err := parseFinite(value)
		if err != nil || amount < 0 {
			return nil, fmt.Errorf("%w: amount paid %q", ErrInvalidInput, raw)
		}
		return AmountPaidEdit{Amount: &amount}, nil
	}

	return nil, fmt.Errorf("%w: field %q is not editable", ErrInvalidInput, field)
}

func parseFinite(value string) (float64, error) {
	// Accept the pt-BR decimal comma
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}
