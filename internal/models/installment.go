package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// FixedRate is the administrative monthly rate added to the savings rate
const FixedRate = 0.005

// Status represents the payment situation of an installment
type Status int

const (
	StatusUpcoming Status = iota
	StatusPaid
	StatusOverdue
	StatusCancelled
)

var statusLabels = map[Status]string{
	StatusPaid:      "Pago",
	StatusUpcoming:  "À Vencer",
	StatusOverdue:   "Vencida",
	StatusCancelled: "Cancelada",
}

var statusAliases = map[string]Status{
	"pago":      StatusPaid,
	"paid":      StatusPaid,
	"à vencer":  StatusUpcoming,
	"a vencer":  StatusUpcoming,
	"upcoming":  StatusUpcoming,
	"vencida":   StatusOverdue,
	"overdue":   StatusOverdue,
	"cancelada": StatusCancelled,
	"cancelled": StatusCancelled,
}

// String returns the label shown on statements and receipts
func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus accepts either the statement label or its English name
func ParseStatus(raw string) (Status, error) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unknown status %q", raw)
	}
	return status, nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Installment represents one row of a buyer's payment schedule
type Installment struct {
	Number                  int        `json:"number"`
	PrincipalBeforeInterest float64    `json:"principal_before_interest"`
	PrincipalAfterInterest  float64    `json:"principal_after_interest"`
	AmountPaid              *float64   `json:"amount_paid"` // nil while unpaid
	SavingsRate             float64    `json:"savings_rate"`
	TotalRate               float64    `json:"total_rate"`
	InterestAmount          float64    `json:"interest_amount"`
	BoletoSendDate          civil.Date `json:"boleto_send_date"`
	DueDate                 civil.Date `json:"due_date"`
	Status                  Status     `json:"status"`
}

// Recalculate derives the rate, interest and final amount from the base and savings rate
func (i *Installment) Recalculate() {
	i.TotalRate = FixedRate + i.SavingsRate
	i.InterestAmount = i.PrincipalBeforeInterest * i.TotalRate
	i.PrincipalAfterInterest = i.PrincipalBeforeInterest + i.InterestAmount
}

// Clone returns a copy that shares no memory with i
func (i Installment) Clone() Installment {
	if i.AmountPaid != nil {
		paid := *i.AmountPaid
		i.AmountPaid = &paid
	}
	return i
}
