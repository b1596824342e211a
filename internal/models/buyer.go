package models

import (
	"fmt"
	"strings"
)

// Buyer identifies one of the two property buyers tracked by the ledger
type Buyer string

const (
	BuyerIvely  Buyer = "ively"
	BuyerRenato Buyer = "renato"
)

// Buyers lists every buyer in display order
var Buyers = []Buyer{BuyerIvely, BuyerRenato}

// ParseBuyer validates a buyer identifier
func ParseBuyer(raw string) (Buyer, error) {
	b := Buyer(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case BuyerIvely, BuyerRenato:
		return b, nil
	}
	return "", fmt.Errorf("unknown buyer %q", raw)
}

// BuyerInfo holds the static descriptive data printed on receipts
type BuyerInfo struct {
	Buyer             Buyer  `json:"buyer"`
	RecipientName     string `json:"recipient_name"`
	RecipientID       string `json:"recipient_id"`
	PayerName         string `json:"payer_name"`
	PayerID           string `json:"payer_id"`
	Property          string `json:"property"`
	TotalInstallments int    `json:"total_installments"`
}
