package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/utils"
)

// Receipt is a payment receipt for a single installment
type Receipt struct {
	ID                uuid.UUID
	IssuedAt          time.Time
	Info              models.BuyerInfo
	Installment       models.Installment
	Amount            decimal.Decimal // amount paid, or the amount due when unpaid
	Interest          decimal.Decimal
	AuthenticationKey string
}

// New builds a receipt for inst. Amounts are rounded to cents.
func New(info models.BuyerInfo, inst models.Installment, issuedAt time.Time) *Receipt {
	amount := inst.PrincipalAfterInterest
	if inst.AmountPaid != nil {
		amount = *inst.AmountPaid
	}
	return &Receipt{
		ID:          uuid.New(),
		IssuedAt:    issuedAt,
		Info:        info,
		Installment: inst.Clone(),
		Amount:      utils.RoundCents(amount),
		Interest:    utils.RoundCents(inst.InterestAmount),
	}
}

// Sign stores an authentication key computed over the receipt's canonical fields
func (r *Receipt) Sign(secret string) {
	r.AuthenticationKey = utils.GenerateHMAC(secret, r.canonical()...)
}

// Verify reports whether the stored authentication key matches the receipt contents
func (r *Receipt) Verify(secret string) bool {
	if r.AuthenticationKey == "" {
		return false
	}
	return utils.VerifyHMAC(r.AuthenticationKey, secret, r.canonical()...)
}

func (r *Receipt) canonical() []string {
	return []string{
		r.ID.String(),
		string(r.Info.Buyer),
		fmt.Sprintf("%d", r.Installment.Number),
		r.Amount.StringFixed(2),
		r.Installment.DueDate.String(),
		r.Installment.Status.String(),
	}
}

// Text renders the receipt for printing
func (r *Receipt) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "RECIBO DE PAGAMENTO\n")
	fmt.Fprintf(&b, "Nº %s\n\n", r.ID)
	fmt.Fprintf(&b, "Recebedor: %s (%s)\n", r.Info.RecipientName, orDash(r.Info.RecipientID))
	fmt.Fprintf(&b, "Pagador: %s (%s)\n", r.Info.PayerName, orDash(r.Info.PayerID))
	fmt.Fprintf(&b, "Imóvel: %s\n\n", r.Info.Property)
	fmt.Fprintf(&b, "Parcela: %d de %d\n", r.Installment.Number, r.Info.TotalInstallments)
	fmt.Fprintf(&b, "Valor: %s\n", utils.FormatBRLDecimal(r.Amount))
	fmt.Fprintf(&b, "Juros: %s (%s)\n", utils.FormatBRLDecimal(r.Interest), utils.FormatPercent(r.Installment.TotalRate))
	fmt.Fprintf(&b, "Vencimento: %s\n", utils.FormatDate(r.Installment.DueDate))
	fmt.Fprintf(&b, "Situação: %s\n\n", r.Installment.Status)
	fmt.Fprintf(&b, "Emitido em %s\n", r.IssuedAt.Format("02/01/2006 15:04"))
	if r.AuthenticationKey != "" {
		fmt.Fprintf(&b, "Autenticação: %s\n", r.AuthenticationKey)
	}

	return b.String()
}

// XML renders the receipt as an XML document
func (r *Receipt) XML() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Receipt")
	root.CreateAttr("id", r.ID.String())
	root.CreateAttr("issuedAt", r.IssuedAt.Format(time.RFC3339))

	recipient := root.CreateElement("Recipient")
	recipient.CreateElement("Name").SetText(r.Info.RecipientName)
	recipient.CreateElement("ID").SetText(r.Info.RecipientID)

	payer := root.CreateElement("Payer")
	payer.CreateElement("Name").SetText(r.Info.PayerName)
	payer.CreateElement("ID").SetText(r.Info.PayerID)

	root.CreateElement("Property").SetText(r.Info.Property)

	inst := root.CreateElement("Installment")
	inst.CreateAttr("number", fmt.Sprintf("%d", r.Installment.Number))
	inst.CreateAttr("of", fmt.Sprintf("%d", r.Info.TotalInstallments))
	inst.CreateElement("Amount").SetText(r.Amount.StringFixed(2))
	inst.CreateElement("Interest").SetText(r.Interest.StringFixed(2))
	inst.CreateElement("TotalRate").SetText(decimal.NewFromFloat(r.Installment.TotalRate).StringFixed(6))
	inst.CreateElement("DueDate").SetText(r.Installment.DueDate.String())
	inst.CreateElement("Status").SetText(r.Installment.Status.String())

	if r.AuthenticationKey != "" {
		root.CreateElement("Authentication").SetText(r.AuthenticationKey)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write receipt XML: %w", err)
	}
	return out, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
