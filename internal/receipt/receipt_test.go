package receipt_test

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/beevik/etree"

	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/receipt"
)

func sampleReceipt() *receipt.Receipt {
	paid := 1506.07
	inst := models.Installment{
		Number:                  1,
		PrincipalBeforeInterest: 1493.06,
		SavingsRate:             0.003715,
		AmountPaid:              &paid,
		DueDate:                 civil.Date{Year: 2019, Month: 9, Day: 17},
		Status:                  models.StatusPaid,
	}
	inst.Recalculate()

	info := models.BuyerInfo{
		Buyer:             models.BuyerIvely,
		RecipientName:     "JN Finanças",
		PayerName:         "Ively",
		Property:          "Apto 14(A)",
		TotalInstallments: 144,
	}
	return receipt.New(info, inst, time.Date(2019, 9, 18, 10, 30, 0, 0, time.UTC))
}

func TestText(t *testing.T) {
	r := sampleReceipt()
	text := r.Text()

	for _, want := range []string{
		"Pagador: Ively (-)",
		"Imóvel: Apto 14(A)",
		"Parcela: 1 de 144",
		"Valor: R$\u00a01.506,07",
		"Juros: R$\u00a013,01 (0,8715%)",
		"Vencimento: 17/09/2019",
		"Situação: Pago",
		"Emitido em 18/09/2019 10:30",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("receipt text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Autenticação") {
		t.Errorf("unsigned receipt must not print an authentication key")
	}
}

func TestAmountDueWhenUnpaid(t *testing.T) {
	inst := models.Installment{Number: 4, PrincipalBeforeInterest: 1531.58, SavingsRate: 0.002588}
	inst.Recalculate()

	r := receipt.New(models.BuyerInfo{}, inst, time.Now())
	if got := r.Amount.StringFixed(2); got != "1543.20" {
		t.Errorf("expected amount due 1543.20, got %s", got)
	}
}

func TestSignAndVerify(t *testing.T) {
	r := sampleReceipt()
	if r.Verify("secret") {
		t.Fatalf("unsigned receipt must not verify")
	}

	r.Sign("secret")
	if !r.Verify("secret") {
		t.Errorf("expected signed receipt to verify")
	}
	if r.Verify("other") {
		t.Errorf("receipt verified with the wrong secret")
	}

	r.Installment.Status = models.StatusCancelled
	if r.Verify("secret") {
		t.Errorf("tampered receipt verified")
	}
}

func TestXML(t *testing.T) {
	r := sampleReceipt()
	r.Sign("secret")

	out, err := r.XML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("invalid XML: %v", err)
	}
	root := doc.SelectElement("Receipt")
	if root == nil {
		t.Fatalf("missing Receipt root")
	}
	if got := root.SelectAttrValue("id", ""); got != r.ID.String() {
		t.Errorf("unexpected id %q", got)
	}
	if el := doc.FindElement("//Installment/Amount"); el == nil || el.Text() != "1506.07" {
		t.Errorf("unexpected amount element: %v", el)
	}
	if el := doc.FindElement("//Installment/Status"); el == nil || el.Text() != "Pago" {
		t.Errorf("unexpected status element: %v", el)
	}
	if el := doc.FindElement("//Authentication"); el == nil || el.Text() != r.AuthenticationKey {
		t.Errorf("missing authentication key")
	}
}
