package seed

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
)

// InstallmentCount is the length of every buyer's schedule
const InstallmentCount = 144

// record is a historical installment as it was registered before the ledger existed
type record struct {
	base        float64
	paid        float64 // zero when unpaid
	savingsRate float64
	sendDate    string
	dueDate     string
	status      models.Status
}

var history = map[models.Buyer][]record{
	models.BuyerIvely: {
		{1493.06, 1506.07, 0.003715, "2019-09-10", "2019-09-17", models.StatusPaid},
		{0, 1518.77, 0.003434, "2019-10-20", "2019-10-26", models.StatusPaid},
		{0, 1531.58, 0.003434, "2019-11-17", "2019-11-26", models.StatusPaid},
		{0, 0, 0.002588, "2019-12-15", "2019-12-26", models.StatusUpcoming},
		{0, 0, 0.002588, "2020-01-15", "2020-01-26", models.StatusUpcoming},
		{0, 0, 0.002588, "2020-02-15", "2020-02-26", models.StatusOverdue},
	},
	models.BuyerRenato: {
		{1618.05, 1632.15, 0.003715, "2019-08-15", "2019-08-22", models.StatusPaid},
		{0, 1646.38, 0.003715, "2019-09-17", "2019-09-24", models.StatusPaid},
		{0, 0, 0.003715, "2019-10-17", "2019-10-24", models.StatusUpcoming},
		{0, 0, 0.003715, "2019-11-17", "2019-11-24", models.StatusOverdue},
	},
}

var info = map[models.Buyer]models.BuyerInfo{
	models.BuyerIvely: {
		Buyer:         models.BuyerIvely,
		RecipientName: "JN Finanças",
		PayerName:     "Ively",
		Property:      "Apto 14(A)",
	},
	models.BuyerRenato: {
		Buyer:         models.BuyerRenato,
		RecipientName: "JN Finanças",
		PayerName:     "Renato",
		Property:      "Apto 14(B)",
	},
}

// Loader provides the initial schedules and buyer metadata
type Loader struct {
	count int
}

// NewLoader creates a loader producing schedules of count installments
func NewLoader(count int) *Loader {
	if count <= 0 {
		count = InstallmentCount
	}
	return &Loader{count: count}
}

// Schedules returns every buyer's schedule, fully recalculated
func (l *Loader) Schedules() (map[models.Buyer][]models.Installment, error) {
	out := make(map[models.Buyer][]models.Installment, len(history))
	for _, buyer := range models.Buyers {
		schedule, err := l.build(history[buyer])
		if err != nil {
			return nil, fmt.Errorf("failed to load %s schedule: %w", buyer, err)
		}
		out[buyer] = schedule
	}
	return out, nil
}

// Info returns the descriptive data printed on a buyer's receipts
func (l *Loader) Info(buyer models.Buyer) (models.BuyerInfo, error) {
	bi, ok := info[buyer]
	if !ok {
		return models.BuyerInfo{}, fmt.Errorf("unknown buyer %q", buyer)
	}
	bi.TotalInstallments = l.count
	return bi, nil
}

func (l *Loader) build(records []record) ([]models.Installment, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no historical installments")
	}
	if len(records) > l.count {
		records = records[:l.count]
	}

	schedule := make([]models.Installment, l.count)
	for i, r := range records {
		sendDate, err := civil.ParseDate(r.sendDate)
		if err != nil {
			return nil, fmt.Errorf("installment %d: %w", i+1, err)
		}
		dueDate, err := civil.ParseDate(r.dueDate)
		if err != nil {
			return nil, fmt.Errorf("installment %d: %w", i+1, err)
		}

		inst := models.Installment{
			Number:                  i + 1,
			PrincipalBeforeInterest: r.base,
			SavingsRate:             r.savingsRate,
			BoletoSendDate:          sendDate,
			DueDate:                 dueDate,
			Status:                  r.status,
		}
		if r.paid > 0 {
			paid := r.paid
			inst.AmountPaid = &paid
		}
		schedule[i] = inst
	}

	// Project the remaining months from the last registered installment
	last := schedule[len(records)-1]
	for i := len(records); i < l.count; i++ {
		months := i - len(records) + 1
		schedule[i] = models.Installment{
			Number:         i + 1,
			SavingsRate:    last.SavingsRate,
			BoletoSendDate: last.BoletoSendDate.AddMonths(months),
			DueDate:        last.DueDate.AddMonths(months),
			Status:         models.StatusUpcoming,
		}
	}

	ledger.Rebuild(schedule)
	return schedule, nil
}
