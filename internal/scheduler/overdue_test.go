package scheduler

import (
	"io"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
)

func TestSweep(t *testing.T) {
	paid := 100.0
	schedule := []models.Installment{
		{Number: 1, DueDate: civil.Date{Year: 2024, Month: 1, Day: 10}, Status: models.StatusUpcoming},
		{Number: 2, DueDate: civil.Date{Year: 2024, Month: 2, Day: 10}, Status: models.StatusUpcoming, AmountPaid: &paid},
		{Number: 3, DueDate: civil.Date{Year: 2024, Month: 3, Day: 10}, Status: models.StatusUpcoming},
		{Number: 4, DueDate: civil.Date{Year: 2024, Month: 1, Day: 10}, Status: models.StatusCancelled},
		{Number: 5, DueDate: civil.Date{Year: 2024, Month: 4, Day: 10}, Status: models.StatusUpcoming},
	}
	ledger.Rebuild(schedule)
	l := ledger.New(map[models.Buyer][]models.Installment{models.BuyerIvely: schedule})

	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewOverdueSweeper(l, log)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local) }

	if n := s.Sweep(); n != 1 {
		t.Errorf("expected 1 change, got %d", n)
	}

	got, _ := l.Schedule(models.BuyerIvely)
	want := []models.Status{models.StatusOverdue, models.StatusUpcoming, models.StatusUpcoming, models.StatusCancelled, models.StatusUpcoming}
	for i, status := range want {
		if got[i].Status != status {
			t.Errorf("installment %d: expected %v, got %v", i+1, status, got[i].Status)
		}
	}

	if n := s.Sweep(); n != 0 {
		t.Errorf("second sweep should change nothing, got %d", n)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewOverdueSweeper(ledger.New(nil), log)

	if _, err := s.Start("every now and then"); err == nil {
		t.Errorf("expected error for invalid spec")
	}

	c, err := s.Start("@daily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Stop()
}

// payOnFirstLog records a payment the first time the sweep logs a change
type payOnFirstLog struct {
	ledger *ledger.Ledger
	index  int
	fired  bool
	err    error
}

func (h *payOnFirstLog) Levels() []logrus.Level {
	return []logrus.Level{logrus.InfoLevel}
}

func (h *payOnFirstLog) Fire(entry *logrus.Entry) error {
	if h.fired || entry.Message != "Installment marked overdue" {
		return nil
	}
	h.fired = true
	if _, err := h.ledger.ApplyEdit(models.BuyerIvely, h.index, ledger.FieldAmountPaid, "100"); err != nil {
		h.err = err
		return nil
	}
	_, h.err = h.ledger.ApplyEdit(models.BuyerIvely, h.index, ledger.FieldStatus, "Pago")
	return nil
}

func TestSweepKeepsPaymentRecordedDuringSweep(t *testing.T) {
	schedule := []models.Installment{
		{Number: 1, DueDate: civil.Date{Year: 2024, Month: 1, Day: 10}, Status: models.StatusUpcoming},
		{Number: 2, DueDate: civil.Date{Year: 2024, Month: 2, Day: 10}, Status: models.StatusUpcoming},
		{Number: 3, DueDate: civil.Date{Year: 2024, Month: 4, Day: 10}, Status: models.StatusUpcoming},
	}
	ledger.Rebuild(schedule)
	l := ledger.New(map[models.Buyer][]models.Installment{models.BuyerIvely: schedule})

	hook := &payOnFirstLog{ledger: l, index: 1}
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(hook)

	s := NewOverdueSweeper(l, log)
	s.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local) }
	s.Sweep()

	if !hook.fired || hook.err != nil {
		t.Fatalf("payment was not recorded during the sweep: fired=%v err=%v", hook.fired, hook.err)
	}

	got, _ := l.Installment(models.BuyerIvely, 1)
	if got.Status != models.StatusPaid || got.AmountPaid == nil || *got.AmountPaid != 100 {
		t.Errorf("payment recorded during the sweep was overwritten: status=%v amountPaid=%v", got.Status, got.AmountPaid)
	}
}
