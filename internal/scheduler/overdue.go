package scheduler

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/installment-ledger/internal/ledger"
	"github.com/Dan9191/installment-ledger/internal/models"
)

// OverdueSweeper marks unpaid installments past their due date as overdue
type OverdueSweeper struct {
	ledger *ledger.Ledger
	log    *logrus.Logger
	now    func() time.Time
}

// NewOverdueSweeper creates a sweeper over the given ledger
func NewOverdueSweeper(l *ledger.Ledger, log *logrus.Logger) *OverdueSweeper {
	return &OverdueSweeper{ledger: l, log: log, now: time.Now}
}

// Sweep marks every upcoming, unpaid installment due before today as overdue.
// It returns the number of installments changed.
func (s *OverdueSweeper) Sweep() int {
	today := civil.DateOf(s.now())
	changed := 0

	for _, buyer := range models.Buyers {
		marked, err := s.ledger.MarkOverdue(buyer, today)
		if err != nil {
			s.log.Errorf("Failed to sweep %s installments: %v", buyer, err)
			continue
		}
		changed += len(marked)
		for _, inst := range marked {
			s.log.WithFields(logrus.Fields{
				"buyer":       buyer,
				"installment": inst.Number,
				"due_date":    inst.DueDate.String(),
			}).Info("Installment marked overdue")
		}
	}
	return changed
}

// Start schedules the sweep with a standard five-field cron spec and returns the running cron
func (s *OverdueSweeper) Start(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		n := s.Sweep()
		s.log.Infof("Overdue sweep finished, %d installments updated", n)
	}); err != nil {
		return nil, fmt.Errorf("invalid overdue sweep schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
