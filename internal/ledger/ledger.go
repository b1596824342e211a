package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"cloud.google.com/go/civil"

	"github.com/Dan9191/installment-ledger/internal/models"
	"github.com/Dan9191/installment-ledger/internal/utils"
)

// Ledger owns the installment schedules of every buyer.
// Edits are serialized; readers receive copies.
type Ledger struct {
	mu        sync.RWMutex
	schedules map[models.Buyer][]models.Installment
}

// New builds a ledger from the loaded schedules. The input is copied.
func New(schedules map[models.Buyer][]models.Installment) *Ledger {
	l := &Ledger{schedules: make(map[models.Buyer][]models.Installment, len(schedules))}
	for buyer, schedule := range schedules {
		l.schedules[buyer] = cloneSchedule(schedule)
	}
	return l
}

// ApplyEdit parses raw for field and applies it to the installment at index.
// A savings-rate change recalculates that installment and every later one.
// The returned copy is the row as this edit left it.
func (l *Ledger) ApplyEdit(buyer models.Buyer, index int, field Field, raw string) (models.Installment, error) {
	edit, err := ParseEdit(field, raw)
	if err != nil {
		return models.Installment{}, err
	}
	return l.Apply(buyer, index, edit)
}

// Apply applies an already validated edit
func (l *Ledger) Apply(buyer models.Buyer, index int, edit Edit) (models.Installment, error) {
	if edit == nil {
		return models.Installment{}, fmt.Errorf("%w: empty edit", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return models.Installment{}, err
	}
	if index < 0 || index >= len(schedule) {
		return models.Installment{}, fmt.Errorf("%w: index %d not in [0, %d)", ErrOutOfRange, index, len(schedule))
	}

	edit.apply(&schedule[index])

	if _, ok := edit.(SavingsRateEdit); ok {
		cascade(schedule, index)
	}
	return schedule[index].Clone(), nil
}

// MarkOverdue sets every upcoming, unpaid installment due before today to overdue.
// Rows are checked and edited under the same lock. It returns copies of the changed rows.
func (l *Ledger) MarkOverdue(buyer models.Buyer, today civil.Date) ([]models.Installment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return nil, err
	}

	var changed []models.Installment
	for i := range schedule {
		inst := &schedule[i]
		if inst.Status != models.StatusUpcoming || inst.AmountPaid != nil || inst.DueDate.IsZero() || !inst.DueDate.Before(today) {
			continue
		}
		StatusEdit{Status: models.StatusOverdue}.apply(inst)
		changed = append(changed, inst.Clone())
	}
	return changed, nil
}

// cascade re-derives the financial fields from start to the end of the schedule.
// The edited row keeps its own base; later rows take the previous final amount.
func cascade(schedule []models.Installment, start int) {
	for i := start; i < len(schedule); i++ {
		if i > start && i > 0 {
			schedule[i].PrincipalBeforeInterest = schedule[i-1].PrincipalAfterInterest
		}
		schedule[i].Recalculate()
	}
}

// Rebuild recalculates a whole schedule in place, chaining every row from the first one's base
func Rebuild(schedule []models.Installment) {
	cascade(schedule, 0)
}

// Schedule returns a copy of the buyer's full schedule
func (l *Ledger) Schedule(buyer models.Buyer) ([]models.Installment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return nil, err
	}
	return cloneSchedule(schedule), nil
}

// Installment returns a copy of one installment
func (l *Ledger) Installment(buyer models.Buyer, index int) (models.Installment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return models.Installment{}, err
	}
	if index < 0 || index >= len(schedule) {
		return models.Installment{}, fmt.Errorf("%w: index %d not in [0, %d)", ErrOutOfRange, index, len(schedule))
	}
	return schedule[index].Clone(), nil
}

// Filter returns the installments whose number, status or formatted final amount
// contains text. Status matching ignores case. Empty text matches everything.
func (l *Ledger) Filter(buyer models.Buyer, text string) ([]models.Installment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return cloneSchedule(schedule), nil
	}

	lower := strings.ToLower(text)
	result := make([]models.Installment, 0)
	for _, inst := range schedule {
		if strings.Contains(strconv.Itoa(inst.Number), text) ||
			strings.Contains(strings.ToLower(inst.Status.String()), lower) ||
			strings.Contains(utils.FormatBRL(inst.PrincipalAfterInterest), text) {
			result = append(result, inst.Clone())
		}
	}
	return result, nil
}

// Statistics computes the aggregate figures of the buyer's schedule
func (l *Ledger) Statistics(buyer models.Buyer) (*models.Statistics, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	schedule, err := l.schedule(buyer)
	if err != nil {
		return nil, err
	}
	return CalculateStatistics(schedule), nil
}

// CalculateStatistics aggregates counts and amounts over a schedule
func CalculateStatistics(schedule []models.Installment) *models.Statistics {
	stats := &models.Statistics{Total: len(schedule)}

	for _, inst := range schedule {
		stats.TotalAmount += inst.PrincipalAfterInterest
		stats.TotalInterest += inst.InterestAmount
		if inst.AmountPaid != nil {
			stats.AmountPaid += *inst.AmountPaid
		} else {
			stats.Remaining += inst.PrincipalAfterInterest
		}

		switch inst.Status {
		case models.StatusPaid:
			stats.Paid++
		case models.StatusUpcoming:
			stats.Upcoming++
		case models.StatusOverdue:
			stats.Overdue++
		case models.StatusCancelled:
			stats.Cancelled++
		}
	}

	if stats.Total > 0 {
		stats.PaidPercentage = int(math.Round(float64(stats.Paid) / float64(stats.Total) * 100))
	}
	return stats
}

func (l *Ledger) schedule(buyer models.Buyer) ([]models.Installment, error) {
	schedule, ok := l.schedules[buyer]
	if !ok {
		return nil, fmt.Errorf("%w: no schedule for buyer %q", ErrOutOfRange, buyer)
	}
	return schedule, nil
}

func cloneSchedule(schedule []models.Installment) []models.Installment {
	out := make([]models.Installment, len(schedule))
	for i, inst := range schedule {
		out[i] = inst.Clone()
	}
	return out
}
