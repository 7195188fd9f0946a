package services

import (
	"time"

	"budgetbalancer/internal/core"
)

// paymentDueDay is the day of month minimum payments fall due. Clamped to
// 28 so the date exists in every month.
const paymentDueDay = 15

// ScheduledPayment is one upcoming minimum payment.
type ScheduledPayment struct {
	DebtID    int64   `json:"debt_id"`
	DebtName  string  `json:"debt_name"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"due_date"`
	IsMinimum bool    `json:"is_minimum"`
}

// PaymentSchedule is one month's worth of scheduled payments.
type PaymentSchedule struct {
	Month       string             `json:"month"` // YYYY-MM
	TotalAmount float64            `json:"total_amount"`
	Payments    []ScheduledPayment `json:"payments"`
}

// PaymentScheduler projects upcoming minimum payments from the debt book.
// The now field is injectable for tests.
type PaymentScheduler struct {
	now func() time.Time
}

func NewPaymentScheduler() *PaymentScheduler {
	return &PaymentScheduler{now: time.Now}
}

// FutureSchedules projects minimum payments for the next monthsAhead months,
// starting with the current one.
func (s *PaymentScheduler) FutureSchedules(debts []core.Debt, monthsAhead int) []PaymentSchedule {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	schedules := make([]PaymentSchedule, 0, monthsAhead)
	for offset := 0; offset < monthsAhead; offset++ {
		month := first.AddDate(0, offset, 0)
		payments := schedulePayments(debts, dueDate(month.Year(), month.Month()))

		var total float64
		for _, p := range payments {
			total += p.Amount
		}

		schedules = append(schedules, PaymentSchedule{
			Month:       month.Format("2006-01"),
			TotalAmount: total,
			Payments:    payments,
		})
	}
	return schedules
}

// NextDueDate returns the next payment due date: this month's if it has not
// passed yet, otherwise next month's.
func (s *PaymentScheduler) NextDueDate() string {
	now := s.now()
	if now.Day() > paymentDueDay {
		next := now.AddDate(0, 1, 0)
		return dueDate(next.Year(), next.Month())
	}
	return dueDate(now.Year(), now.Month())
}

func schedulePayments(debts []core.Debt, due string) []ScheduledPayment {
	var payments []ScheduledPayment
	for _, d := range debts {
		if d.Balance <= 0 {
			continue
		}
		payments = append(payments, ScheduledPayment{
			DebtID:    d.ID,
			DebtName:  d.Name,
			Amount:    d.MinPayment,
			DueDate:   due,
			IsMinimum: true,
		})
	}
	return payments
}

func dueDate(year int, month time.Month) string {
	day := paymentDueDay
	if day > 28 {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(core.DateLayout)
}
