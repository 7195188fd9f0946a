package services

import (
	"context"
	"fmt"
	"time"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/payoff"
	"budgetbalancer/internal/storage"
)

// DatePeriod bounds an analytics query, both ends inclusive.
type DatePeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CategorySpending is one category's share of spending over a period.
type CategorySpending struct {
	CategoryID       int64   `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	CategoryIcon     *string `json:"category_icon,omitempty"`
	Amount           float64 `json:"amount"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int64   `json:"transaction_count"`
}

// SpendingByCategory is the per-category spending report.
type SpendingByCategory struct {
	Period        DatePeriod         `json:"period"`
	Categories    []CategorySpending `json:"categories"`
	TotalSpending float64            `json:"total_spending"`
}

// TrendPoint is one interval's spending total.
type TrendPoint struct {
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	TransactionCount int64   `json:"transaction_count"`
}

// SpendingTrends is spending bucketed over time.
type SpendingTrends struct {
	DataPoints         []TrendPoint `json:"data_points"`
	TotalSpending      float64      `json:"total_spending"`
	AveragePerInterval float64      `json:"average_per_interval"`
}

// DashboardSummary is the aggregate view the dashboard renders.
type DashboardSummary struct {
	Period        DatePeriod           `json:"period"`
	TotalBalance  float64              `json:"total_balance"`
	TotalSpending float64              `json:"total_spending"`
	TotalIncome   float64              `json:"total_income"`
	Net           float64              `json:"net"`
	TopCategories []CategorySpending   `json:"top_categories"`
	DebtSummary   DashboardDebtSummary `json:"debt_summary"`
	TargetSummary TargetSummary        `json:"target_summary"`
}

// DashboardDebtSummary aggregates the debt book for the dashboard. The
// payoff date comes from an avalanche projection at the current minimum
// payments; it is omitted when no such projection exists.
type DashboardDebtSummary struct {
	TotalDebt           float64 `json:"total_debt"`
	TotalMonthlyPayment float64 `json:"total_monthly_payment"`
	NextPaymentDue      *string `json:"next_payment_due,omitempty"`
	NextPayoffDate      *string `json:"next_payoff_date,omitempty"`
}

// TargetSummary counts target statuses for the dashboard.
type TargetSummary struct {
	OnTrackCount  int64   `json:"on_track_count"`
	OverCount     int64   `json:"over_count"`
	TotalVariance float64 `json:"total_variance"`
}

// Analytics computes spending reports from stored transactions. The now
// field anchors relative periods and is injectable for tests.
type Analytics struct {
	storage   *storage.SQLiteRepository
	targets   *TargetTracker
	scheduler *PaymentScheduler
	now       func() time.Time
}

func NewAnalytics(storage *storage.SQLiteRepository) *Analytics {
	return &Analytics{
		storage:   storage,
		targets:   NewTargetTracker(storage),
		scheduler: NewPaymentScheduler(),
		now:       time.Now,
	}
}

// SpendingByCategory reports per-category spending over the period, most
// expensive first, with each category's share of the total.
func (a *Analytics) SpendingByCategory(ctx context.Context, startDate, endDate string, accountID *int64) (SpendingByCategory, error) {
	rows, err := a.storage.SpendingByCategory(ctx, startDate, endDate, accountID)
	if err != nil {
		return SpendingByCategory{}, err
	}

	var total float64
	for _, row := range rows {
		total += row.Amount
	}

	categories := make([]CategorySpending, 0, len(rows))
	for _, row := range rows {
		var percentage float64
		if total > 0 {
			percentage = row.Amount / total * 100
		}
		categories = append(categories, CategorySpending{
			CategoryID:       row.CategoryID,
			CategoryName:     row.CategoryName,
			CategoryIcon:     row.CategoryIcon,
			Amount:           row.Amount,
			Percentage:       percentage,
			TransactionCount: row.TransactionCount,
		})
	}

	return SpendingByCategory{
		Period:        DatePeriod{StartDate: startDate, EndDate: endDate},
		Categories:    categories,
		TotalSpending: total,
	}, nil
}

// TopCategories returns the limit most expensive categories for the period.
func (a *Analytics) TopCategories(ctx context.Context, startDate, endDate string, limit int) ([]CategorySpending, error) {
	report, err := a.SpendingByCategory(ctx, startDate, endDate, nil)
	if err != nil {
		return nil, err
	}
	if len(report.Categories) > limit {
		report.Categories = report.Categories[:limit]
	}
	return report.Categories, nil
}

// Trends buckets spending by day, ISO week (Monday start) or calendar month.
// Daily and weekly views omit empty buckets; the monthly view reports every
// month in the range, including zeroes.
func (a *Analytics) Trends(ctx context.Context, startDate, endDate, interval string, categoryID *int64) (SpendingTrends, error) {
	var (
		points []TrendPoint
		err    error
	)
	switch interval {
	case "daily":
		points, err = a.dailyTrends(ctx, startDate, endDate, categoryID)
	case "weekly":
		points, err = a.weeklyTrends(ctx, startDate, endDate, categoryID)
	case "monthly":
		points, err = a.monthlyTrends(ctx, startDate, endDate, categoryID)
	default:
		return SpendingTrends{}, fmt.Errorf("analytics: invalid interval %q", interval)
	}
	if err != nil {
		return SpendingTrends{}, err
	}

	var total float64
	for _, p := range points {
		total += p.Amount
	}
	var average float64
	if len(points) > 0 {
		average = total / float64(len(points))
	}

	return SpendingTrends{
		DataPoints:         points,
		TotalSpending:      total,
		AveragePerInterval: average,
	}, nil
}

func (a *Analytics) dailyTrends(ctx context.Context, startDate, endDate string, categoryID *int64) ([]TrendPoint, error) {
	rows, err := a.storage.DailySpending(ctx, startDate, endDate, categoryID)
	if err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Date:             row.Date,
			Amount:           row.Amount,
			TransactionCount: row.TransactionCount,
		})
	}
	return points, nil
}

func (a *Analytics) weeklyTrends(ctx context.Context, startDate, endDate string, categoryID *int64) ([]TrendPoint, error) {
	daily, err := a.dailyTrends(ctx, startDate, endDate, categoryID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*TrendPoint)
	var order []string
	for _, p := range daily {
		day, err := time.Parse(core.DateLayout, p.Date)
		if err != nil {
			continue
		}
		// Weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		week := day.AddDate(0, 0, -offset).Format(core.DateLayout)

		bucket, ok := buckets[week]
		if !ok {
			bucket = &TrendPoint{Date: week}
			buckets[week] = bucket
			order = append(order, week)
		}
		bucket.Amount += p.Amount
		bucket.TransactionCount += p.TransactionCount
	}

	points := make([]TrendPoint, 0, len(order))
	for _, week := range order {
		points = append(points, *buckets[week])
	}
	return points, nil
}

func (a *Analytics) monthlyTrends(ctx context.Context, startDate, endDate string, categoryID *int64) ([]TrendPoint, error) {
	start, err := time.Parse(core.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("analytics: invalid start date %q", startDate)
	}
	end, err := time.Parse(core.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("analytics: invalid end date %q", endDate)
	}

	var points []TrendPoint
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !current.After(last) {
		monthStart := current.Format(core.DateLayout)
		amount, count, err := a.storage.MonthSpending(ctx, monthStart, categoryID)
		if err != nil {
			return nil, err
		}
		points = append(points, TrendPoint{
			Date:             monthStart,
			Amount:           amount,
			TransactionCount: count,
		})
		current = current.AddDate(0, 1, 0)
	}
	return points, nil
}

// Dashboard builds the summary for one of the named periods: current_month,
// last_30_days or current_year.
func (a *Analytics) Dashboard(ctx context.Context, period string) (DashboardSummary, error) {
	now := a.now()
	var startDate string
	endDate := now.Format(core.DateLayout)
	switch period {
	case "current_month":
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	case "last_30_days":
		startDate = now.AddDate(0, 0, -30).Format(core.DateLayout)
	case "current_year":
		startDate = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	default:
		return DashboardSummary{}, fmt.Errorf("analytics: invalid period %q", period)
	}

	totalSpending, err := a.storage.TotalSpending(ctx, startDate, endDate)
	if err != nil {
		return DashboardSummary{}, err
	}
	totalIncome, err := a.storage.TotalIncome(ctx, startDate, endDate)
	if err != nil {
		return DashboardSummary{}, err
	}
	topCategories, err := a.TopCategories(ctx, startDate, endDate, 5)
	if err != nil {
		return DashboardSummary{}, err
	}
	totalBalance, err := a.storage.TotalAccountBalance(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	totalDebt, totalMinPayment, err := a.storage.DebtTotals(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	debtSummary := DashboardDebtSummary{
		TotalDebt:           totalDebt,
		TotalMonthlyPayment: totalMinPayment,
	}
	if totalDebt > 0 {
		due := a.scheduler.NextDueDate()
		debtSummary.NextPaymentDue = &due
		debtSummary.NextPayoffDate = a.projectedPayoffDate(ctx, totalMinPayment, now)
	}
	targets, err := a.targets.Progress(ctx, startDate, endDate)
	if err != nil {
		return DashboardSummary{}, err
	}

	var summary TargetSummary
	for _, t := range targets.Targets {
		switch t.Status {
		case TargetOnTrack:
			summary.OnTrackCount++
		case TargetOver:
			summary.OverCount++
		}
		summary.TotalVariance += t.Variance
	}

	return DashboardSummary{
		Period:        DatePeriod{StartDate: startDate, EndDate: endDate},
		TotalBalance:  totalBalance,
		TotalSpending: totalSpending,
		TotalIncome:   totalIncome,
		Net:           totalIncome - totalSpending,
		TopCategories: topCategories,
		DebtSummary:   debtSummary,
		TargetSummary: summary,
	}, nil
}

// projectedPayoffDate runs an avalanche projection at the current minimum
// payments. A debt book the minimums cannot clear yields no date.
func (a *Analytics) projectedPayoffDate(ctx context.Context, monthlyBudget float64, now time.Time) *string {
	debts, err := a.storage.ListDebts(ctx)
	if err != nil {
		return nil
	}
	open := debts[:0]
	for _, d := range debts {
		if d.Balance > 0 {
			open = append(open, d)
		}
	}
	plan, err := payoff.Calculate(payoff.Input{
		Debts:         open,
		Strategy:      payoff.Avalanche,
		MonthlyBudget: monthlyBudget,
		Start:         now,
	})
	if err != nil {
		return nil
	}
	return &plan.PayoffDate
}
