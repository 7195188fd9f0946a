package services

import (
	"context"
	"fmt"
	"time"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/storage"
)

// Target status values.
const (
	TargetUnder   = "under"
	TargetOnTrack = "on_track"
	TargetOver    = "over"
)

// TargetProgress is one target measured against actual spending.
type TargetProgress struct {
	CategoryID     int64   `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	TargetAmount   float64 `json:"target_amount"`
	ActualAmount   float64 `json:"actual_amount"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
	Status         string  `json:"status"`
	Variance       float64 `json:"variance"`
}

// TargetsProgress is every active target's progress for a period.
type TargetsProgress struct {
	Period        DatePeriod       `json:"period"`
	Targets       []TargetProgress `json:"targets"`
	OverallStatus string           `json:"overall_status"`
}

// TargetTracker measures spending targets against actual spending.
type TargetTracker struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewTargetTracker(storage *storage.SQLiteRepository) *TargetTracker {
	return &TargetTracker{storage: storage, now: time.Now}
}

// Progress reports every target active in [startDate, endDate] against the
// period's actual spending. A target is under below 80% used, on track up
// to 100%, over beyond that.
func (t *TargetTracker) Progress(ctx context.Context, startDate, endDate string) (TargetsProgress, error) {
	targets, err := t.storage.ActiveSpendingTargets(ctx, startDate, endDate)
	if err != nil {
		return TargetsProgress{}, err
	}

	var (
		list         []TargetProgress
		underCount   int
		onTrackCount int
		overCount    int
	)
	for _, target := range targets {
		actual, err := t.storage.CategorySpendingInRange(ctx, target.CategoryID, startDate, endDate)
		if err != nil {
			return TargetsProgress{}, err
		}

		var used float64
		if target.Amount > 0 {
			used = actual / target.Amount * 100
		}

		var status string
		switch {
		case used < core.SpendingUnderThreshold:
			status = TargetUnder
			underCount++
		case used <= core.SpendingOnTrackThreshold:
			status = TargetOnTrack
			onTrackCount++
		default:
			status = TargetOver
			overCount++
		}

		list = append(list, TargetProgress{
			CategoryID:     target.CategoryID,
			CategoryName:   target.CategoryName,
			TargetAmount:   target.Amount,
			ActualAmount:   actual,
			Remaining:      target.Amount - actual,
			PercentageUsed: used,
			Status:         status,
			Variance:       actual - target.Amount,
		})
	}

	overall := TargetUnder
	switch {
	case overCount > 0:
		overall = TargetOver
	case onTrackCount >= underCount && onTrackCount > 0:
		overall = TargetOnTrack
	}

	return TargetsProgress{
		Period:        DatePeriod{StartDate: startDate, EndDate: endDate},
		Targets:       list,
		OverallStatus: overall,
	}, nil
}

// PeriodRange resolves a named target period to a date range ending today.
// Monthly starts at the first of the month, quarterly at the first of the
// quarter, yearly on January 1st.
func (t *TargetTracker) PeriodRange(period core.TargetPeriod) (startDate, endDate string, err error) {
	now := t.now()
	endDate = now.Format(core.DateLayout)
	switch period {
	case core.PeriodMonthly:
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	case core.PeriodQuarterly:
		quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
		startDate = time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	case core.PeriodYearly:
		startDate = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	default:
		return "", "", fmt.Errorf("targets: invalid period %q", period)
	}
	return startDate, endDate, nil
}
