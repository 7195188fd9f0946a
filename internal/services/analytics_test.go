package services

import (
	"context"
	"math"
	"testing"
	"time"

	"budgetbalancer/internal/core"
)

func seedTransactions(t *testing.T, imp *Importer, accountID int64) {
	t.Helper()
	content := "Date,Amount,Description\n" +
		"2026-01-05,-100.00,WALMART GROCERY\n" +
		"2026-01-06,-50.00,STARBUCKS\n" +
		"2026-01-12,-50.00,WALMART RUN\n" +
		"2026-02-01,-40.00,UBER TRIP\n" +
		"2026-01-15,3000.00,PAYCHECK\n"
	if _, err := imp.Import(context.Background(), accountID, content,
		CSVMapping{Date: "Date", Amount: "Amount", Description: "Description"}); err != nil {
		t.Fatal(err)
	}
}

func TestSpendingByCategory(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	seedTransactions(t, NewImporter(repo), account.ID)
	analytics := NewAnalytics(repo)

	report, err := analytics.SpendingByCategory(context.Background(), "2026-01-01", "2026-01-31", nil)
	if err != nil {
		t.Fatal(err)
	}

	// January spending: 150 groceries, 50 dining. Income is excluded.
	if report.TotalSpending != 200 {
		t.Fatalf("total spending = %v, want 200", report.TotalSpending)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(report.Categories))
	}

	top := report.Categories[0]
	if top.CategoryID != 1 || top.Amount != 150 {
		t.Errorf("top category = %+v, want Groceries at 150", top)
	}
	if math.Abs(top.Percentage-75) > 1e-9 {
		t.Errorf("percentage = %v, want 75", top.Percentage)
	}

	var sum float64
	for _, c := range report.Categories {
		sum += c.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestTrends(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	seedTransactions(t, NewImporter(repo), account.ID)
	analytics := NewAnalytics(repo)
	ctx := context.Background()

	t.Run("daily", func(t *testing.T) {
		trends, err := analytics.Trends(ctx, "2026-01-01", "2026-01-31", "daily", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(trends.DataPoints) != 3 {
			t.Fatalf("got %d daily points, want 3", len(trends.DataPoints))
		}
		if trends.TotalSpending != 200 {
			t.Errorf("total = %v, want 200", trends.TotalSpending)
		}
	})

	t.Run("monthly includes empty months", func(t *testing.T) {
		trends, err := analytics.Trends(ctx, "2026-01-01", "2026-03-31", "monthly", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(trends.DataPoints) != 3 {
			t.Fatalf("got %d monthly points, want 3", len(trends.DataPoints))
		}
		if trends.DataPoints[2].Amount != 0 {
			t.Errorf("march spending = %v, want 0", trends.DataPoints[2].Amount)
		}
		if trends.DataPoints[1].Amount != 40 {
			t.Errorf("february spending = %v, want 40", trends.DataPoints[1].Amount)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		if _, err := analytics.Trends(ctx, "2026-01-01", "2026-01-31", "hourly", nil); err == nil {
			t.Fatal("want error for invalid interval")
		}
	})
}

func TestTargetProgress(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	seedTransactions(t, NewImporter(repo), account.ID)
	ctx := context.Background()

	// Groceries spent 150 in January against a 200 target: 75% used, under.
	if _, err := repo.CreateSpendingTarget(ctx, core.NewSpendingTarget{
		CategoryID: 1, Amount: 200, Period: core.PeriodMonthly, StartDate: "2026-01-01",
	}); err != nil {
		t.Fatal(err)
	}
	// Dining spent 50 against 40: over.
	if _, err := repo.CreateSpendingTarget(ctx, core.NewSpendingTarget{
		CategoryID: 2, Amount: 40, Period: core.PeriodMonthly, StartDate: "2026-01-01",
	}); err != nil {
		t.Fatal(err)
	}

	progress, err := NewTargetTracker(repo).Progress(ctx, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(progress.Targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(progress.Targets))
	}

	byCategory := make(map[int64]TargetProgress)
	for _, tp := range progress.Targets {
		byCategory[tp.CategoryID] = tp
	}

	groceries := byCategory[1]
	if groceries.Status != TargetUnder || groceries.PercentageUsed != 75 {
		t.Errorf("groceries = %+v, want under at 75%%", groceries)
	}
	if groceries.Remaining != 50 || groceries.Variance != -50 {
		t.Errorf("groceries remaining/variance = %v/%v, want 50/-50", groceries.Remaining, groceries.Variance)
	}

	dining := byCategory[2]
	if dining.Status != TargetOver {
		t.Errorf("dining status = %q, want over", dining.Status)
	}

	if progress.OverallStatus != TargetOver {
		t.Errorf("overall = %q, want over (any over dominates)", progress.OverallStatus)
	}
}

func TestDashboard(t *testing.T) {
	repo := testRepo(t)
	account := testAccount(t, repo)
	seedTransactions(t, NewImporter(repo), account.ID)

	analytics := NewAnalytics(repo)
	analytics.now = func() time.Time {
		return time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	}
	analytics.targets.now = analytics.now
	analytics.scheduler.now = analytics.now

	if _, err := repo.CreateDebt(context.Background(), core.NewDebt{
		Name: "Card", Balance: 1200, InterestRate: 18, MinPayment: 60,
	}); err != nil {
		t.Fatal(err)
	}

	summary, err := analytics.Dashboard(context.Background(), "current_month")
	if err != nil {
		t.Fatal(err)
	}
	if summary.Period.StartDate != "2026-01-01" || summary.Period.EndDate != "2026-01-20" {
		t.Errorf("period = %+v", summary.Period)
	}
	if summary.TotalSpending != 200 {
		t.Errorf("spending = %v, want 200", summary.TotalSpending)
	}
	if summary.TotalIncome != 3000 {
		t.Errorf("income = %v, want 3000", summary.TotalIncome)
	}
	if summary.Net != 2800 {
		t.Errorf("net = %v, want 2800", summary.Net)
	}
	if summary.DebtSummary.TotalDebt != 1200 || summary.DebtSummary.TotalMonthlyPayment != 60 {
		t.Errorf("debt summary = %+v", summary.DebtSummary)
	}
	if summary.DebtSummary.NextPaymentDue == nil || *summary.DebtSummary.NextPaymentDue != "2026-02-15" {
		t.Errorf("next payment due = %v, want 2026-02-15 (the 20th is past this month's due day)", summary.DebtSummary.NextPaymentDue)
	}
	if summary.DebtSummary.NextPayoffDate == nil {
		t.Error("no projected payoff date for an open debt book")
	}
	// Imported rows moved the account balance: -200 - 40 + 3000.
	if summary.TotalBalance != 2760 {
		t.Errorf("total balance = %v, want 2760", summary.TotalBalance)
	}
	if len(summary.TopCategories) == 0 {
		t.Error("no top categories")
	}

	if _, err := analytics.Dashboard(context.Background(), "fortnight"); err == nil {
		t.Error("want error for invalid period")
	}
}
