package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/storage"
)

// Exporter renders analytics reports for download. Amounts pass through
// decimal so exported figures are exact two-place currency strings rather
// than float formatting artifacts.
type Exporter struct {
	analytics *Analytics
	storage   *storage.SQLiteRepository
}

func NewExporter(storage *storage.SQLiteRepository) *Exporter {
	return &Exporter{
		analytics: NewAnalytics(storage),
		storage:   storage,
	}
}

// SpendingReportCSV renders the per-category spending report for the period
// as CSV.
func (e *Exporter) SpendingReportCSV(ctx context.Context, startDate, endDate string) ([]byte, error) {
	report, err := e.analytics.SpendingByCategory(ctx, startDate, endDate, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "amount", "percentage", "transactions"}); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	for _, c := range report.Categories {
		record := []string{
			c.CategoryName,
			money(c.Amount),
			decimal.NewFromFloat(c.Percentage).StringFixed(1),
			fmt.Sprintf("%d", c.TransactionCount),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write record: %w", err)
		}
	}
	if err := w.Write([]string{"total", money(report.TotalSpending), "100.0", ""}); err != nil {
		return nil, fmt.Errorf("export: write total: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// SpendingReportText renders the same report as a plain-text summary.
func (e *Exporter) SpendingReportText(ctx context.Context, startDate, endDate string) ([]byte, error) {
	report, err := e.analytics.SpendingByCategory(ctx, startDate, endDate, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Spending Report\n")
	fmt.Fprintf(&buf, "Period: %s to %s\n\n", startDate, endDate)
	fmt.Fprintf(&buf, "Total Spending: $%s\n\n", money(report.TotalSpending))
	fmt.Fprintf(&buf, "Categories:\n")
	for _, c := range report.Categories {
		fmt.Fprintf(&buf, "  - %s: $%s (%s%%)\n",
			c.CategoryName, money(c.Amount), decimal.NewFromFloat(c.Percentage).StringFixed(1))
	}
	return buf.Bytes(), nil
}

// TransactionsCSV renders every transaction matching the filter as CSV.
func (e *Exporter) TransactionsCSV(ctx context.Context, f storage.TransactionFilter) ([]byte, error) {
	transactions, err := e.allTransactions(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "amount", "description", "merchant", "category_id", "account_id"}); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	for _, t := range transactions {
		merchant := ""
		if t.Merchant != nil {
			merchant = *t.Merchant
		}
		record := []string{
			t.Date,
			money(t.Amount),
			t.Description,
			merchant,
			fmt.Sprintf("%d", t.CategoryID),
			fmt.Sprintf("%d", t.AccountID),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// TransactionsJSON renders the same export as an indented JSON array.
func (e *Exporter) TransactionsJSON(ctx context.Context, f storage.TransactionFilter) ([]byte, error) {
	transactions, err := e.allTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(transactions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal: %w", err)
	}
	return data, nil
}

// allTransactions walks the filtered listing page by page.
func (e *Exporter) allTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	all := []core.Transaction{}
	for page := 1; ; page++ {
		f.Page = page
		f.PageSize = 100
		transactions, total, err := e.storage.ListTransactions(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, transactions...)
		if int64(page)*100 >= total {
			break
		}
	}
	return all, nil
}

func money(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}
