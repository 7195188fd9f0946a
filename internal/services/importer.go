package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetbalancer/internal/core"
	"budgetbalancer/internal/storage"
)

// ImportStats summarizes one CSV import run.
type ImportStats struct {
	Total      int `json:"total"`
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// FileTooLargeError reports CSV content over the size cap.
type FileTooLargeError struct {
	Size, Max int
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("import: file size %d exceeds maximum %d bytes", e.Size, e.Max)
}

// TooManyRowsError reports CSV content over the row cap.
type TooManyRowsError struct {
	Count, Max int
}

func (e *TooManyRowsError) Error() string {
	return fmt.Sprintf("import: %d rows exceeds maximum %d", e.Count, e.Max)
}

// AmountTooLargeError reports a transaction amount outside the sane range.
type AmountTooLargeError struct {
	Amount, Max float64
}

func (e *AmountTooLargeError) Error() string {
	return fmt.Sprintf("import: transaction amount %.2f exceeds maximum allowed %.2f", e.Amount, e.Max)
}

// Importer runs the CSV import pipeline: parse, validate, deduplicate,
// categorize, insert.
type Importer struct {
	storage *storage.SQLiteRepository
}

func NewImporter(storage *storage.SQLiteRepository) *Importer {
	return &Importer{storage: storage}
}

// Import parses csvContent with the given mapping and writes the resulting
// transactions to accountID. Rows whose content hash is already stored are
// counted as duplicates and skipped; the rest are auto-categorized.
func (i *Importer) Import(ctx context.Context, accountID int64, csvContent string, mapping CSVMapping) (ImportStats, error) {
	if len(csvContent) > core.MaxCSVFileSize {
		return ImportStats{}, &FileTooLargeError{Size: len(csvContent), Max: core.MaxCSVFileSize}
	}
	if rows := strings.Count(csvContent, "\n") + 1; rows > core.MaxCSVRows {
		return ImportStats{}, &TooManyRowsError{Count: rows, Max: core.MaxCSVRows}
	}

	parsed, err := ParseCSV(csvContent, mapping)
	if err != nil {
		return ImportStats{}, err
	}

	stats := ImportStats{Total: len(parsed)}
	if len(parsed) == 0 {
		return stats, nil
	}

	for _, t := range parsed {
		if abs(t.Amount) > core.MaxTransactionAmount {
			return ImportStats{}, &AmountTooLargeError{Amount: abs(t.Amount), Max: core.MaxTransactionAmount}
		}
	}

	hashes := make([]string, len(parsed))
	for idx, t := range parsed {
		hashes[idx] = core.TransactionHash(t.Date, t.Amount, t.Description)
	}
	existing, err := i.storage.ExistingHashes(ctx, hashes)
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: check duplicates: %w", err)
	}

	rules, err := i.storage.ListRules(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: load rules: %w", err)
	}
	categorizer := NewCategorizer(rules)

	// Duplicates within the file itself collapse to one row.
	seen := make(map[string]bool, len(parsed))
	var batch []core.NewTransaction
	for idx, t := range parsed {
		hash := hashes[idx]
		if existing[hash] || seen[hash] {
			stats.Duplicates++
			continue
		}
		seen[hash] = true

		batch = append(batch, core.NewTransaction{
			AccountID:   accountID,
			CategoryID:  categorizer.Categorize(t.Merchant, t.Description),
			Date:        t.Date,
			Amount:      t.Amount,
			Description: t.Description,
			Merchant:    t.Merchant,
			Hash:        hash,
		})
	}

	inserted, err := i.storage.InsertTransactions(ctx, batch)
	if err != nil {
		return ImportStats{}, fmt.Errorf("import: insert batch: %w", err)
	}
	stats.Imported = int(inserted)
	stats.Errors = len(batch) - stats.Imported

	slog.InfoContext(ctx, "CSV import completed",
		"account_id", accountID,
		"total", stats.Total,
		"imported", stats.Imported,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors)

	return stats, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
