// Package services holds the application's business logic: CSV import,
// auto-categorization, analytics, spending targets and debt planning. Each
// service takes its dependencies explicitly and is safe for concurrent use.
package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"budgetbalancer/internal/core"
)

// ParsedTransaction is one CSV row after column mapping and normalization.
type ParsedTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Merchant    *string `json:"merchant,omitempty"`
}

// CSVMapping names the columns to read from a bank export.
type CSVMapping struct {
	Date        string
	Amount      string
	Description string
	Merchant    *string
}

// ErrInvalidCSV marks any parse failure in a CSV document: unreadable
// rows, unparseable dates or amounts.
var ErrInvalidCSV = errors.New("invalid csv")

// MissingColumnError reports a mapped column absent from the CSV header.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("csv: missing column %q", e.Column)
}

// dateLayouts are the accepted input formats, tried in order. Everything is
// normalized to core.DateLayout on the way in.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"2006/01/02",
	"02-01-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// NormalizeDate converts a date in any supported bank format to YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d.Format(core.DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: unable to parse date %q, supported formats include YYYY-MM-DD and MM/DD/YYYY", ErrInvalidCSV, s)
}

// CSVHeaders returns the header row of a CSV document.
func CSVHeaders(content string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read headers: %v", ErrInvalidCSV, err)
	}
	return headers, nil
}

// ParseCSV reads every data row of content using the column mapping. Amounts
// may carry currency symbols and thousands separators; dates may be in any
// supported format.
func ParseCSV(content string, mapping CSVMapping) ([]ParsedTransaction, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read headers: %v", ErrInvalidCSV, err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}

	dateIdx, ok := index[mapping.Date]
	if !ok {
		return nil, &MissingColumnError{Column: mapping.Date}
	}
	amountIdx, ok := index[mapping.Amount]
	if !ok {
		return nil, &MissingColumnError{Column: mapping.Amount}
	}
	descIdx, ok := index[mapping.Description]
	if !ok {
		return nil, &MissingColumnError{Column: mapping.Description}
	}
	merchantIdx := -1
	if mapping.Merchant != nil {
		if i, ok := index[*mapping.Merchant]; ok {
			merchantIdx = i
		}
	}

	var transactions []ParsedTransaction
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read record: %v", ErrInvalidCSV, err)
		}
		if len(record) <= dateIdx || len(record) <= amountIdx || len(record) <= descIdx {
			return nil, fmt.Errorf("%w: record has %d fields, mapped column out of range", ErrInvalidCSV, len(record))
		}

		date, err := NormalizeDate(record[dateIdx])
		if err != nil {
			return nil, err
		}

		amount, err := parseAmount(record[amountIdx])
		if err != nil {
			return nil, err
		}

		var merchant *string
		if merchantIdx >= 0 && merchantIdx < len(record) {
			m := record[merchantIdx]
			merchant = &m
		}

		transactions = append(transactions, ParsedTransaction{
			Date:        date,
			Amount:      amount,
			Description: record[descIdx],
			Merchant:    merchant,
		})
	}

	return transactions, nil
}

func parseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount %q", ErrInvalidCSV, s)
	}
	return amount, nil
}
