package core

import "time"

// Application-wide limits and defaults.
const (
	// DefaultCategoryID is the category assigned to transactions that no
	// rule matches ("Uncategorized", seeded by migrations).
	DefaultCategoryID int64 = 10

	// CSV import limits.
	MaxCSVFileSize       = 10 * 1024 * 1024
	MaxCSVRows           = 10_000
	MinCSVImportInterval = 2 * time.Second

	// Validation limits.
	MinInterestRate      = 0.0
	MaxInterestRate      = 100.0
	MaxTransactionAmount = 1_000_000_000.0
	MaxDescriptionLength = 500
	MaxMerchantLength    = 200

	// Pagination.
	DefaultPageSize = 50
	MaxPageSize     = 100

	// Spending target thresholds (percent of target used).
	SpendingUnderThreshold   = 80.0
	SpendingOnTrackThreshold = 100.0
)

// DateLayout is the ISO date format used throughout the store and API.
const DateLayout = "2006-01-02"
