package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
)

const (
	Predefined CategoryType = "predefined"
	Custom     CategoryType = "custom"
)

const (
	PeriodMonthly   TargetPeriod = "monthly"
	PeriodQuarterly TargetPeriod = "quarterly"
	PeriodYearly    TargetPeriod = "yearly"
)

type (
	AccountType  string
	CategoryType string
	TargetPeriod string

	Account struct {
		ID        int64       `json:"id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"type"`
		Balance   float64     `json:"balance"`
		CreatedAt string      `json:"created_at"`
		UpdatedAt string      `json:"updated_at"`
	}

	Category struct {
		ID        int64        `json:"id"`
		Name      string       `json:"name"`
		Type      CategoryType `json:"type"`
		ParentID  *int64       `json:"parent_id,omitempty"`
		Icon      *string      `json:"icon,omitempty"`
		CreatedAt string       `json:"created_at"`
	}

	CategoryRule struct {
		ID         int64  `json:"id"`
		Pattern    string `json:"pattern"`
		CategoryID int64  `json:"category_id"`
		Priority   int64  `json:"priority"`
		CreatedAt  string `json:"created_at"`
	}

	ColumnMapping struct {
		ID             int64   `json:"id"`
		SourceName     string  `json:"source_name"`
		DateCol        string  `json:"date_col"`
		AmountCol      string  `json:"amount_col"`
		DescriptionCol string  `json:"description_col"`
		MerchantCol    *string `json:"merchant_col,omitempty"`
		CreatedAt      string  `json:"created_at"`
	}

	Transaction struct {
		ID          int64   `json:"id"`
		AccountID   int64   `json:"account_id"`
		CategoryID  int64   `json:"category_id"`
		Date        string  `json:"date"` // ISO 8601 (YYYY-MM-DD)
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Merchant    *string `json:"merchant,omitempty"`
		Hash        string  `json:"hash"`
		CreatedAt   string  `json:"created_at"`
	}

	Debt struct {
		ID              int64   `json:"id"`
		Name            string  `json:"name"`
		Balance         float64 `json:"balance"`
		OriginalBalance float64 `json:"original_balance"`
		InterestRate    float64 `json:"interest_rate"` // annual percentage
		MinPayment      float64 `json:"min_payment"`
		CreatedAt       string  `json:"created_at"`
		UpdatedAt       string  `json:"updated_at"`
	}

	DebtPayment struct {
		ID        int64   `json:"id"`
		DebtID    int64   `json:"debt_id"`
		Amount    float64 `json:"amount"`
		Date      string  `json:"date"`
		PlanID    *int64  `json:"plan_id,omitempty"`
		CreatedAt string  `json:"created_at"`
	}

	// DebtPlan is plan metadata only. The schedule is never stored; reads
	// recompute it from current debt balances.
	DebtPlan struct {
		ID            int64   `json:"id"`
		Strategy      string  `json:"strategy"`
		MonthlyAmount float64 `json:"monthly_amount"`
		CreatedAt     string  `json:"created_at"`
	}

	SpendingTarget struct {
		ID         int64        `json:"id"`
		CategoryID int64        `json:"category_id"`
		Amount     float64      `json:"amount"`
		Period     TargetPeriod `json:"period"`
		StartDate  string       `json:"start_date"`
		EndDate    *string      `json:"end_date,omitempty"`
		CreatedAt  string       `json:"created_at"`
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyPattern       = errors.New("empty pattern")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidBalance     = errors.New("invalid balance")
	ErrInvalidMinPayment  = errors.New("invalid minimum payment")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidPeriod      = errors.New("invalid target period")
)

// InterestRateError reports an annual rate outside the accepted range.
type InterestRateError struct {
	Min, Max, Actual float64
}

func (e *InterestRateError) Error() string {
	return fmt.Sprintf("interest rate %.2f outside range [%.0f, %.0f]", e.Actual, e.Min, e.Max)
}

func (t AccountType) Validate() error {
	switch t {
	case Checking, Savings, CreditCard:
		return nil
	default:
		return ErrInvalidAccountType
	}
}

func (p TargetPeriod) Validate() error {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

// ValidateDate checks that s is a real calendar date in DateLayout form.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// NewAccount is the payload for creating an account.
type NewAccount struct {
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	InitialBalance float64     `json:"initial_balance"`
}

func (a NewAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return a.Type.Validate()
}

// NewCategory is the payload for creating a custom category.
type NewCategory struct {
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

func (c NewCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// NewCategoryRule is the payload for creating a categorization rule.
type NewCategoryRule struct {
	Pattern    string `json:"pattern"`
	CategoryID int64  `json:"category_id"`
	Priority   int64  `json:"priority"`
}

func (r NewCategoryRule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrEmptyPattern
	}
	return nil
}

// NewColumnMapping is the payload for saving a CSV column mapping.
type NewColumnMapping struct {
	SourceName     string  `json:"source_name"`
	DateCol        string  `json:"date_col"`
	AmountCol      string  `json:"amount_col"`
	DescriptionCol string  `json:"description_col"`
	MerchantCol    *string `json:"merchant_col,omitempty"`
}

func (m NewColumnMapping) Validate() error {
	if strings.TrimSpace(m.SourceName) == "" {
		return ErrEmptyName
	}
	if m.DateCol == "" || m.AmountCol == "" || m.DescriptionCol == "" {
		return errors.New("date, amount and description columns are required")
	}
	return nil
}

// NewTransaction is the payload for inserting a transaction.
type NewTransaction struct {
	AccountID   int64   `json:"account_id"`
	CategoryID  int64   `json:"category_id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Merchant    *string `json:"merchant,omitempty"`
	Hash        string  `json:"hash"`
}

func (t NewTransaction) Validate() error {
	if err := ValidateDate(t.Date); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	}
	if t.Merchant != nil && len(*t.Merchant) > MaxMerchantLength {
		return fmt.Errorf("merchant too long (max %d characters)", MaxMerchantLength)
	}
	if t.Amount > MaxTransactionAmount || t.Amount < -MaxTransactionAmount {
		return ErrInvalidAmount
	}
	return nil
}

// NewDebt is the payload for creating a debt record.
type NewDebt struct {
	Name         string  `json:"name"`
	Balance      float64 `json:"balance"`
	InterestRate float64 `json:"interest_rate"`
	MinPayment   float64 `json:"min_payment"`
}

func (d NewDebt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Balance < 0 {
		return ErrInvalidBalance
	}
	if d.MinPayment < 0 {
		return ErrInvalidMinPayment
	}
	if d.InterestRate < MinInterestRate || d.InterestRate > MaxInterestRate {
		return &InterestRateError{Min: MinInterestRate, Max: MaxInterestRate, Actual: d.InterestRate}
	}
	return nil
}

// NewSpendingTarget is the payload for creating a spending target.
type NewSpendingTarget struct {
	CategoryID int64        `json:"category_id"`
	Amount     float64      `json:"amount"`
	Period     TargetPeriod `json:"period"`
	StartDate  string       `json:"start_date"`
	EndDate    *string      `json:"end_date,omitempty"`
}

func (t NewSpendingTarget) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Period.Validate(); err != nil {
		return err
	}
	if err := ValidateDate(t.StartDate); err != nil {
		return err
	}
	if t.EndDate != nil {
		if err := ValidateDate(*t.EndDate); err != nil {
			return err
		}
		if *t.EndDate < t.StartDate {
			return errors.New("end date must not precede start date")
		}
	}
	return nil
}
