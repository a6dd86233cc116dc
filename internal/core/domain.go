package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Revenue TransactionType = "revenue"
	Expense TransactionType = "expense"

	Paid    Condition = "paid"
	Pending Condition = "pending"
)

// UserConfigID is the fixed key of the singleton configuration row.
const UserConfigID int64 = 1

type (
	TransactionType string

	Condition string

	Category struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		IconName string `json:"icon_name"`
	}

	PaymentMethod struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	// Transaction is the stored form. CategoryID and PaymentMethodID are nil
	// when never set or when the referenced record was deleted.
	Transaction struct {
		ID              int64           `json:"id"`
		Date            Date            `json:"date"`
		Description     string          `json:"description"`
		Value           decimal.Decimal `json:"value"`
		Type            TransactionType `json:"type"`
		Condition       Condition       `json:"condition"`
		Installments    int             `json:"installments"`
		CategoryID      *int64          `json:"category_id"`
		PaymentMethodID *int64          `json:"payment_method_id"`
	}

	// TransactionWithNames carries names resolved at read time. They are
	// never persisted.
	TransactionWithNames struct {
		Transaction
		CategoryName      *string `json:"category_name"`
		CategoryIcon      *string `json:"category_icon"`
		PaymentMethodName *string `json:"payment_method_name"`
	}

	UserConfig struct {
		ID             int64           `json:"id"`
		CompanyName    string          `json:"company_name"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
		CompanyLogo    string          `json:"company_logo"`
	}

	// TransactionFilter narrows a transaction query. Zero values mean "any".
	TransactionFilter struct {
		StartDate       *Date
		EndDate         *Date
		Type            TransactionType
		CategoryID      *int64
		PaymentMethodID *int64
		Condition       Condition
		Query           string
	}
)

func (t TransactionType) IsValid() bool {
	return t == Revenue || t == Expense
}

func (c Condition) IsValid() bool {
	return c == Paid || c == Pending
}

// DefaultUserConfig is the zero-balance configuration created on first use.
func DefaultUserConfig() UserConfig {
	return UserConfig{ID: UserConfigID, InitialBalance: decimal.Zero}
}

// Validate checks the record-level invariants of a transaction.
// A zero value is accepted for either type.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return NewValidationError("date is required")
	}
	if !t.Type.IsValid() {
		return NewValidationError("invalid transaction type %q", t.Type)
	}
	if !t.Condition.IsValid() {
		return NewValidationError("invalid condition %q", t.Condition)
	}
	if t.Installments < 1 {
		return NewValidationError("installments must be at least 1, got %d", t.Installments)
	}
	if t.Condition == Paid && t.Installments != 1 {
		return NewValidationError("paid transactions must have exactly 1 installment, got %d", t.Installments)
	}
	if t.Type == Revenue && t.Value.IsNegative() {
		return NewValidationError("revenue value must not be negative")
	}
	if t.Type == Expense && t.Value.IsPositive() {
		return NewValidationError("expense value must not be positive")
	}
	if len(t.Description) > 500 {
		return NewValidationError("description too long (max 500 characters)")
	}
	return nil
}

// ValidateName rejects blank names. Uniqueness is exact-match and checked by
// the store, so the name itself is not normalized.
func ValidateName(entity, name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("%s name is required", entity)
	}
	if len(name) > 100 {
		return NewValidationError("%s name too long (max 100 characters)", entity)
	}
	return nil
}
