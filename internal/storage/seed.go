package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

var defaultCategories = []core.Category{
	{Name: "Sales", IconName: "shopping-bag"},
	{Name: "Services", IconName: "briefcase"},
	{Name: "Salary", IconName: "wallet"},
	{Name: "Rent", IconName: "home"},
	{Name: "Utilities", IconName: "zap"},
	{Name: "Food", IconName: "coffee"},
	{Name: "Transport", IconName: "truck"},
	{Name: "Supplies", IconName: "package"},
	{Name: "Taxes", IconName: "file-text"},
	{Name: "Other", IconName: "more-horizontal"},
}

var defaultPaymentMethods = []string{
	"Cash",
	"Credit Card",
	"Debit Card",
	"Bank Transfer",
}

// SeedDocument is the canonical first-boot content, also used by reset.
// Ids are array positions starting at 1 so example transactions can
// reference them; they are remapped on write.
func SeedDocument(withExamples bool) core.Document {
	doc := core.Document{
		Version:        core.DocumentVersion,
		Categories:     make([]core.Category, len(defaultCategories)),
		PaymentMethods: make([]core.PaymentMethod, len(defaultPaymentMethods)),
		Transactions:   []core.Transaction{},
		UserConfig:     ptr(core.DefaultUserConfig()),
	}
	for i, c := range defaultCategories {
		c.ID = int64(i + 1)
		doc.Categories[i] = c
	}
	for i, name := range defaultPaymentMethods {
		doc.PaymentMethods[i] = core.PaymentMethod{ID: int64(i + 1), Name: name}
	}
	if withExamples {
		doc.Transactions = exampleTransactions(time.Now())
	}
	return doc
}

func exampleTransactions(now time.Time) []core.Transaction {
	day := func(d int) core.Date {
		return core.NewDate(now.Year(), int(now.Month()), d)
	}
	return []core.Transaction{
		{Date: day(1), Description: "Monthly rent", Value: decimal.NewFromInt(-1200), Type: core.Expense,
			Condition: core.Paid, Installments: 1, CategoryID: ptr(int64(4)), PaymentMethodID: ptr(int64(4))},
		{Date: day(2), Description: "Consulting invoice", Value: decimal.NewFromInt(3500), Type: core.Revenue,
			Condition: core.Paid, Installments: 1, CategoryID: ptr(int64(2)), PaymentMethodID: ptr(int64(4))},
		{Date: day(3), Description: "Office supplies", Value: decimal.RequireFromString("-89.90"), Type: core.Expense,
			Condition: core.Pending, Installments: 3, CategoryID: ptr(int64(8)), PaymentMethodID: ptr(int64(2))},
	}
}

func ptr[T any](v T) *T { return &v }
