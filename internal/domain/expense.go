package domain

import "github.com/shopspring/decimal"

// ExpenseItem is a single labelled monthly expense. Value is required.
type ExpenseItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Value       decimal.Decimal `json:"value"`
}

// relabel restores the catalogue name and description while keeping the value.
func (e *ExpenseItem) relabel(name, description string) {
	e.Name = name
	e.Description = description
}
