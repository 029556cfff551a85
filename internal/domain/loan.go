package domain

import "github.com/shopspring/decimal"

// LoanDetails is the requested loan: an amount and a term in months.
type LoanDetails struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Term   int             `json:"term" validate:"required"`
}
