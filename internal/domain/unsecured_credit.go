package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// UnsecuredSubType groups unsecured credit types for the aggregate totals.
type UnsecuredSubType int

const (
	SubTypeCredit UnsecuredSubType = 1
	SubTypeCCJ    UnsecuredSubType = 2
	SubTypeIVA    UnsecuredSubType = 3
)

func (s UnsecuredSubType) String() string {
	switch s {
	case SubTypeCredit:
		return "Credit"
	case SubTypeCCJ:
		return "CCJ"
	case SubTypeIVA:
		return "IVA"
	}
	return "Unknown"
}

type UnsecuredCreditType struct {
	Code    int              `json:"code"`
	Name    string           `json:"name"`
	SubType UnsecuredSubType `json:"subType"`
}

// UnsecuredCreditTypes is the fixed classification table. An item's CreditType is an
// index into it.
var UnsecuredCreditTypes = []UnsecuredCreditType{
	{Code: 0, Name: "Credit Card", SubType: SubTypeCredit},
	{Code: 1, Name: "Unsecured Loan", SubType: SubTypeCredit},
	{Code: 2, Name: "Mail Order", SubType: SubTypeCredit},
	{Code: 3, Name: "Store Card", SubType: SubTypeCredit},
	{Code: 4, Name: "Hire Purchase", SubType: SubTypeCredit},
	{Code: 5, Name: "Revolving Credit", SubType: SubTypeCredit},
	{Code: 6, Name: "Bank Overdraft", SubType: SubTypeCredit},
	{Code: 7, Name: "Court Order", SubType: SubTypeCredit},
	{Code: 8, Name: "CCJ", SubType: SubTypeCCJ},
	{Code: 9, Name: "Default", SubType: SubTypeCCJ},
	{Code: 10, Name: "IVA", SubType: SubTypeIVA},
	{Code: 11, Name: "Bankruptcy", SubType: SubTypeIVA},
}

// LookupUnsecuredCreditType reports false for codes outside the table.
func LookupUnsecuredCreditType(code int) (UnsecuredCreditType, bool) {
	if code < 0 || code >= len(UnsecuredCreditTypes) {
		return UnsecuredCreditType{}, false
	}
	return UnsecuredCreditTypes[code], true
}

// UnsecuredCreditItem is a debt owed by one applicant. ApplicantID is a lookup key
// only; the item is dropped when that applicant is removed from the assessment.
type UnsecuredCreditItem struct {
	Creditor         string          `json:"creditor" validate:"required"`
	ApplicantID      int64           `json:"applicantId" validate:"required"`
	CreditType       int             `json:"creditType" validate:"required"`
	Balance          decimal.Decimal `json:"balance" validate:"required"`
	MonthlyRepayment decimal.Decimal `json:"monthlyRepayment" validate:"required"`
	ToBeRepayed      bool            `json:"toBeRepayed"`
}

func (i *UnsecuredCreditItem) subType() (UnsecuredSubType, bool) {
	t, ok := LookupUnsecuredCreditType(i.CreditType)
	if !ok {
		return 0, false
	}
	return t.SubType, true
}

func unsecuredBalance(item *UnsecuredCreditItem) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.Balance
}

func unsecuredMonthlyRepayment(item *UnsecuredCreditItem) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.MonthlyRepayment
}

type UnsecuredCreditCollection struct {
	Items []*UnsecuredCreditItem `json:"items" validate:"dive"`
}

// bySubType filters items classified as subType. Unclassifiable items never match.
func (c *UnsecuredCreditCollection) bySubType(subType UnsecuredSubType) []*UnsecuredCreditItem {
	var items []*UnsecuredCreditItem
	for _, item := range c.Items {
		if item == nil {
			continue
		}
		if st, ok := item.subType(); ok && st == subType {
			items = append(items, item)
		}
	}
	return items
}

func (c *UnsecuredCreditCollection) CCJAndDefaults() []*UnsecuredCreditItem {
	return c.bySubType(SubTypeCCJ)
}

func (c *UnsecuredCreditCollection) IVAAndBankruptcies() []*UnsecuredCreditItem {
	return c.bySubType(SubTypeIVA)
}

func (c *UnsecuredCreditCollection) Credits() []*UnsecuredCreditItem {
	return c.bySubType(SubTypeCredit)
}

func (c *UnsecuredCreditCollection) ItemsToBeRepayed() []*UnsecuredCreditItem {
	var items []*UnsecuredCreditItem
	for _, item := range c.Items {
		if item != nil && item.ToBeRepayed {
			items = append(items, item)
		}
	}
	return items
}

func (c *UnsecuredCreditCollection) TotalCCJAndDefaultsBalance() decimal.Decimal {
	return Sum(c.CCJAndDefaults(), unsecuredBalance)
}

func (c *UnsecuredCreditCollection) TotalCCJAndDefaultsMonthlyRepayments() decimal.Decimal {
	return Sum(c.CCJAndDefaults(), unsecuredMonthlyRepayment)
}

func (c *UnsecuredCreditCollection) TotalIVAAndBankruptciesBalance() decimal.Decimal {
	return Sum(c.IVAAndBankruptcies(), unsecuredBalance)
}

func (c *UnsecuredCreditCollection) TotalIVAAndBankruptciesMonthlyRepayments() decimal.Decimal {
	return Sum(c.IVAAndBankruptcies(), unsecuredMonthlyRepayment)
}

func (c *UnsecuredCreditCollection) TotalCreditBalance() decimal.Decimal {
	return Sum(c.Credits(), unsecuredBalance)
}

func (c *UnsecuredCreditCollection) TotalCreditMonthlyRepayments() decimal.Decimal {
	return Sum(c.Credits(), unsecuredMonthlyRepayment)
}

// TotalToBeRepayedBalance spans every flagged item, whatever its classification.
func (c *UnsecuredCreditCollection) TotalToBeRepayedBalance() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), unsecuredBalance)
}

func (c *UnsecuredCreditCollection) TotalRemainingBalance() decimal.Decimal {
	return c.TotalCCJAndDefaultsBalance().
		Add(c.TotalIVAAndBankruptciesBalance()).
		Add(c.TotalCreditBalance()).
		Sub(c.TotalToBeRepayedBalance())
}

// TotalRemainingMonthlyRepayments is not reduced by the to-be-repaid items, unlike
// TotalRemainingBalance.
func (c *UnsecuredCreditCollection) TotalRemainingMonthlyRepayments() decimal.Decimal {
	return c.TotalCCJAndDefaultsMonthlyRepayments().
		Add(c.TotalIVAAndBankruptciesMonthlyRepayments()).
		Add(c.TotalCreditMonthlyRepayments())
}

// AddUnsecuredCredit appends an item with zeroed amounts and returns it.
func (c *UnsecuredCreditCollection) AddUnsecuredCredit() *UnsecuredCreditItem {
	item := &UnsecuredCreditItem{
		Balance:          decimal.Zero,
		MonthlyRepayment: decimal.Zero,
	}
	c.Items = append(c.Items, item)
	return item
}

// RemoveUnsecuredCredit removes item by identity. It returns nil when item is not a member.
func (c *UnsecuredCreditCollection) RemoveUnsecuredCredit(item *UnsecuredCreditItem) []*UnsecuredCreditItem {
	idx := slices.Index(c.Items, item)
	if idx == -1 || item == nil {
		return nil
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	return []*UnsecuredCreditItem{item}
}

// At returns the item at index i, or nil when i is out of range.
func (c *UnsecuredCreditCollection) At(i int) *UnsecuredCreditItem {
	if i < 0 || i >= len(c.Items) {
		return nil
	}
	return c.Items[i]
}

func (c *UnsecuredCreditCollection) RemoveUnsecuredCreditAt(i int) []*UnsecuredCreditItem {
	item := c.At(i)
	if item == nil {
		return nil
	}
	return c.RemoveUnsecuredCredit(item)
}
