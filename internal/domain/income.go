package domain

import "github.com/shopspring/decimal"

// OtherIncome carries a free-form income source. Description must be present exactly
// when Amount is set.
type OtherIncome struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// MonthlyIncome holds the net monthly income sources of a single applicant.
type MonthlyIncome struct {
	Occupation       string `json:"occupation" validate:"required"`
	NatureOfBusiness string `json:"natureOfBusiness" validate:"required"`

	EmployedNetMonthlyIncome     decimal.Decimal `json:"employedNetMonthlyIncome" validate:"required"`
	SelfEmployedNetMonthlyIncome decimal.Decimal `json:"selfEmployedNetMonthlyIncome" validate:"required"`
	NetRentalIncome              decimal.Decimal `json:"netRentalIncome" validate:"required"`
	StatePension                 decimal.Decimal `json:"statePension" validate:"required"`
	PrivatePension               decimal.Decimal `json:"privatePension" validate:"required"`
	DeptWorkPension              decimal.Decimal `json:"deptWorkPension" validate:"required"`
	WorkingFamilyTaxCredits      decimal.Decimal `json:"workingFamilyTaxCredits" validate:"required"`
	TaxCredit                    decimal.Decimal `json:"taxCredit" validate:"required"`
	ChildBenefit                 decimal.Decimal `json:"childBenefit" validate:"required"`

	OtherIncome OtherIncome `json:"otherIncome"`
}

func (m *MonthlyIncome) sources() []decimal.Decimal {
	return []decimal.Decimal{
		m.EmployedNetMonthlyIncome,
		m.SelfEmployedNetMonthlyIncome,
		m.NetRentalIncome,
		m.StatePension,
		m.PrivatePension,
		m.DeptWorkPension,
		m.WorkingFamilyTaxCredits,
		m.TaxCredit,
		m.ChildBenefit,
		m.OtherIncome.Amount,
	}
}

func (m *MonthlyIncome) TotalNetMonthlyIncome() decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return Sum(m.sources(), func(d decimal.Decimal) decimal.Decimal { return d })
}
