package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApplicant(id int64) *Applicant {
	return &Applicant{
		ID:            id,
		FirstName:     "Jane",
		LastName:      "Smith",
		DOB:           date(1985, 4, 2),
		RetirementAge: 67,
		MonthlyIncome: MonthlyIncome{
			Occupation:                   "Engineer",
			NatureOfBusiness:             "Software",
			EmployedNetMonthlyIncome:     d("2000"),
			SelfEmployedNetMonthlyIncome: d("1"),
			NetRentalIncome:              d("1"),
			StatePension:                 d("1"),
			PrivatePension:               d("1"),
			DeptWorkPension:              d("1"),
			WorkingFamilyTaxCredits:      d("1"),
			TaxCredit:                    d("1"),
			ChildBenefit:                 d("1"),
		},
	}
}

func TestValidate_BlankAssessment(t *testing.T) {
	a := NewFullAssessment()
	errs := a.Validate()

	assert.Equal(t, "numberOfDependants19OrOver is required", errs["household.numberOfDependants19OrOver"])
	assert.Equal(t, "Council Tax is required", errs["household.monthlyExpenditure.essentials.councilTax.value"])
	assert.Equal(t, "amount is required", errs["loanDetails.amount"])
	assert.Equal(t, "term is required", errs["loanDetails.term"])
	assert.False(t, errs.Has("brokerRef"))
	assert.False(t, errs.Has("household.monthlyExpenditure.travelExpenses.numberOfCars"))
}

func TestValidate_ApplicantPaths(t *testing.T) {
	a := NewFullAssessment()
	a.Applicants.Items = []*Applicant{validApplicant(1), {ID: 2, RetirementAge: 65}}

	errs := a.Validate()

	for _, path := range errs.Fields() {
		assert.NotContains(t, path, "applicants.items[0]")
	}
	assert.Equal(t, "firstName is required", errs["applicants.items[1].firstName"])
	assert.Equal(t, "dob is required", errs["applicants.items[1].dob"])
	assert.Equal(t, "occupation is required", errs["applicants.items[1].monthlyIncome.occupation"])
	assert.False(t, errs.Has("applicants.items[1].retirementAge"))
}

func TestValidate_ZeroCountsAsMissing(t *testing.T) {
	item := SecuredCreditItem{Creditor: "Bank", ChargeType: 1, Balance: d("10"), MonthlyRepayment: d("1")}

	errs := Validate(item)
	require.Equal(t, ValidationErrors{"arrears": "arrears is required"}, errs)

	item.Arrears = d("0.01")
	require.Empty(t, Validate(item))
}

func TestValidate_CreditItems(t *testing.T) {
	a := NewFullAssessment()
	a.UnsecuredCredit.AddUnsecuredCredit()

	errs := a.Validate()
	require.True(t, errs.Has("unsecuredCredit.items[0].creditor"))
	require.True(t, errs.Has("unsecuredCredit.items[0].applicantId"))
	require.True(t, errs.Has("unsecuredCredit.items[0].balance"))
	require.False(t, errs.Has("unsecuredCredit.items[0].toBeRepayed"))
}

func TestValidate_DoesNotBlockTotals(t *testing.T) {
	freezeClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a := NewFullAssessment()
	ap := a.Applicants.AddApplicant()
	ap.MonthlyIncome.EmployedNetMonthlyIncome = d("1800")

	require.NotEmpty(t, a.Validate())
	require.True(t, a.Summary().Applicants.TotalNetMonthlyIncome.Equal(d("1800")))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{"b": "b is required", "a": "a is required"}
	require.Equal(t, []string{"a", "b"}, errs.Fields())
	require.Equal(t, "a: a is required |b: b is required", errs.Error())
}
