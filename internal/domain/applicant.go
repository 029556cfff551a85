package domain

import (
	"fmt"
	"time"
)

// DefaultRetirementAge is assigned to every newly added applicant.
const DefaultRetirementAge = 65

// now is the clock used for ages and applicant ids; tests replace it.
var now = time.Now

type Applicant struct {
	ID            int64         `json:"id"`
	FirstName     string        `json:"firstName" validate:"required"`
	LastName      string        `json:"lastName" validate:"required"`
	DOB           *time.Time    `json:"dob" validate:"required"`
	RetirementAge int           `json:"retirementAge" validate:"required"`
	MonthlyIncome MonthlyIncome `json:"monthlyIncome"`
}

// FullName is "first last", or just the first name when no last name is set.
// An applicant without a first name has no full name.
func (a *Applicant) FullName() string {
	if a.FirstName == "" {
		return ""
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// AgeAt is the difference in calendar years between at and the date of birth.
// The second result is false when no date of birth is recorded.
func (a *Applicant) AgeAt(at time.Time) (int, bool) {
	if a.DOB == nil {
		return 0, false
	}
	return at.Year() - a.DOB.Year(), true
}

func (a *Applicant) Age() (int, bool) {
	return a.AgeAt(now())
}

// YearsUntilRetirementAt is only known for a positive age and a set retirement age.
func (a *Applicant) YearsUntilRetirementAt(at time.Time) (int, bool) {
	age, ok := a.AgeAt(at)
	if !ok || a.RetirementAge == 0 || age <= 0 {
		return 0, false
	}
	return a.RetirementAge - age, true
}

func (a *Applicant) YearsUntilRetirement() (int, bool) {
	return a.YearsUntilRetirementAt(now())
}

func (a *Applicant) DisplayNameAt(at time.Time) string {
	name := a.FullName()
	if name == "" {
		return ""
	}

	if age, ok := a.AgeAt(at); ok && age != 0 {
		name += fmt.Sprintf(", age %d", age)
	}
	if years, ok := a.YearsUntilRetirementAt(at); ok && years != 0 {
		name += fmt.Sprintf(", retires in %d year(s)", years)
	}
	return name
}

func (a *Applicant) DisplayName() string {
	return a.DisplayNameAt(now())
}
