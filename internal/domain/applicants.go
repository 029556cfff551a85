package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// MaxApplicants caps the number of applicants on a single assessment.
const MaxApplicants = 4

type ApplicantCollection struct {
	Items []*Applicant `json:"items" validate:"dive"`
}

func (c *ApplicantCollection) HasApplicants() bool {
	return len(c.Items) > 0
}

func (c *ApplicantCollection) CanAddApplicant() bool {
	return len(c.Items) < MaxApplicants
}

func (c *ApplicantCollection) TotalNetMonthlyIncome() decimal.Decimal {
	return Sum(c.Items, func(a *Applicant) decimal.Decimal {
		if a == nil {
			return decimal.Zero
		}
		return a.MonthlyIncome.TotalNetMonthlyIncome()
	})
}

// AddApplicant appends a blank applicant and returns it, or returns nil when the
// collection is already full. Ids derive from the creation time in milliseconds and are
// bumped past the current maximum so two applicants never share one.
func (c *ApplicantCollection) AddApplicant() *Applicant {
	if !c.CanAddApplicant() {
		return nil
	}

	id := now().UnixMilli()
	for _, existing := range c.Items {
		if existing != nil && existing.ID >= id {
			id = existing.ID + 1
		}
	}

	applicant := &Applicant{
		ID:            id,
		FirstName:     "",
		LastName:      "",
		RetirementAge: DefaultRetirementAge,
	}
	c.Items = append(c.Items, applicant)

	return applicant
}

// RemoveApplicant removes applicant from the collection along with every unsecured credit
// item that references it. It returns the removed applicant as a one-element slice, or
// nil when the collection is empty or applicant is not a member. A nil unsecured
// collection skips the cascade.
func (c *ApplicantCollection) RemoveApplicant(applicant *Applicant, unsecured *UnsecuredCreditCollection) []*Applicant {
	if !c.HasApplicants() || applicant == nil {
		return nil
	}

	idx := slices.Index(c.Items, applicant)
	if idx == -1 {
		return nil
	}

	if unsecured != nil {
		// walk backwards so in-place removal never skips an element
		for i := len(unsecured.Items) - 1; i >= 0; i-- {
			if item := unsecured.Items[i]; item != nil && item.ApplicantID == applicant.ID {
				unsecured.Items = slices.Delete(unsecured.Items, i, i+1)
			}
		}
	}

	c.Items = slices.Delete(c.Items, idx, idx+1)

	return []*Applicant{applicant}
}

// FindApplicant looks an applicant up by id.
func (c *ApplicantCollection) FindApplicant(id int64) *Applicant {
	for _, a := range c.Items {
		if a != nil && a.ID == id {
			return a
		}
	}
	return nil
}
