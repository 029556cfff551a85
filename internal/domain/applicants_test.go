package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freezeClock pins the package clock for the duration of the test.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestAddApplicant_Capacity(t *testing.T) {
	freezeClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	var c ApplicantCollection
	require.False(t, c.HasApplicants())

	seen := map[int64]bool{}
	for i := 0; i < MaxApplicants; i++ {
		a := c.AddApplicant()
		require.NotNil(t, a, "applicant %d", i+1)
		require.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true

		assert.Equal(t, "", a.FirstName)
		assert.Equal(t, "", a.LastName)
		assert.Equal(t, DefaultRetirementAge, a.RetirementAge)
	}

	require.True(t, c.HasApplicants())
	require.False(t, c.CanAddApplicant())

	require.Nil(t, c.AddApplicant())
	require.Len(t, c.Items, MaxApplicants)
}

func TestAddApplicant_IDFromClock(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeClock(t, at)

	var c ApplicantCollection
	first := c.AddApplicant()
	second := c.AddApplicant()

	require.Equal(t, at.UnixMilli(), first.ID)
	require.Equal(t, at.UnixMilli()+1, second.ID)
}

func TestRemoveApplicant_Cascade(t *testing.T) {
	a := NewFullAssessment()
	applicant := &Applicant{ID: 1}
	a.Applicants.Items = []*Applicant{applicant}
	keep := &UnsecuredCreditItem{ApplicantID: 2, Creditor: "other"}
	a.UnsecuredCredit.Items = []*UnsecuredCreditItem{
		{ApplicantID: 1, Creditor: "mine"},
		keep,
	}

	removed := a.RemoveApplicant(a.Applicants.Items[0])

	require.Equal(t, []*Applicant{applicant}, removed)
	require.Empty(t, a.Applicants.Items)
	require.Equal(t, []*UnsecuredCreditItem{keep}, a.UnsecuredCredit.Items)
}

func TestRemoveApplicant_CascadeAdjacentItems(t *testing.T) {
	a := NewFullAssessment()
	applicant := &Applicant{ID: 7}
	other := &Applicant{ID: 8}
	a.Applicants.Items = []*Applicant{applicant, other}

	k1 := &UnsecuredCreditItem{ApplicantID: 8}
	k2 := &UnsecuredCreditItem{ApplicantID: 8}
	a.UnsecuredCredit.Items = []*UnsecuredCreditItem{
		{ApplicantID: 7}, {ApplicantID: 7}, k1, {ApplicantID: 7}, {ApplicantID: 7}, k2, {ApplicantID: 7},
	}

	require.NotNil(t, a.RemoveApplicant(applicant))
	require.Equal(t, []*UnsecuredCreditItem{k1, k2}, a.UnsecuredCredit.Items)
	require.Equal(t, []*Applicant{other}, a.Applicants.Items)
}

func TestRemoveApplicant_NoMatchingCredit(t *testing.T) {
	a := NewFullAssessment()
	applicant := &Applicant{ID: 1}
	a.Applicants.Items = []*Applicant{applicant}
	items := []*UnsecuredCreditItem{{ApplicantID: 2}, {ApplicantID: 3}}
	a.UnsecuredCredit.Items = append([]*UnsecuredCreditItem(nil), items...)

	require.NotNil(t, a.RemoveApplicant(applicant))
	require.Equal(t, items, a.UnsecuredCredit.Items)
}

func TestRemoveApplicant_NonMember(t *testing.T) {
	a := NewFullAssessment()
	member := &Applicant{ID: 1}
	a.Applicants.Items = []*Applicant{member}
	a.UnsecuredCredit.Items = []*UnsecuredCreditItem{{ApplicantID: 1}}

	// same id, different record: identity decides membership
	stranger := &Applicant{ID: 1}

	require.Nil(t, a.RemoveApplicant(stranger))
	require.Len(t, a.Applicants.Items, 1)
	require.Len(t, a.UnsecuredCredit.Items, 1)
}

func TestRemoveApplicant_Empty(t *testing.T) {
	var c ApplicantCollection
	unsecured := &UnsecuredCreditCollection{Items: []*UnsecuredCreditItem{{ApplicantID: 1}}}

	require.Nil(t, c.RemoveApplicant(&Applicant{ID: 1}, unsecured))
	require.Len(t, unsecured.Items, 1)
}

func TestRemoveApplicant_NilSiblingSkipsCascade(t *testing.T) {
	applicant := &Applicant{ID: 1}
	c := ApplicantCollection{Items: []*Applicant{applicant}}

	require.Equal(t, []*Applicant{applicant}, c.RemoveApplicant(applicant, nil))
	require.Empty(t, c.Items)
}

func TestApplicantCollection_TotalNetMonthlyIncome(t *testing.T) {
	c := ApplicantCollection{Items: []*Applicant{
		{ID: 1, MonthlyIncome: MonthlyIncome{EmployedNetMonthlyIncome: d("2000")}},
		{ID: 2, MonthlyIncome: MonthlyIncome{StatePension: d("650.25"), ChildBenefit: d("80")}},
		nil,
	}}

	require.True(t, c.TotalNetMonthlyIncome().Equal(d("2730.25")))
	require.Equal(t, c.Items[1], c.FindApplicant(2))
	require.Nil(t, c.FindApplicant(99))
}
