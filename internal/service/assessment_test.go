package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affordability-assessment/internal/domain"
)

type harness struct {
	svc      *AssessmentService
	repo     *memRepo
	cache    *memCache
	notifier *recNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{repo: newMemRepo(), cache: newMemCache(), notifier: &recNotifier{}}
	h.svc = NewAssessmentService(h.repo, h.cache, h.notifier, time.Hour)
	return h
}

func (h *harness) create(t *testing.T, userID int64) string {
	t.Helper()
	sess, err := h.svc.Create(context.Background(), userID, "BRK-1")
	require.NoError(t, err)
	return sess.ID
}

func TestAssessmentService_CreateAndGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, 1, "BRK-9")
	require.NoError(t, err)
	assert.Equal(t, "BRK-9", created.Assessment.BrokerRef)
	assert.NotEmpty(t, created.Errors)
	assert.Equal(t, "Council Tax", created.Assessment.Household.MonthlyExpenditure.Essentials.CouncilTax.Name)

	got, err := h.svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 0, h.repo.gets, "served from cache")

	require.NoError(t, h.cache.Del(ctx, sessionKeyPrefix+created.ID))
	_, err = h.svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, h.repo.gets)

	_, err = h.cache.Get(ctx, sessionKeyPrefix+created.ID)
	assert.NoError(t, err, "cache refilled after a miss")
}

func TestAssessmentService_OtherUserSeesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	_, err := h.svc.Get(ctx, 2, id)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	require.NoError(t, h.cache.Del(ctx, sessionKeyPrefix+id))
	_, err = h.svc.Get(ctx, 2, id)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)

	_, err = h.svc.SetBrokerRef(ctx, 2, id, "stolen")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestAssessmentService_ListAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)
	h.create(t, 2)

	list, err := h.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	require.NoError(t, h.svc.Delete(ctx, 1, id))
	assert.ErrorIs(t, h.svc.Delete(ctx, 1, id), ErrAssessmentNotFound)

	_, err = h.svc.Get(ctx, 1, id)
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestAssessmentService_ApplicantLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	seen := map[int64]bool{}
	for i := 0; i < domain.MaxApplicants; i++ {
		_, applicantID, err := h.svc.AddApplicant(ctx, 1, id, nil)
		require.NoError(t, err)
		assert.False(t, seen[applicantID], "ids are unique")
		seen[applicantID] = true
	}

	_, _, err := h.svc.AddApplicant(ctx, 1, id, nil)
	require.ErrorIs(t, err, ErrApplicantLimit)
	assert.Equal(t, domain.MaxApplicants, h.repo.updates, "failed add is not persisted")

	sess, err := h.svc.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.False(t, sess.Summary.Applicants.CanAddApplicant)
}

func TestAssessmentService_ApplicantEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	_, applicantID, err := h.svc.AddApplicant(ctx, 1, id, &domain.Applicant{FirstName: "Jane"})
	require.NoError(t, err)

	dob := time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC)
	sess, err := h.svc.UpdateApplicant(ctx, 1, id, applicantID, domain.Applicant{
		ID:        999,
		FirstName: "Jane",
		LastName:  "Smith",
		DOB:       &dob,
		MonthlyIncome: domain.MonthlyIncome{
			EmployedNetMonthlyIncome: decimal.NewFromInt(2500),
		},
	})
	require.NoError(t, err)

	ap := sess.Assessment.Applicants.FindApplicant(applicantID)
	require.NotNil(t, ap)
	assert.Equal(t, "Jane Smith", ap.FullName())
	assert.Equal(t, domain.DefaultRetirementAge, ap.RetirementAge)
	assert.True(t, sess.Summary.Applicants.TotalNetMonthlyIncome.Equal(decimal.NewFromInt(2500)))

	_, err = h.svc.UpdateApplicant(ctx, 1, id, 12345, domain.Applicant{})
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestAssessmentService_RemoveApplicantCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	_, first, err := h.svc.AddApplicant(ctx, 1, id, nil)
	require.NoError(t, err)
	_, second, err := h.svc.AddApplicant(ctx, 1, id, nil)
	require.NoError(t, err)

	for _, owner := range []int64{first, second, first} {
		_, err := h.svc.AddUnsecuredCredit(ctx, 1, id, &domain.UnsecuredCreditItem{
			Creditor: "Bank", ApplicantID: owner, CreditType: 1, Balance: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}

	sess, err := h.svc.RemoveApplicant(ctx, 1, id, first)
	require.NoError(t, err)
	require.Len(t, sess.Assessment.UnsecuredCredit.Items, 1)
	assert.Equal(t, second, sess.Assessment.UnsecuredCredit.Items[0].ApplicantID)

	_, err = h.svc.RemoveApplicant(ctx, 1, id, first)
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestAssessmentService_CreditItems(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	_, err := h.svc.AddUnsecuredCredit(ctx, 1, id, &domain.UnsecuredCreditItem{ApplicantID: 42})
	assert.ErrorIs(t, err, ErrApplicantNotFound)

	_, err = h.svc.AddUnsecuredCredit(ctx, 1, id, nil)
	require.NoError(t, err)
	sess, err := h.svc.UpdateUnsecuredCredit(ctx, 1, id, 0, domain.UnsecuredCreditItem{
		Creditor: "Card Co", CreditType: 9, Balance: decimal.NewFromInt(400), MonthlyRepayment: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, len(sess.Assessment.UnsecuredCredit.CCJAndDefaults()))

	_, err = h.svc.UpdateUnsecuredCredit(ctx, 1, id, 3, domain.UnsecuredCreditItem{})
	assert.ErrorIs(t, err, ErrCreditItemNotFound)
	_, err = h.svc.RemoveUnsecuredCredit(ctx, 1, id, -1)
	assert.ErrorIs(t, err, ErrCreditItemNotFound)

	_, err = h.svc.AddSecuredCredit(ctx, 1, id, &domain.SecuredCreditItem{
		Creditor: "Mortgage Co", Balance: decimal.NewFromInt(90000), MonthlyRepayment: decimal.NewFromInt(700),
	})
	require.NoError(t, err)
	sess, err = h.svc.UpdateSecuredCredit(ctx, 1, id, 0, domain.SecuredCreditItem{
		Creditor: "Mortgage Co", Balance: decimal.NewFromInt(90000), MonthlyRepayment: decimal.NewFromInt(650), ToBeRepayed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Summary.SecuredCredit.ItemsToBeRepayed)

	sess, err = h.svc.RemoveSecuredCredit(ctx, 1, id, 0)
	require.NoError(t, err)
	assert.Empty(t, sess.Assessment.SecuredCredit.Items)
	_, err = h.svc.RemoveSecuredCredit(ctx, 1, id, 0)
	assert.ErrorIs(t, err, ErrCreditItemNotFound)

	sess, err = h.svc.RemoveUnsecuredCredit(ctx, 1, id, 0)
	require.NoError(t, err)
	assert.Empty(t, sess.Assessment.UnsecuredCredit.Items)
}

func TestAssessmentService_HouseholdIsRelabelled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	var hh domain.Household
	hh.NumberOfDependants18OrUnder = 2
	hh.MonthlyExpenditure.Essentials.CouncilTax = domain.ExpenseItem{Name: "renamed", Value: decimal.NewFromInt(120)}

	sess, err := h.svc.SetHousehold(ctx, 1, id, hh)
	require.NoError(t, err)

	tax := sess.Assessment.Household.MonthlyExpenditure.Essentials.CouncilTax
	assert.Equal(t, "Council Tax", tax.Name)
	assert.True(t, tax.Value.Equal(decimal.NewFromInt(120)))
	assert.True(t, sess.Summary.Household.Total.Equal(decimal.NewFromInt(120)))
}

func TestAssessmentService_PersistsDecimalsExactly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	amount := decimal.RequireFromString("25000.55")
	_, err := h.svc.SetLoanDetails(ctx, 1, id, domain.LoanDetails{Amount: amount, Term: 60})
	require.NoError(t, err)

	require.NoError(t, h.cache.Del(ctx, sessionKeyPrefix+id))
	sess, err := h.svc.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, sess.Assessment.LoanDetails.Amount.Equal(amount))
	assert.Equal(t, 60, sess.Assessment.LoanDetails.Term)
	assert.False(t, sess.Errors.Has("loanDetails.amount"))
}

func TestAssessmentService_FailedUpdateWritesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)
	boom := errors.New("boom")

	_, err := h.svc.Update(ctx, 1, id, func(a *domain.FullAssessment) error {
		a.BrokerRef = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, h.repo.updates)
	assert.Empty(t, h.notifier.all())

	sess, err := h.svc.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "BRK-1", sess.Assessment.BrokerRef)
}

func TestAssessmentService_NotifiesOnUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 7)

	_, err := h.svc.SetBrokerRef(ctx, 7, id, "BRK-2")
	require.NoError(t, err)

	events := h.notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, event{Kind: "updated", UserID: 7, ID: id}, events[0])
}

func TestAssessmentService_ConcurrentUpdatesAreSerialised(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.AddSecuredCredit(ctx, 1, id, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := h.svc.Get(ctx, 1, id)
	require.NoError(t, err)
	assert.Len(t, sess.Assessment.SecuredCredit.Items, n)
}

func lockCount(s *AssessmentService) int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func TestAssessmentService_EditLockExcludesAndIsReleased(t *testing.T) {
	h := newHarness(t)

	var active, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := h.svc.lock("a-1")
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, peak.Load())
	assert.Equal(t, 0, lockCount(h.svc))
}

func TestAssessmentService_DeleteWithQueuedEdit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.create(t, 1)

	unlock := h.svc.lock(id)

	deleted := make(chan error, 1)
	go func() { deleted <- h.svc.Delete(ctx, 1, id) }()
	require.Eventually(t, func() bool {
		h.svc.locksMu.Lock()
		defer h.svc.locksMu.Unlock()
		return h.svc.locks[id] != nil && h.svc.locks[id].refs == 2
	}, time.Second, 5*time.Millisecond)

	unlock()
	require.NoError(t, <-deleted)

	_, err := h.svc.SetBrokerRef(ctx, 1, id, "late")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
	assert.Equal(t, 0, lockCount(h.svc))
}
