package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func creditTypeCode(t *testing.T, name string) int {
	t.Helper()
	for _, ct := range UnsecuredCreditTypes {
		if ct.Name == name {
			return ct.Code
		}
	}
	t.Fatalf("unknown credit type %q", name)
	return -1
}

func TestUnsecuredCreditTypes_Table(t *testing.T) {
	require.Len(t, UnsecuredCreditTypes, 12)

	counts := map[UnsecuredSubType]int{}
	for i, ct := range UnsecuredCreditTypes {
		require.Equal(t, i, ct.Code)
		counts[ct.SubType]++
	}
	require.Equal(t, map[UnsecuredSubType]int{SubTypeCredit: 8, SubTypeCCJ: 2, SubTypeIVA: 2}, counts)

	_, ok := LookupUnsecuredCreditType(-1)
	require.False(t, ok)
	_, ok = LookupUnsecuredCreditType(12)
	require.False(t, ok)
}

func TestUnsecuredCredit_Classification(t *testing.T) {
	ccj := &UnsecuredCreditItem{CreditType: creditTypeCode(t, "CCJ")}
	def := &UnsecuredCreditItem{CreditType: creditTypeCode(t, "Default")}
	iva := &UnsecuredCreditItem{CreditType: creditTypeCode(t, "Bankruptcy")}
	card := &UnsecuredCreditItem{CreditType: creditTypeCode(t, "Credit Card")}
	unknown := &UnsecuredCreditItem{CreditType: 42}

	c := UnsecuredCreditCollection{Items: []*UnsecuredCreditItem{ccj, def, iva, card, unknown, nil}}

	require.Equal(t, []*UnsecuredCreditItem{ccj, def}, c.CCJAndDefaults())
	require.Equal(t, []*UnsecuredCreditItem{iva}, c.IVAAndBankruptcies())
	require.Equal(t, []*UnsecuredCreditItem{card}, c.Credits())

	assert.NotContains(t, c.Credits(), ccj)
	assert.NotContains(t, c.IVAAndBankruptcies(), ccj)
}

func TestUnsecuredCredit_RemainingFormulas(t *testing.T) {
	c := UnsecuredCreditCollection{Items: []*UnsecuredCreditItem{
		{CreditType: 0, Balance: d("1000"), MonthlyRepayment: d("50"), ToBeRepayed: true},
		{CreditType: 1, Balance: d("3000"), MonthlyRepayment: d("120")},
		{CreditType: 8, Balance: d("400"), MonthlyRepayment: d("20"), ToBeRepayed: true},
		{CreditType: 10, Balance: d("2500"), MonthlyRepayment: d("75")},
		// unclassified but flagged: only the to-be-repaid total sees it
		{CreditType: 99, Balance: d("10"), MonthlyRepayment: d("1"), ToBeRepayed: true},
	}}

	assert.True(t, c.TotalCreditBalance().Equal(d("4000")))
	assert.True(t, c.TotalCreditMonthlyRepayments().Equal(d("170")))
	assert.True(t, c.TotalCCJAndDefaultsBalance().Equal(d("400")))
	assert.True(t, c.TotalCCJAndDefaultsMonthlyRepayments().Equal(d("20")))
	assert.True(t, c.TotalIVAAndBankruptciesBalance().Equal(d("2500")))
	assert.True(t, c.TotalIVAAndBankruptciesMonthlyRepayments().Equal(d("75")))
	assert.True(t, c.TotalToBeRepayedBalance().Equal(d("1410")))

	// 400 + 2500 + 4000 - 1410
	assert.True(t, c.TotalRemainingBalance().Equal(d("5490")), "got %s", c.TotalRemainingBalance())
	// 20 + 75 + 170, flagged repayments are not subtracted
	assert.True(t, c.TotalRemainingMonthlyRepayments().Equal(d("265")), "got %s", c.TotalRemainingMonthlyRepayments())
}

func TestUnsecuredCredit_AddRemove(t *testing.T) {
	var c UnsecuredCreditCollection

	first := c.AddUnsecuredCredit()
	second := c.AddUnsecuredCredit()
	require.Len(t, c.Items, 2)
	require.True(t, first.Balance.IsZero())
	require.True(t, first.MonthlyRepayment.IsZero())

	require.Nil(t, c.RemoveUnsecuredCredit(&UnsecuredCreditItem{}))
	require.Nil(t, c.RemoveUnsecuredCredit(nil))
	require.Len(t, c.Items, 2)

	require.Equal(t, []*UnsecuredCreditItem{first}, c.RemoveUnsecuredCredit(first))
	require.Equal(t, []*UnsecuredCreditItem{second}, c.Items)

	require.Nil(t, c.RemoveUnsecuredCreditAt(3))
	require.NotNil(t, c.RemoveUnsecuredCreditAt(0))
	require.Empty(t, c.Items)
}

func TestSecuredCredit_Aggregates(t *testing.T) {
	c := SecuredCreditCollection{Items: []*SecuredCreditItem{
		{Creditor: "Bank A", Arrears: d("100"), Balance: d("150000"), MonthlyRepayment: d("900"), ToBeRepayed: true},
		{Creditor: "Bank B", Arrears: d("0"), Balance: d("20000"), MonthlyRepayment: d("250")},
		{Creditor: "Bank C", Arrears: d("40"), Balance: d("5000"), MonthlyRepayment: d("110"), ToBeRepayed: true},
	}}

	require.Len(t, c.ItemsToBeRepayed(), 2)

	assert.True(t, c.TotalArrears().Equal(d("140")))
	assert.True(t, c.TotalBalance().Equal(d("175000")))
	assert.True(t, c.TotalMonthlyRepayment().Equal(d("1260")))

	assert.True(t, c.TotalArrearsToBeRepayed().Equal(d("140")))
	assert.True(t, c.TotalBalanceToBeRepayed().Equal(d("155000")))
	assert.True(t, c.TotalMonthlyRepaymentToBeRepayed().Equal(d("1010")))

	assert.True(t, c.TotalArrearsRemaining().Equal(c.TotalArrearsToBeRepayed()))
	assert.True(t, c.TotalBalanceRemaining().Equal(c.TotalBalanceToBeRepayed()))
	assert.True(t, c.TotalMonthlyRepaymentRemaining().Equal(c.TotalMonthlyRepaymentToBeRepayed()))
}

func TestSecuredCredit_AddRemove(t *testing.T) {
	var c SecuredCreditCollection
	item := c.AddSecuredCredit()
	require.True(t, item.Arrears.IsZero())

	require.Nil(t, c.RemoveSecuredCredit(&SecuredCreditItem{}))
	require.Nil(t, c.RemoveSecuredCreditAt(-1))
	require.Equal(t, []*SecuredCreditItem{item}, c.RemoveSecuredCreditAt(0))
	require.Empty(t, c.Items)
}
