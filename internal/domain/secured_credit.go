package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// SecuredCreditItem is a debt secured against property, e.g. a mortgage or second charge.
type SecuredCreditItem struct {
	Creditor         string          `json:"creditor" validate:"required"`
	ChargeType       int             `json:"chargeType" validate:"required"`
	Arrears          decimal.Decimal `json:"arrears" validate:"required"`
	Balance          decimal.Decimal `json:"balance" validate:"required"`
	MonthlyRepayment decimal.Decimal `json:"monthlyRepayment" validate:"required"`
	ToBeRepayed      bool            `json:"toBeRepayed"`
}

func securedArrears(item *SecuredCreditItem) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.Arrears
}

func securedBalance(item *SecuredCreditItem) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.Balance
}

func securedMonthlyRepayment(item *SecuredCreditItem) decimal.Decimal {
	if item == nil {
		return decimal.Zero
	}
	return item.MonthlyRepayment
}

type SecuredCreditCollection struct {
	Items []*SecuredCreditItem `json:"items" validate:"dive"`
}

func (c *SecuredCreditCollection) ItemsToBeRepayed() []*SecuredCreditItem {
	var items []*SecuredCreditItem
	for _, item := range c.Items {
		if item != nil && item.ToBeRepayed {
			items = append(items, item)
		}
	}
	return items
}

func (c *SecuredCreditCollection) TotalArrears() decimal.Decimal {
	return Sum(c.Items, securedArrears)
}

func (c *SecuredCreditCollection) TotalBalance() decimal.Decimal {
	return Sum(c.Items, securedBalance)
}

func (c *SecuredCreditCollection) TotalMonthlyRepayment() decimal.Decimal {
	return Sum(c.Items, securedMonthlyRepayment)
}

func (c *SecuredCreditCollection) TotalArrearsToBeRepayed() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedArrears)
}

func (c *SecuredCreditCollection) TotalBalanceToBeRepayed() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedBalance)
}

func (c *SecuredCreditCollection) TotalMonthlyRepaymentToBeRepayed() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedMonthlyRepayment)
}

// The Remaining aggregates are taken over the to-be-repaid items as well, so they always
// match the ToBeRepayed aggregates.

func (c *SecuredCreditCollection) TotalArrearsRemaining() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedArrears)
}

func (c *SecuredCreditCollection) TotalBalanceRemaining() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedBalance)
}

func (c *SecuredCreditCollection) TotalMonthlyRepaymentRemaining() decimal.Decimal {
	return Sum(c.ItemsToBeRepayed(), securedMonthlyRepayment)
}

// AddSecuredCredit appends an item with zeroed amounts and returns it.
func (c *SecuredCreditCollection) AddSecuredCredit() *SecuredCreditItem {
	item := &SecuredCreditItem{
		Arrears:          decimal.Zero,
		Balance:          decimal.Zero,
		MonthlyRepayment: decimal.Zero,
	}
	c.Items = append(c.Items, item)
	return item
}

// RemoveSecuredCredit removes item by identity. It returns nil when item is not a member.
func (c *SecuredCreditCollection) RemoveSecuredCredit(item *SecuredCreditItem) []*SecuredCreditItem {
	idx := slices.Index(c.Items, item)
	if idx == -1 || item == nil {
		return nil
	}
	c.Items = slices.Delete(c.Items, idx, idx+1)
	return []*SecuredCreditItem{item}
}

// At returns the item at index i, or nil when i is out of range.
func (c *SecuredCreditCollection) At(i int) *SecuredCreditItem {
	if i < 0 || i >= len(c.Items) {
		return nil
	}
	return c.Items[i]
}

func (c *SecuredCreditCollection) RemoveSecuredCreditAt(i int) []*SecuredCreditItem {
	item := c.At(i)
	if item == nil {
		return nil
	}
	return c.RemoveSecuredCredit(item)
}
