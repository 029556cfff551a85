package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Sum adds prop over items. An empty or nil slice sums to zero.
func Sum[T any](items []T, prop func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(prop(item))
	}
	return total
}

// reservedTotalKey is skipped by TotalExpenses so a category never counts its own total.
const reservedTotalKey = "total"

// ExpenseBag is a keyed set of expense items, e.g. one household expenditure category.
type ExpenseBag map[string]*ExpenseItem

// TotalExpenses sums the value of every item in the bag except the "total" key.
// Keys are visited in sorted order so the result never depends on map iteration.
func TotalExpenses(bag ExpenseBag) decimal.Decimal {
	keys := make([]string, 0, len(bag))
	for key := range bag {
		if key == reservedTotalKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := decimal.Zero
	for _, key := range keys {
		if item := bag[key]; item != nil {
			total = total.Add(item.Value)
		}
	}
	return total
}
