package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/models"
)

// DefaultTaxRate is the sales tax percentage suggested when the bill has none.
var DefaultTaxRate = decimal.RequireFromString("8.25")

var hundred = decimal.NewFromInt(100)

// Summary holds the bill level aggregates shown next to the split.
type Summary struct {
	Subtotal decimal.Decimal // Sum of all item costs
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal // Subtotal + Tax + Tip

	// Assigned is the part of Subtotal charged to current participants.
	Assigned decimal.Decimal

	// Unassigned is the part of Subtotal nobody is charged for: items without
	// participants, or whose participants were all removed.
	Unassigned decimal.Decimal
}

// Subtotal returns the sum of all item costs, independent of assignment.
func Subtotal(items []models.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Cost)
	}
	return sum
}

// TotalAfterExtras returns subtotal + tax + tip.
func TotalAfterExtras(items []models.Item, tax, tip decimal.Decimal) decimal.Decimal {
	return Subtotal(items).Add(tax).Add(tip)
}

// Percentage returns subtotal × percentage / 100.
func Percentage(subtotal, percentage decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percentage).Div(hundred)
}

// DefaultTax suggests a tax amount for subtotal at DefaultTaxRate.
func DefaultTax(subtotal decimal.Decimal) decimal.Decimal {
	return Percentage(subtotal, DefaultTaxRate)
}

// TipFromPercentage returns the tip for a percentage of subtotal.
func TipFromPercentage(subtotal, percentage decimal.Decimal) decimal.Decimal {
	return Percentage(subtotal, percentage)
}

// Summarize computes the bill aggregates, using alloc to find the assigned part.
func Summarize(b models.Bill, alloc Allocation) Summary {
	subtotal := Subtotal(b.Items)
	assigned := decimal.Zero
	for _, split := range alloc {
		assigned = assigned.Add(split.Subtotal)
	}
	return Summary{
		Subtotal:   subtotal,
		Tax:        b.Tax,
		Tip:        b.Tip,
		Total:      subtotal.Add(b.Tax).Add(b.Tip),
		Assigned:   assigned,
		Unassigned: subtotal.Sub(assigned),
	}
}
