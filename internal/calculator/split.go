package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/models"
)

// Precision is the number of fractional digits kept by every division in the engine.
// Nothing is rounded to cents here; that happens only when amounts are displayed.
const Precision int32 = 28

// PersonItem represents an item's share for one person.
type PersonItem struct {
	ItemID int64
	Name   string
	Amount decimal.Decimal // This person's share of the item
}

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal

	// Items are the items this person shares, in bill order.
	Items []PersonItem
}

// Allocation maps a participant id to that participant's split.
// It holds exactly one entry per participant passed to Allocate.
type Allocation map[int64]*PersonSplit

// Allocate computes how much each participant owes.
//
// Algorithm:
//   - subtotal = sum of all item costs, assigned or not
//   - each item's cost is divided equally between its assigned participants;
//     items nobody is assigned to are not charged to anyone
//   - assignments to ids that are not in participants are ignored
//   - when subtotal is zero nobody owes any tax or tip
//   - proportional: share = amount × person_subtotal / subtotal
//   - even: share = amount / len(participants)
//
// Allocate never fails: empty participants, empty items and zero amounts all
// produce a well defined (possibly empty) result. It holds no state and returns
// equal results for equal inputs.
func Allocate(items []models.Item, participants []models.Participant, tax, tip decimal.Decimal, taxMode, tipMode models.SplitMode) Allocation {
	splits := make(Allocation, len(participants))

	// Initialize splits for all participants
	for _, p := range participants {
		splits[p.ID] = &PersonSplit{
			Subtotal: decimal.Zero,
			Tax:      decimal.Zero,
			Tip:      decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	subtotal := Subtotal(items)

	// Calculate each person's subtotal based on assigned items
	for _, item := range items {
		if len(item.ParticipantIDs) == 0 {
			continue
		}

		perPersonAmount := item.Cost.DivRound(decimal.NewFromInt(int64(len(item.ParticipantIDs))), Precision)
		for _, id := range item.ParticipantIDs {
			if split, exists := splits[id]; exists {
				split.Subtotal = split.Subtotal.Add(perPersonAmount)
				split.Items = append(split.Items, PersonItem{
					ItemID: item.ID,
					Name:   item.Name,
					Amount: perPersonAmount,
				})
			}
		}
	}

	if subtotal.IsZero() {
		for _, split := range splits {
			split.Total = split.Subtotal
		}
		return splits
	}

	count := decimal.NewFromInt(int64(len(participants)))
	for _, split := range splits {
		split.Tax = share(tax, taxMode, split.Subtotal, subtotal, count)
		split.Tip = share(tip, tipMode, split.Subtotal, subtotal, count)
		split.Total = split.Subtotal.Add(split.Tax).Add(split.Tip)
	}

	return splits
}

// ForBill runs Allocate on the current state of a bill.
func ForBill(b models.Bill) Allocation {
	return Allocate(b.Items, b.Participants, b.Tax, b.Tip, b.TaxMode, b.TipMode)
}

// share returns one person's part of amount. count is never zero here since
// share is only called while iterating over at least one participant.
func share(amount decimal.Decimal, mode models.SplitMode, personSubtotal, subtotal, count decimal.Decimal) decimal.Decimal {
	if mode == models.SplitEven {
		return amount.DivRound(count, Precision)
	}
	return personSubtotal.Mul(amount).DivRound(subtotal, Precision)
}
