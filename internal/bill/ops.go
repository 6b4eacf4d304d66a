// Package bill implements the operations that edit a bill.
//
// Each operation is a small value type implementing Op. The set is closed: only
// types in this package satisfy Op, so callers pick an operation by type instead
// of passing loosely shaped arguments. Apply runs operations on a copy of a bill
// and never fails; input that would break a bill invariant (negative amounts,
// unknown ids) is clamped or ignored.
package bill

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/models"
)

// Op is one edit of a bill.
type Op interface {
	// Kind is a stable name for the operation, used in logs and metrics.
	Kind() string

	apply(b *models.Bill)
}

// Apply returns a copy of b with ops applied in order. b itself is not modified.
func Apply(b models.Bill, ops ...Op) models.Bill {
	next := b.Clone()
	for _, op := range ops {
		op.apply(&next)
	}
	return next
}

// AddParticipant appends a new participant with a freshly allocated id.
type AddParticipant struct {
	Name string
}

// RenameParticipant changes a participant's name.
type RenameParticipant struct {
	ID   int64
	Name string
}

// RemoveParticipant deletes a participant. Items keep their reference to the
// removed id; it simply stops counting when the bill is split.
type RemoveParticipant struct {
	ID int64
}

// AddItem appends a new item with zero cost and no participants.
type AddItem struct {
	Name string
}

// RenameItem changes an item's name.
type RenameItem struct {
	ID   int64
	Name string
}

// SetItemCost changes an item's cost. Negative costs are stored as zero.
type SetItemCost struct {
	ID   int64
	Cost decimal.Decimal
}

// RemoveItem deletes an item.
type RemoveItem struct {
	ID int64
}

// ToggleParticipant assigns a participant to an item, or unassigns them if
// they already share it. Unknown items or participants leave the bill as is,
// except that a leftover reference to a removed participant can be toggled off.
type ToggleParticipant struct {
	ItemID        int64
	ParticipantID int64
}

// SetTax changes the bill's tax. Negative amounts are stored as zero.
type SetTax struct {
	Amount decimal.Decimal
}

// SetTip changes the bill's tip. Negative amounts are stored as zero.
type SetTip struct {
	Amount decimal.Decimal
}

// SetTaxMode changes how tax is shared.
type SetTaxMode struct {
	Mode models.SplitMode
}

// SetTipMode changes how tip is shared.
type SetTipMode struct {
	Mode models.SplitMode
}

// ClearAll empties participants and items and zeroes tax and tip.
// Id counters are kept so ids are never handed out twice.
type ClearAll struct{}

// ImportReceipt replaces every item with the receipt's lines and sets tax and tip.
// Imported items get fresh ids and no participants.
type ImportReceipt struct {
	Lines []Line
	Tax   decimal.Decimal
	Tip   decimal.Decimal
}

// Line is one priced line of an imported receipt.
type Line struct {
	Name  string
	Price decimal.Decimal
}

func (AddParticipant) Kind() string    { return "add_participant" }
func (RenameParticipant) Kind() string { return "rename_participant" }
func (RemoveParticipant) Kind() string { return "remove_participant" }
func (AddItem) Kind() string           { return "add_item" }
func (RenameItem) Kind() string        { return "rename_item" }
func (SetItemCost) Kind() string       { return "set_item_cost" }
func (RemoveItem) Kind() string        { return "remove_item" }
func (ToggleParticipant) Kind() string { return "toggle_participant" }
func (SetTax) Kind() string            { return "set_tax" }
func (SetTip) Kind() string            { return "set_tip" }
func (SetTaxMode) Kind() string        { return "set_tax_mode" }
func (SetTipMode) Kind() string        { return "set_tip_mode" }
func (ClearAll) Kind() string          { return "clear_all" }
func (ImportReceipt) Kind() string     { return "import_receipt" }

func (op AddParticipant) apply(b *models.Bill) {
	b.Participants = append(b.Participants, models.Participant{
		ID:   b.IDs.NextParticipant(),
		Name: op.Name,
	})
}

func (op RenameParticipant) apply(b *models.Bill) {
	if i := participantIndex(b, op.ID); i >= 0 {
		b.Participants[i].Name = op.Name
	}
}

func (op RemoveParticipant) apply(b *models.Bill) {
	b.Participants = slices.DeleteFunc(b.Participants, func(p models.Participant) bool {
		return p.ID == op.ID
	})
}

func (op AddItem) apply(b *models.Bill) {
	b.Items = append(b.Items, models.Item{
		ID:   b.IDs.NextItem(),
		Name: op.Name,
		Cost: decimal.Zero,
	})
}

func (op RenameItem) apply(b *models.Bill) {
	if i := itemIndex(b, op.ID); i >= 0 {
		b.Items[i].Name = op.Name
	}
}

func (op SetItemCost) apply(b *models.Bill) {
	if i := itemIndex(b, op.ID); i >= 0 {
		b.Items[i].Cost = nonNegative(op.Cost)
	}
}

func (op RemoveItem) apply(b *models.Bill) {
	b.Items = slices.DeleteFunc(b.Items, func(item models.Item) bool {
		return item.ID == op.ID
	})
}

func (op ToggleParticipant) apply(b *models.Bill) {
	i := itemIndex(b, op.ItemID)
	if i < 0 {
		return
	}
	if _, ok := b.Participant(op.ParticipantID); !ok && !b.Items[i].HasParticipant(op.ParticipantID) {
		return
	}
	b.Items[i].ToggleParticipant(op.ParticipantID)
}

func (op SetTax) apply(b *models.Bill) { b.Tax = nonNegative(op.Amount) }

func (op SetTip) apply(b *models.Bill) { b.Tip = nonNegative(op.Amount) }

func (op SetTaxMode) apply(b *models.Bill) { b.TaxMode = op.Mode }

func (op SetTipMode) apply(b *models.Bill) { b.TipMode = op.Mode }

func (ClearAll) apply(b *models.Bill) {
	b.Participants = nil
	b.Items = nil
	b.Tax = decimal.Zero
	b.Tip = decimal.Zero
}

func (op ImportReceipt) apply(b *models.Bill) {
	items := make([]models.Item, 0, len(op.Lines))
	for _, line := range op.Lines {
		items = append(items, models.Item{
			ID:   b.IDs.NextItem(),
			Name: line.Name,
			Cost: nonNegative(line.Price),
		})
	}
	b.Items = items
	b.Tax = nonNegative(op.Tax)
	b.Tip = nonNegative(op.Tip)
}

func participantIndex(b *models.Bill, id int64) int {
	return slices.IndexFunc(b.Participants, func(p models.Participant) bool { return p.ID == id })
}

func itemIndex(b *models.Bill, id int64) int {
	return slices.IndexFunc(b.Items, func(item models.Item) bool { return item.ID == id })
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
