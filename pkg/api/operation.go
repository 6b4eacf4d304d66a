package api

import "github.com/shopspring/decimal"

// Operation is one change to a bill. Exactly one field must be set.
type Operation struct {
	AddParticipant    *NameArg   `json:"addParticipant,omitempty"`
	RenameParticipant *RenameArg `json:"renameParticipant,omitempty"`
	RemoveParticipant *IDArg     `json:"removeParticipant,omitempty"`
	AddItem           *NameArg   `json:"addItem,omitempty"`
	RenameItem        *RenameArg `json:"renameItem,omitempty"`
	SetItemCost       *CostArg   `json:"setItemCost,omitempty"`
	RemoveItem        *IDArg     `json:"removeItem,omitempty"`
	ToggleParticipant *ToggleArg `json:"toggleParticipant,omitempty"`
	SetTax            *AmountArg `json:"setTax,omitempty"`
	SetTip            *AmountArg `json:"setTip,omitempty"`
	SetTaxMode        *ModeArg   `json:"setTaxMode,omitempty"`
	SetTipMode        *ModeArg   `json:"setTipMode,omitempty"`
	ClearAll          *ClearArg  `json:"clearAll,omitempty"`
}

// NameArg names a new participant or item.
type NameArg struct {
	Name string `json:"name"`
}

// RenameArg renames the participant or item with ID.
type RenameArg struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IDArg selects the participant or item to remove.
type IDArg struct {
	ID int64 `json:"id"`
}

// CostArg sets the cost of item ID. Negative costs are stored as zero.
type CostArg struct {
	ID   int64           `json:"id"`
	Cost decimal.Decimal `json:"cost"`
}

// ToggleArg adds the participant to the item, or removes them if already assigned.
type ToggleArg struct {
	ItemID        int64 `json:"itemId"`
	ParticipantID int64 `json:"participantId"`
}

// AmountArg is the new tax or tip amount. Negative amounts are stored as zero.
type AmountArg struct {
	Amount decimal.Decimal `json:"amount"`
}

// ModeArg names a split mode: "proportional" or "even".
type ModeArg struct {
	Mode string `json:"mode"`
}

// ClearArg carries no fields; it only marks the operation as ClearAll.
type ClearArg struct{}

// FieldsSet reports how many of the operation's fields are set.
func (o *Operation) FieldsSet() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, set := range []bool{
		o.AddParticipant != nil, o.RenameParticipant != nil, o.RemoveParticipant != nil,
		o.AddItem != nil, o.RenameItem != nil, o.SetItemCost != nil, o.RemoveItem != nil,
		o.ToggleParticipant != nil, o.SetTax != nil, o.SetTip != nil,
		o.SetTaxMode != nil, o.SetTipMode != nil, o.ClearAll != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
