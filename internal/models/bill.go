package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Bill is the complete state of one shared bill.
// It is owned by a single writer (the service or the CLI); readers work on copies.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	Title string

	// Participants is the ordered list of people splitting the bill.
	Participants []Participant

	// Items are the individual line items on the bill.
	Items []Item

	// Tax is the total tax charged on the bill. Never negative.
	Tax decimal.Decimal

	// Tip is the total tip added to the bill. Never negative.
	Tip decimal.Decimal

	// TaxMode selects how Tax is shared between participants.
	TaxMode SplitMode

	// TipMode selects how Tip is shared between participants.
	TipMode SplitMode

	// IDs hands out participant and item ids for this bill.
	IDs IDs

	// PassphraseHash is the bcrypt hash guarding edit access, empty when the bill has none.
	PassphraseHash string

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// NewBill returns an empty bill with both split modes set to proportional.
func NewBill(id, title string) *Bill {
	return &Bill{
		ID:      id,
		Title:   title,
		Tax:     decimal.Zero,
		Tip:     decimal.Zero,
		TaxMode: SplitProportional,
		TipMode: SplitProportional,
	}
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	c := b
	c.Participants = slices.Clone(b.Participants)
	if b.Items != nil {
		c.Items = make([]Item, len(b.Items))
		for i, item := range b.Items {
			c.Items[i] = item.Clone()
		}
	}
	return c
}

// Participant finds a participant by id.
func (b Bill) Participant(id int64) (Participant, bool) {
	for _, p := range b.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Participant represents one person sharing the bill.
type Participant struct {
	// ID is unique within the bill, starts at 1 and is never reused.
	ID int64

	// Name is the display name. It may be empty.
	Name string
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is unique within the bill, starts at 1 and is never reused.
	ID int64

	// Name is the description of the item (e.g., "Pizza", "Beer").
	Name string

	// Cost is the pre-tax price of this item. Never negative.
	Cost decimal.Decimal

	// ParticipantIDs is the set of participants sharing this item, kept sorted.
	// An empty set means nobody is charged for the item.
	// Ids of removed participants may remain here; they are ignored when splitting.
	ParticipantIDs []int64
}

// Clone returns a copy of the item that shares no memory with the original.
func (i Item) Clone() Item {
	c := i
	c.ParticipantIDs = slices.Clone(i.ParticipantIDs)
	return c
}

// HasParticipant reports whether the participant is assigned to the item.
func (i Item) HasParticipant(id int64) bool {
	_, found := slices.BinarySearch(i.ParticipantIDs, id)
	return found
}

// ToggleParticipant adds the participant to the item, or removes it when already assigned.
func (i *Item) ToggleParticipant(id int64) {
	pos, found := slices.BinarySearch(i.ParticipantIDs, id)
	if found {
		i.ParticipantIDs = slices.Delete(i.ParticipantIDs, pos, pos+1)
		return
	}
	i.ParticipantIDs = slices.Insert(i.ParticipantIDs, pos, id)
}
