package models

// IDs allocates participant and item ids for one bill.
// Counters only ever move forward: removing a participant or an item never frees its id.
type IDs struct {
	// LastParticipant is the most recently issued participant id (0 when none was issued).
	LastParticipant int64

	// LastItem is the most recently issued item id (0 when none was issued).
	LastItem int64
}

// NextParticipant advances the participant counter and returns the new id.
func (ids *IDs) NextParticipant() int64 {
	ids.LastParticipant++
	return ids.LastParticipant
}

// NextItem advances the item counter and returns the new id.
func (ids *IDs) NextItem() int64 {
	ids.LastItem++
	return ids.LastItem
}

// Reconcile raises the counters to at least the largest id present in the bill.
// Stores call it after loading so that a lost or stale counter can never hand out
// an id that is already in use.
func (ids *IDs) Reconcile(b *Bill) {
	for _, p := range b.Participants {
		ids.LastParticipant = max(ids.LastParticipant, p.ID)
	}
	for _, item := range b.Items {
		ids.LastItem = max(ids.LastItem, item.ID)
	}
}
