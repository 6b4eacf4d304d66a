package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/calculator"
	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/pkg/api"
)

var errNoOperations = errors.New("at least one operation is required")

// toOps converts wire operations into bill operations. Nothing is applied
// unless every operation is valid.
func toOps(ops []*api.Operation) ([]bill.Op, error) {
	if len(ops) == 0 {
		return nil, errNoOperations
	}
	out := make([]bill.Op, 0, len(ops))
	for i, o := range ops {
		op, err := toOp(o)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}
		out = append(out, op)
	}
	return out, nil
}

func toOp(o *api.Operation) (bill.Op, error) {
	if n := o.FieldsSet(); n != 1 {
		return nil, fmt.Errorf("exactly one field must be set, got %d", n)
	}

	switch {
	case o.AddParticipant != nil:
		return bill.AddParticipant{Name: o.AddParticipant.Name}, nil
	case o.RenameParticipant != nil:
		return bill.RenameParticipant{ID: o.RenameParticipant.ID, Name: o.RenameParticipant.Name}, nil
	case o.RemoveParticipant != nil:
		return bill.RemoveParticipant{ID: o.RemoveParticipant.ID}, nil
	case o.AddItem != nil:
		return bill.AddItem{Name: o.AddItem.Name}, nil
	case o.RenameItem != nil:
		return bill.RenameItem{ID: o.RenameItem.ID, Name: o.RenameItem.Name}, nil
	case o.SetItemCost != nil:
		return bill.SetItemCost{ID: o.SetItemCost.ID, Cost: o.SetItemCost.Cost}, nil
	case o.RemoveItem != nil:
		return bill.RemoveItem{ID: o.RemoveItem.ID}, nil
	case o.ToggleParticipant != nil:
		return bill.ToggleParticipant{ItemID: o.ToggleParticipant.ItemID, ParticipantID: o.ToggleParticipant.ParticipantID}, nil
	case o.SetTax != nil:
		return bill.SetTax{Amount: o.SetTax.Amount}, nil
	case o.SetTip != nil:
		return bill.SetTip{Amount: o.SetTip.Amount}, nil
	case o.SetTaxMode != nil:
		mode, err := models.ParseSplitMode(o.SetTaxMode.Mode)
		if err != nil {
			return nil, err
		}
		return bill.SetTaxMode{Mode: mode}, nil
	case o.SetTipMode != nil:
		mode, err := models.ParseSplitMode(o.SetTipMode.Mode)
		if err != nil {
			return nil, err
		}
		return bill.SetTipMode{Mode: mode}, nil
	default:
		return bill.ClearAll{}, nil
	}
}

// parseMode reads an optional mode; empty means proportional.
func parseMode(s string) (models.SplitMode, error) {
	if s == "" {
		return models.SplitProportional, nil
	}
	return models.ParseSplitMode(s)
}

// fromCalculateRequest builds an unsaved bill from a Calculate request.
func fromCalculateRequest(req *api.CalculateRequest) (models.Bill, error) {
	b := models.NewBill("", "")

	seen := make(map[int64]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p == nil {
			continue
		}
		if seen[p.ID] {
			return models.Bill{}, fmt.Errorf("duplicate participant id %d", p.ID)
		}
		seen[p.ID] = true
		b.Participants = append(b.Participants, models.Participant{ID: p.ID, Name: p.Name})
	}

	for _, it := range req.Items {
		if it == nil {
			continue
		}
		if it.Cost.IsNegative() {
			return models.Bill{}, fmt.Errorf("item %q has negative cost %s", it.Name, it.Cost)
		}
		item := models.Item{ID: it.ID, Name: it.Name, Cost: it.Cost}
		for _, id := range it.ParticipantIDs {
			if !item.HasParticipant(id) {
				item.ToggleParticipant(id)
			}
		}
		b.Items = append(b.Items, item)
	}

	if req.Tax.IsNegative() || req.Tip.IsNegative() {
		return models.Bill{}, fmt.Errorf("tax and tip must not be negative")
	}
	b.Tax, b.Tip = req.Tax, req.Tip

	var err error
	if b.TaxMode, err = parseMode(req.TaxMode); err != nil {
		return models.Bill{}, err
	}
	if b.TipMode, err = parseMode(req.TipMode); err != nil {
		return models.Bill{}, err
	}
	return *b, nil
}

func toAPIBill(b *models.Bill) *api.Bill {
	out := &api.Bill{
		ID:            b.ID,
		Title:         b.Title,
		Participants:  make([]*api.Participant, len(b.Participants)),
		Items:         make([]*api.Item, len(b.Items)),
		Tax:           b.Tax,
		Tip:           b.Tip,
		TaxMode:       b.TaxMode.String(),
		TipMode:       b.TipMode.String(),
		HasPassphrase: b.PassphraseHash != "",
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for i, p := range b.Participants {
		out.Participants[i] = &api.Participant{ID: p.ID, Name: p.Name}
	}
	for i, item := range b.Items {
		ids := append([]int64{}, item.ParticipantIDs...)
		out.Items[i] = &api.Item{ID: item.ID, Name: item.Name, Cost: item.Cost, ParticipantIDs: ids}
	}
	return out
}

// toAPISplits lists the allocation in participant order.
func toAPISplits(participants []models.Participant, alloc calculator.Allocation) []*api.PersonSplit {
	splits := make([]*api.PersonSplit, 0, len(participants))
	for _, p := range participants {
		split, ok := alloc[p.ID]
		if !ok {
			continue
		}
		items := make([]*api.PersonItem, len(split.Items))
		for i, item := range split.Items {
			items[i] = &api.PersonItem{ItemID: item.ItemID, Name: item.Name, Amount: item.Amount}
		}
		splits = append(splits, &api.PersonSplit{
			ParticipantID: p.ID,
			Name:          p.Name,
			Subtotal:      split.Subtotal,
			Tax:           split.Tax,
			Tip:           split.Tip,
			Total:         split.Total,
			Items:         items,
		})
	}
	return splits
}

func toAPISummary(s calculator.Summary) *api.Summary {
	return &api.Summary{
		Subtotal:   s.Subtotal,
		Tax:        s.Tax,
		Tip:        s.Tip,
		Total:      s.Total,
		Assigned:   s.Assigned,
		Unassigned: s.Unassigned,
	}
}

// view recomputes the split of b.
func view(b *models.Bill) api.BillView {
	alloc := calculator.ForBill(*b)
	return api.BillView{
		Bill:    toAPIBill(b),
		Splits:  toAPISplits(b.Participants, alloc),
		Summary: toAPISummary(calculator.Summarize(*b, alloc)),
	}
}
