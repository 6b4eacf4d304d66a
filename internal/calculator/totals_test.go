package calculator

import (
	"testing"

	"github.com/mmynk/splitt/internal/models"
)

func TestDerivedTotals(t *testing.T) {
	items := []models.Item{item(1, "20", alice, bob), item(2, "10", alice)}

	if got := Subtotal(items); !got.Equal(d("30")) {
		t.Errorf("Subtotal() = %v, want 30", got)
	}
	if got := TotalAfterExtras(items, d("2.475"), d("6")); !got.Equal(d("38.475")) {
		t.Errorf("TotalAfterExtras() = %v, want 38.475", got)
	}
	if got := DefaultTax(d("30")); !got.Equal(d("2.475")) {
		t.Errorf("DefaultTax() = %v, want 2.475", got)
	}
	if got := TipFromPercentage(d("30"), d("20")); !got.Equal(d("6")) {
		t.Errorf("TipFromPercentage() = %v, want 6", got)
	}
	if got := Percentage(d("40"), d("7.5")); !got.Equal(d("3")) {
		t.Errorf("Percentage() = %v, want 3", got)
	}
	if got := Subtotal(nil); !got.IsZero() {
		t.Errorf("Subtotal(nil) = %v, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	b := *models.NewBill("bill", "Dinner")
	b.Participants = people(alice)
	b.Items = []models.Item{
		item(1, "12", alice),
		item(2, "5"),        // nobody assigned
		item(3, "3", carol), // participant no longer on the bill
	}
	b.Tax = d("2")
	b.Tip = d("1")

	s := Summarize(b, ForBill(b))

	if !s.Subtotal.Equal(d("20")) {
		t.Errorf("Subtotal = %v, want 20", s.Subtotal)
	}
	if !s.Total.Equal(d("23")) {
		t.Errorf("Total = %v, want 23", s.Total)
	}
	if !s.Assigned.Equal(d("12")) {
		t.Errorf("Assigned = %v, want 12", s.Assigned)
	}
	if !s.Unassigned.Equal(d("8")) {
		t.Errorf("Unassigned = %v, want 8", s.Unassigned)
	}
}
