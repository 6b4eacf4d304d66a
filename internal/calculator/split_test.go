package calculator

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/models"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

var epsilon = decimal.New(1, -12)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func approx(a, b decimal.Decimal) bool { return a.Sub(b).Abs().LessThan(epsilon) }

func people(ids ...int64) []models.Participant {
	ps := make([]models.Participant, len(ids))
	for i, id := range ids {
		ps[i] = models.Participant{ID: id, Name: map[int64]string{alice: "Alice", bob: "Bob", carol: "Carol"}[id]}
	}
	return ps
}

func item(id int64, cost string, ids ...int64) models.Item {
	return models.Item{ID: id, Name: "Item", Cost: d(cost), ParticipantIDs: ids}
}

func checkSplit(t *testing.T, splits Allocation, id int64, subtotal, tax, tip, total string) {
	t.Helper()
	split, ok := splits[id]
	if !ok {
		t.Fatalf("missing split for participant %d", id)
	}
	if !approx(split.Subtotal, d(subtotal)) {
		t.Errorf("participant %d subtotal = %v, want %s", id, split.Subtotal, subtotal)
	}
	if !approx(split.Tax, d(tax)) {
		t.Errorf("participant %d tax = %v, want %s", id, split.Tax, tax)
	}
	if !approx(split.Tip, d(tip)) {
		t.Errorf("participant %d tip = %v, want %s", id, split.Tip, tip)
	}
	if !approx(split.Total, d(total)) {
		t.Errorf("participant %d total = %v, want %s", id, split.Total, total)
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		participants []models.Participant
		tax, tip     string
		taxMode      models.SplitMode
		tipMode      models.SplitMode
		validateFunc func(t *testing.T, splits Allocation)
	}{
		{
			name:         "proportional tax and tip",
			items:        []models.Item{item(1, "30", alice), item(2, "10", bob)},
			participants: people(alice, bob),
			tax:          "4",
			tip:          "8",
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				// Alice: 30 + 4×3/4 + 8×3/4 = 39
				// Bob: 10 + 4×1/4 + 8×1/4 = 13
				checkSplit(t, splits, alice, "30", "3", "6", "39")
				checkSplit(t, splits, bob, "10", "1", "2", "13")
			},
		},
		{
			name:         "even tax and tip",
			items:        []models.Item{item(1, "30", alice), item(2, "10", bob)},
			participants: people(alice, bob),
			tax:          "4",
			tip:          "8",
			taxMode:      models.SplitEven,
			tipMode:      models.SplitEven,
			validateFunc: func(t *testing.T, splits Allocation) {
				checkSplit(t, splits, alice, "30", "2", "4", "36")
				checkSplit(t, splits, bob, "10", "2", "4", "16")
			},
		},
		{
			name:         "mixed modes",
			items:        []models.Item{item(1, "30", alice), item(2, "10", bob)},
			participants: people(alice, bob),
			tax:          "4",
			tip:          "8",
			taxMode:      models.SplitEven,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				checkSplit(t, splits, alice, "30", "2", "6", "38")
				checkSplit(t, splits, bob, "10", "2", "2", "14")
			},
		},
		{
			name:         "shared item with tax and tip",
			items:        []models.Item{item(1, "20", alice, bob), item(2, "10", alice)},
			participants: people(alice, bob),
			tax:          "2.475", // 8.25% of 30
			tip:          "6",     // 20% of 30
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				// Alice: subtotal 20, proportion 2/3
				// Bob: subtotal 10, proportion 1/3
				checkSplit(t, splits, alice, "20", "1.65", "4", "25.65")
				checkSplit(t, splits, bob, "10", "0.825", "2", "12.825")
				sum := splits[alice].Total.Add(splits[bob].Total)
				if !approx(sum, d("38.475")) {
					t.Errorf("sum of totals = %v, want 38.475", sum)
				}
			},
		},
		{
			name:         "three way split keeps full precision",
			items:        []models.Item{item(1, "10", alice, bob, carol)},
			participants: people(alice, bob, carol),
			tax:          "1",
			tip:          "0",
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				for _, id := range []int64{alice, bob, carol} {
					checkSplit(t, splits, id, "3.3333333333333", "0.3333333333333", "0", "3.6666666666666")
					if splits[id].Subtotal.Exponent() > -20 {
						t.Errorf("participant %d subtotal %v was rounded", id, splits[id].Subtotal)
					}
				}
			},
		},
		{
			name:         "no items - everyone owes zero",
			items:        []models.Item{},
			participants: people(alice, bob),
			tax:          "5",
			tip:          "10",
			taxMode:      models.SplitEven,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				checkSplit(t, splits, alice, "0", "0", "0", "0")
				checkSplit(t, splits, bob, "0", "0", "0", "0")
			},
		},
		{
			name:         "zero cost items - everyone owes zero even in even mode",
			items:        []models.Item{item(1, "0", alice), item(2, "0", bob)},
			participants: people(alice, bob),
			tax:          "3",
			tip:          "3",
			taxMode:      models.SplitEven,
			tipMode:      models.SplitEven,
			validateFunc: func(t *testing.T, splits Allocation) {
				checkSplit(t, splits, alice, "0", "0", "0", "0")
				checkSplit(t, splits, bob, "0", "0", "0", "0")
			},
		},
		{
			name:         "unassigned item is charged to nobody",
			items:        []models.Item{item(1, "20", alice), item(2, "20")},
			participants: people(alice, bob),
			tax:          "4",
			tip:          "0",
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				// The floating item still counts in the subtotal (40), so Alice
				// carries half of the tax.
				checkSplit(t, splits, alice, "20", "2", "0", "22")
				checkSplit(t, splits, bob, "0", "0", "0", "0")
			},
		},
		{
			name:         "removed participant is ignored",
			items:        []models.Item{item(1, "30", alice, bob)},
			participants: people(alice),
			tax:          "0",
			tip:          "0",
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				if len(splits) != 1 {
					t.Errorf("expected 1 split, got %d", len(splits))
				}
				if _, ok := splits[bob]; ok {
					t.Error("removed participant should not appear in the result")
				}
				// The divisor is still the item's participant count.
				checkSplit(t, splits, alice, "15", "0", "0", "15")
			},
		},
		{
			name:         "no participants",
			items:        []models.Item{item(1, "30", alice)},
			participants: nil,
			tax:          "3",
			tip:          "3",
			taxMode:      models.SplitEven,
			tipMode:      models.SplitEven,
			validateFunc: func(t *testing.T, splits Allocation) {
				if len(splits) != 0 {
					t.Errorf("expected empty result, got %d splits", len(splits))
				}
			},
		},
		{
			name:         "itemized breakdown",
			items:        []models.Item{{ID: 1, Name: "Pizza", Cost: d("20"), ParticipantIDs: []int64{alice, bob}}, {ID: 2, Name: "Salad", Cost: d("10"), ParticipantIDs: []int64{alice}}},
			participants: people(alice, bob),
			tax:          "0",
			tip:          "0",
			taxMode:      models.SplitProportional,
			tipMode:      models.SplitProportional,
			validateFunc: func(t *testing.T, splits Allocation) {
				a := splits[alice].Items
				if len(a) != 2 || a[0].Name != "Pizza" || a[1].Name != "Salad" {
					t.Fatalf("Alice items = %+v, want Pizza then Salad", a)
				}
				if !a[0].Amount.Equal(d("10")) || !a[1].Amount.Equal(d("10")) {
					t.Errorf("Alice item amounts = %v, %v, want 10, 10", a[0].Amount, a[1].Amount)
				}
				b := splits[bob].Items
				if len(b) != 1 || b[0].ItemID != 1 {
					t.Errorf("Bob items = %+v, want only Pizza", b)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := Allocate(tt.items, tt.participants, d(tt.tax), d(tt.tip), tt.taxMode, tt.tipMode)
			if len(splits) != len(tt.participants) {
				t.Errorf("Allocate() returned %d splits, want %d", len(splits), len(tt.participants))
			}
			tt.validateFunc(t, splits)
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	items := []models.Item{item(1, "17.35", alice, bob, carol), item(2, "4.10", bob), item(3, "9.99")}
	ps := people(alice, bob, carol)

	first := Allocate(items, ps, d("2.22"), d("5"), models.SplitProportional, models.SplitEven)
	second := Allocate(items, ps, d("2.22"), d("5"), models.SplitProportional, models.SplitEven)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Allocate() is not deterministic:\n%v\n%v", first, second)
	}
}

func TestAllocate_Conservation(t *testing.T) {
	tests := []struct {
		name  string
		items []models.Item
	}{
		{"single owner", []models.Item{item(1, "12.34", alice)}},
		{"thirds", []models.Item{item(1, "10", alice, bob, carol), item(2, "0.01", bob)}},
		{"uneven", []models.Item{item(1, "99.99", alice, carol), item(2, "3.33", bob, carol), item(3, "7", alice)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, tip := d("3.21"), d("7.77")
			splits := Allocate(tt.items, people(alice, bob, carol), tax, tip, models.SplitProportional, models.SplitProportional)

			sum := decimal.Zero
			for _, split := range splits {
				sum = sum.Add(split.Total)
			}
			want := TotalAfterExtras(tt.items, tax, tip)
			if !approx(sum, want) {
				t.Errorf("sum of totals = %v, want %v", sum, want)
			}
		})
	}
}

func TestAllocate_DoesNotModifyInput(t *testing.T) {
	items := []models.Item{item(1, "10", alice, bob)}
	before := items[0].Clone()

	Allocate(items, people(alice, bob), d("1"), d("1"), models.SplitEven, models.SplitEven)

	if !reflect.DeepEqual(items[0], before) {
		t.Errorf("Allocate() modified its input: %+v", items[0])
	}
}
