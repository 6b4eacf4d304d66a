package api

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCodec(t *testing.T) {
	var c Codec

	var req MutateRequest
	err := c.Unmarshal([]byte(`{"billId": "b1", "ops": [{"setTax": {"amount": 1.5}}, {"setItemCost": {"id": 2, "cost": "3.25"}}]}`), &req)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if req.BillID != "b1" || len(req.Ops) != 2 {
		t.Fatalf("req = %+v", req)
	}
	if !req.Ops[0].SetTax.Amount.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("tax = %v, want 1.5", req.Ops[0].SetTax.Amount)
	}
	if !req.Ops[1].SetItemCost.Cost.Equal(decimal.RequireFromString("3.25")) {
		t.Errorf("cost = %v, want 3.25", req.Ops[1].SetItemCost.Cost)
	}

	if err := c.Unmarshal([]byte(`{"billId": "b1", "ops": [{"setTaxes": {}}]}`), &req); err == nil {
		t.Error("expected error for unknown operation name")
	}

	var empty ListBillsRequest
	if err := c.Unmarshal(nil, &empty); err != nil {
		t.Errorf("Unmarshal(empty) failed: %v", err)
	}

	data, err := c.Marshal(&UnlockResponse{Token: "t"})
	if err != nil || string(data) != `{"token":"t"}` {
		t.Errorf("Marshal() = %s, %v", data, err)
	}
}

func TestOperation_FieldsSet(t *testing.T) {
	tests := []struct {
		name string
		op   *Operation
		want int
	}{
		{"nil", nil, 0},
		{"empty", &Operation{}, 0},
		{"one", &Operation{ClearAll: &ClearArg{}}, 1},
		{"two", &Operation{AddItem: &NameArg{Name: "x"}, RemoveItem: &IDArg{ID: 1}}, 2},
	}
	for _, tt := range tests {
		if got := tt.op.FieldsSet(); got != tt.want {
			t.Errorf("%s: FieldsSet() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
