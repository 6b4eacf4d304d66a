package metrics

import (
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOperation("add_item")
	m.ObserveOperation("add_item")
	m.ObserveOperation("set_tax")
	m.ObserveReceipt(ReceiptMalformed)
	m.ObserveBillCreated()

	if got := testutil.ToFloat64(m.Operations.WithLabelValues("add_item")); got != 2 {
		t.Errorf("add_item count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ReceiptImports.WithLabelValues(ReceiptMalformed)); got != 1 {
		t.Errorf("malformed count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Bills); got != 1 {
		t.Errorf("bills = %v, want 1", got)
	}
	if n, err := testutil.GatherAndCount(reg, "splitt_bill_operations_total"); err != nil || n != 2 {
		t.Errorf("GatherAndCount() = %d, %v, want 2 series", n, err)
	}
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	// Must not panic.
	m.ObserveOperation("add_item")
	m.ObserveReceipt(ReceiptOK)
	m.ObserveBillCreated()
	m.ObserveRPC("/splitt.v1.BillService/GetBill", nil, time.Millisecond)
}

func TestMetrics_RPCCodes(t *testing.T) {
	m := New(nil)
	const procedure = "/splitt.v1.BillService/Mutate"

	m.ObserveRPC(procedure, nil, 10*time.Millisecond)
	m.ObserveRPC(procedure, connect.NewError(connect.CodePermissionDenied, errors.New("wrong bill")), time.Millisecond)
	m.ObserveRPC(procedure, errors.New("disk full"), time.Millisecond)

	if n := testutil.CollectAndCount(m.RPCDuration); n != 3 {
		t.Errorf("series = %d, want ok, permission_denied and unknown", n)
	}
}
