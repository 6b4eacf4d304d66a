package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/splitt/internal/auth"
	"github.com/mmynk/splitt/internal/metrics"
)

type ping struct{}

// capture is a terminal handler that records the context it was called with.
func capture(got *context.Context) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*got = ctx
		return connect.NewResponse(&ping{}), nil
	}
}

func TestBillAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("bill-1")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantCode   connect.Code
		wantBillID string
	}{
		{name: "no header passes through"},
		{name: "valid token", header: "Bearer " + token, wantBillID: "bill-1"},
		{name: "not bearer", header: "Basic abc", wantCode: connect.CodeUnauthenticated},
		{name: "invalid token", header: "Bearer nope", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctx context.Context
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := BillAuth(jwtManager)(capture(&ctx))(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("error = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := GetBillID(ctx); got != tt.wantBillID {
				t.Errorf("GetBillID() = %q, want %q", got, tt.wantBillID)
			}
		})
	}
}

func TestLoggingInterceptor_RecordsDuration(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	interceptor := LoggingInterceptor(m)

	ok := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}
	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("missing"))
	}

	if _, err := interceptor(ok)(context.Background(), connect.NewRequest(&ping{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := interceptor(failing)(context.Background(), connect.NewRequest(&ping{})); connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("error = %v, want not_found", err)
	}

	if n := testutil.CollectAndCount(m.RPCDuration); n != 2 {
		t.Errorf("duration series = %d, want 2 (ok and not_found)", n)
	}
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		method     string
		wantStatus int
		wantCalled bool
	}{
		{http.MethodOptions, http.StatusNoContent, false},
		{http.MethodPost, http.StatusTeapot, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			called = false
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, "/splitt.v1.BillService/GetBill", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
				t.Errorf("Access-Control-Allow-Headers = %q, want Authorization allowed", got)
			}
		})
	}
}

func TestRequestLog_KeepsStatus(t *testing.T) {
	handler := RequestLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
