// Package service implements the BillService Connect handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitt/internal/auth"
	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/calculator"
	"github.com/mmynk/splitt/internal/metrics"
	"github.com/mmynk/splitt/internal/middleware"
	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/receipt"
	"github.com/mmynk/splitt/internal/storage"
	"github.com/mmynk/splitt/pkg/api"
)

// maxReceiptSize bounds uploaded receipt files.
const maxReceiptSize = 10 << 20

var _ api.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService.
type BillService struct {
	store   storage.Store
	tokens  *auth.JWTManager
	parser  receipt.Parser // nil when receipt import is not configured
	metrics *metrics.Metrics
	locks   *billLocks
}

// Option configures optional BillService dependencies.
type Option func(*BillService)

// WithReceiptParser enables ImportReceipt.
func WithReceiptParser(p receipt.Parser) Option {
	return func(s *BillService) { s.parser = p }
}

// WithMetrics records applied operations and receipt imports in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *BillService) { s.metrics = m }
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, tokens *auth.JWTManager, opts ...Option) *BillService {
	s := &BillService{
		store:  store,
		tokens: tokens,
		locks:  newBillLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize checks that the request's edit token was issued for billID.
func authorize(ctx context.Context, billID string) error {
	err := auth.Authorize(middleware.GetClaims(ctx), billID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodePermissionDenied, err)
	}
}

func requireBillID(billID string) error {
	if billID == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("bill_id is required"))
	}
	return nil
}

// getBill loads a bill, mapping storage errors to Connect codes.
func (s *BillService) getBill(ctx context.Context, billID string) (*models.Bill, error) {
	b, err := s.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("GetBill failed", "bill_id", billID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return b, nil
}

// update applies ops to the stored bill under the bill's write lock and saves it.
func (s *BillService) update(ctx context.Context, billID string, ops ...bill.Op) (*models.Bill, error) {
	unlock := s.locks.lock(billID)
	defer unlock()

	current, err := s.getBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	next := bill.Apply(*current, ops...)
	if err := s.store.UpdateBill(ctx, &next); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("UpdateBill failed", "bill_id", billID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	for _, op := range ops {
		s.metrics.ObserveOperation(op.Kind())
	}
	return &next, nil
}

// Calculate splits an unsaved bill.
func (s *BillService) Calculate(ctx context.Context, req *connect.Request[api.CalculateRequest]) (*connect.Response[api.CalculateResponse], error) {
	b, err := fromCalculateRequest(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	alloc := calculator.ForBill(b)
	slog.Debug("Calculated split",
		"participants", len(b.Participants),
		"items", len(b.Items),
		"tax_mode", b.TaxMode,
		"tip_mode", b.TipMode,
	)

	return connect.NewResponse(&api.CalculateResponse{
		Splits:  toAPISplits(b.Participants, alloc),
		Summary: toAPISummary(calculator.Summarize(b, alloc)),
	}), nil
}

// CreateBill creates an empty bill and returns an edit token for it.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	b := models.NewBill("", req.Msg.Title)
	if req.Msg.Passphrase != "" {
		hash, err := auth.HashPassphrase(req.Msg.Passphrase)
		if errors.Is(err, auth.ErrWeakPassphrase) {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		if err != nil {
			slog.Error("CreateBill passphrase hashing failed", "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		b.PassphraseHash = hash
	}

	// Save to storage (generates ID, title and CreatedAt)
	if err := s.store.CreateBill(ctx, b); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.tokens.Generate(b.ID)
	if err != nil {
		slog.Error("CreateBill token failed", "bill_id", b.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.metrics.ObserveBillCreated()
	slog.Info("Bill created", "bill_id", b.ID, "title", b.Title, "locked", b.PassphraseHash != "")

	return connect.NewResponse(&api.CreateBillResponse{
		BillView: view(b),
		Token:    token,
	}), nil
}

// GetBill returns a bill and its current split. Reading is public.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	if err := requireBillID(req.Msg.BillID); err != nil {
		return nil, err
	}
	b, err := s.getBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetBillResponse{BillView: view(b)}), nil
}

// ListBills returns a summary of every bill, most recently updated first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		slog.Error("ListBills failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	summaries := make([]*api.BillSummary, len(bills))
	for i, b := range bills {
		summaries[i] = &api.BillSummary{
			ID:           b.ID,
			Title:        b.Title,
			Participants: len(b.Participants),
			Items:        len(b.Items),
			Total:        calculator.TotalAfterExtras(b.Items, b.Tax, b.Tip),
			UpdatedAt:    b.UpdatedAt,
		}
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: summaries}), nil
}

// Mutate applies a batch of operations to a bill.
func (s *BillService) Mutate(ctx context.Context, req *connect.Request[api.MutateRequest]) (*connect.Response[api.MutateResponse], error) {
	if err := requireBillID(req.Msg.BillID); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.Msg.BillID); err != nil {
		return nil, err
	}

	ops, err := toOps(req.Msg.Ops)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	b, err := s.update(ctx, req.Msg.BillID, ops...)
	if err != nil {
		return nil, err
	}

	slog.Debug("Bill mutated", "bill_id", b.ID, "ops", len(ops))
	return connect.NewResponse(&api.MutateResponse{BillView: view(b)}), nil
}

// ImportReceipt replaces the bill's items with the lines of a receipt.
// When the receipt cannot be read the bill is left unchanged.
func (s *BillService) ImportReceipt(ctx context.Context, req *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error) {
	if err := requireBillID(req.Msg.BillID); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.Msg.BillID); err != nil {
		return nil, err
	}
	if s.parser == nil {
		s.metrics.ObserveReceipt(metrics.ReceiptDisabled)
		return nil, connect.NewError(connect.CodeUnimplemented, receipt.ErrNotConfigured)
	}
	if len(req.Msg.File) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: empty file", receipt.ErrMalformedReceipt))
	}
	if len(req.Msg.File) > maxReceiptSize {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("receipt larger than %d bytes", maxReceiptSize))
	}

	// Make sure the bill exists before calling out to the parser.
	if _, err := s.getBill(ctx, req.Msg.BillID); err != nil {
		return nil, err
	}

	r, err := s.parser.Parse(ctx, req.Msg.File, req.Msg.MimeType)
	switch {
	case errors.Is(err, receipt.ErrMalformedReceipt):
		s.metrics.ObserveReceipt(metrics.ReceiptMalformed)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	case err != nil:
		s.metrics.ObserveReceipt(metrics.ReceiptUnavailable)
		slog.Warn("Receipt parsing failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}

	b, err := s.update(ctx, req.Msg.BillID, r.Op())
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveReceipt(metrics.ReceiptOK)
	slog.Info("Receipt imported", "bill_id", b.ID, "lines", len(r.Lines))

	return connect.NewResponse(&api.ImportReceiptResponse{
		BillView: view(b),
		Imported: len(r.Lines),
	}), nil
}

// Unlock exchanges a bill's passphrase for an edit token.
func (s *BillService) Unlock(ctx context.Context, req *connect.Request[api.UnlockRequest]) (*connect.Response[api.UnlockResponse], error) {
	if err := requireBillID(req.Msg.BillID); err != nil {
		return nil, err
	}
	b, err := s.getBill(ctx, req.Msg.BillID)
	if err != nil {
		return nil, err
	}

	switch err := auth.CheckPassphrase(b.PassphraseHash, req.Msg.Passphrase); {
	case errors.Is(err, auth.ErrNoPassphrase):
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	case err != nil:
		slog.Warn("Unlock rejected", "bill_id", b.ID)
		return nil, connect.NewError(connect.CodePermissionDenied, err)
	}

	token, err := s.tokens.Generate(b.ID)
	if err != nil {
		slog.Error("Unlock token failed", "bill_id", b.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&api.UnlockResponse{Token: token}), nil
}

// DeleteBill removes a bill.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	if err := requireBillID(req.Msg.BillID); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.Msg.BillID); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(req.Msg.BillID)
	defer unlock()

	err := s.store.DeleteBill(ctx, req.Msg.BillID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("DeleteBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Bill deleted", "bill_id", req.Msg.BillID)
	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}
