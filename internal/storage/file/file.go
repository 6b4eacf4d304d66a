// Package file provides a storage.Store keeping each bill in its own JSON file.
//
// A bill file is a JSON object whose top level keys never change between
// versions ("participants", "items", "tax", ...). Every key is decoded on its
// own: a key that is missing or cannot be read falls back to the empty state
// for that field instead of failing the whole bill.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Stable keys of a bill file.
const (
	keyTitle          = "title"
	keyParticipants   = "participants"
	keyItems          = "items"
	keyTax            = "tax"
	keyTip            = "tip"
	keyTaxMode        = "taxMode"
	keyTipMode        = "tipMode"
	keyIDs            = "ids"
	keyPassphraseHash = "passphraseHash"
	keyCreatedAt      = "createdAt"
	keyUpdatedAt      = "updatedAt"
)

const ext = ".json"

// validID restricts bill ids to names that are safe as file names.
var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Store keeps bills as <dir>/<id>.json.
type Store struct {
	dir string
}

// New creates a Store in dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bill directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Close is a no-op; files are closed after every operation.
func (s *Store) Close() error { return nil }

// CreateBill writes a new bill file.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	path, err := s.path(bill.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("bill %s already exists", bill.ID)
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt
	return s.write(path, bill)
}

// GetBill reads a bill file.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	path, err := s.path(billID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bill: %w", err)
	}
	return Decode(billID, data), nil
}

// UpdateBill overwrites an existing bill file.
func (s *Store) UpdateBill(ctx context.Context, bill *models.Bill) error {
	path, err := s.path(bill.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, bill.ID)
	}
	bill.UpdatedAt = time.Now().Unix()
	return s.write(path, bill)
}

// DeleteBill removes a bill file.
func (s *Store) DeleteBill(ctx context.Context, billID string) error {
	path, err := s.path(billID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	} else if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}

// ListBills reads every bill in the directory, most recently updated first.
func (s *Store) ListBills(ctx context.Context) ([]*models.Bill, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	var bills []*models.Bill
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		bill, err := s.GetBill(ctx, strings.TrimSuffix(e.Name(), ext))
		if err != nil {
			slog.Warn("Skipping unreadable bill file", "file", e.Name(), "error", err)
			continue
		}
		bills = append(bills, bill)
	}
	sort.SliceStable(bills, func(i, j int) bool { return bills[i].UpdatedAt > bills[j].UpdatedAt })
	return bills, nil
}

func (s *Store) path(billID string) (string, error) {
	if !validID.MatchString(billID) {
		return "", fmt.Errorf("invalid bill id %q", billID)
	}
	return filepath.Join(s.dir, billID+ext), nil
}

// write replaces the file atomically: readers see either the old or the new bill.
func (s *Store) write(path string, bill *models.Bill) error {
	data, err := Encode(bill)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".bill-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write bill: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close bill: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}

type participantJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type itemJSON struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
	ParticipantIDs []int64         `json:"participantIds"`
}

type idsJSON struct {
	LastParticipant int64 `json:"lastParticipant"`
	LastItem        int64 `json:"lastItem"`
}

// Encode serializes a bill under the stable keys.
func Encode(bill *models.Bill) ([]byte, error) {
	participants := make([]participantJSON, len(bill.Participants))
	for i, p := range bill.Participants {
		participants[i] = participantJSON{ID: p.ID, Name: p.Name}
	}
	items := make([]itemJSON, len(bill.Items))
	for i, item := range bill.Items {
		ids := item.ParticipantIDs
		if ids == nil {
			ids = []int64{}
		}
		items[i] = itemJSON{ID: item.ID, Name: item.Name, Cost: item.Cost, ParticipantIDs: ids}
	}

	doc := map[string]any{
		keyTitle:          bill.Title,
		keyParticipants:   participants,
		keyItems:          items,
		keyTax:            bill.Tax,
		keyTip:            bill.Tip,
		keyTaxMode:        bill.TaxMode,
		keyTipMode:        bill.TipMode,
		keyIDs:            idsJSON{LastParticipant: bill.IDs.LastParticipant, LastItem: bill.IDs.LastItem},
		keyPassphraseHash: bill.PassphraseHash,
		keyCreatedAt:      bill.CreatedAt,
		keyUpdatedAt:      bill.UpdatedAt,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill: %w", err)
	}
	return data, nil
}

// Decode reads a bill from data. It never fails: when the document itself is
// not a JSON object the result is an empty bill, and each unreadable key keeps
// its zero state.
func Decode(billID string, data []byte) *models.Bill {
	bill := models.NewBill(billID, "")

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("Corrupt bill file, starting empty", "bill_id", billID, "error", err)
		return bill
	}

	field := func(key string, v any) bool {
		raw, ok := doc[key]
		if !ok {
			return false
		}
		if err := json.Unmarshal(raw, v); err != nil {
			slog.Warn("Corrupt bill entry, using default", "bill_id", billID, "key", key, "error", err)
			return false
		}
		return true
	}

	field(keyTitle, &bill.Title)
	field(keyPassphraseHash, &bill.PassphraseHash)
	field(keyCreatedAt, &bill.CreatedAt)
	field(keyUpdatedAt, &bill.UpdatedAt)

	var participants []participantJSON
	if field(keyParticipants, &participants) {
		for _, p := range participants {
			bill.Participants = append(bill.Participants, models.Participant{ID: p.ID, Name: p.Name})
		}
	}

	var items []itemJSON
	if field(keyItems, &items) {
		for _, it := range items {
			item := models.Item{ID: it.ID, Name: it.Name, Cost: nonNegative(it.Cost)}
			for _, id := range it.ParticipantIDs {
				if !item.HasParticipant(id) {
					item.ToggleParticipant(id)
				}
			}
			bill.Items = append(bill.Items, item)
		}
	}

	var tax, tip decimal.Decimal
	if field(keyTax, &tax) {
		bill.Tax = nonNegative(tax)
	}
	if field(keyTip, &tip) {
		bill.Tip = nonNegative(tip)
	}

	var mode string
	if field(keyTaxMode, &mode) {
		if m, err := models.ParseSplitMode(mode); err == nil {
			bill.TaxMode = m
		}
	}
	if field(keyTipMode, &mode) {
		if m, err := models.ParseSplitMode(mode); err == nil {
			bill.TipMode = m
		}
	}

	var ids idsJSON
	if field(keyIDs, &ids) {
		bill.IDs = models.IDs{LastParticipant: ids.LastParticipant, LastItem: ids.LastItem}
	}
	bill.IDs.Reconcile(bill)

	return bill
}

func nonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
