// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps the pragmas below in effect.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	// Generate IDs if not set
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	bill.UpdatedAt = bill.CreatedAt
	if bill.Title == "" {
		bill.Title = generateTitle(bill.Participants)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, tax, tip, tax_mode, tip_mode, last_participant_id, last_item_id,
		                    passphrase_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, bill.Tax.String(), bill.Tip.String(), modeString(bill.TaxMode), modeString(bill.TipMode),
		bill.IDs.LastParticipant, bill.IDs.LastItem, bill.PassphraseHash, bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all items and participants.
// Columns that cannot be decoded fall back to their zero state and are logged.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	var (
		bill             = &models.Bill{}
		tax, tip         string
		taxMode, tipMode string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, tax, tip, tax_mode, tip_mode, last_participant_id, last_item_id,
		        passphrase_hash, created_at, updated_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Title, &tax, &tip, &taxMode, &tipMode, &bill.IDs.LastParticipant, &bill.IDs.LastItem,
		&bill.PassphraseHash, &bill.CreatedAt, &bill.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	bill.Tax = parseAmount(billID, "tax", tax)
	bill.Tip = parseAmount(billID, "tip", tip)
	bill.TaxMode = parseMode(billID, "tax_mode", taxMode)
	bill.TipMode = parseMode(billID, "tip_mode", tipMode)

	if bill.Participants, err = s.getParticipants(ctx, billID); err != nil {
		return nil, err
	}
	if bill.Items, err = s.getItems(ctx, billID); err != nil {
		return nil, err
	}
	if err := s.attachAssignments(ctx, bill); err != nil {
		return nil, err
	}

	bill.IDs.Reconcile(bill)
	return bill, nil
}

// UpdateBill replaces a bill's fields, participants, items and assignments.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, tax = ?, tip = ?, tax_mode = ?, tip_mode = ?,
		                  last_participant_id = ?, last_item_id = ?, passphrase_hash = ?, updated_at = ?
		 WHERE id = ?`,
		bill.Title, bill.Tax.String(), bill.Tip.String(), modeString(bill.TaxMode), modeString(bill.TipMode),
		bill.IDs.LastParticipant, bill.IDs.LastItem, bill.PassphraseHash, bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, bill.ID)
	}

	if err := deleteChildren(ctx, tx, bill.ID); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBill removes a bill and everything it owns.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteChildren(ctx, tx, billID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListBills retrieves all bills, most recently updated first.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM bills ORDER BY updated_at DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]*models.Bill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func (s *SQLiteStore) getParticipants(ctx context.Context, billID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM participants WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func (s *SQLiteStore) getItems(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, cost FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var (
			item models.Item
			cost string
		)
		if err := rows.Scan(&item.ID, &item.Name, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Cost = parseAmount(billID, fmt.Sprintf("items[%d].cost", item.ID), cost)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// attachAssignments loads the item assignments of a bill into its items.
func (s *SQLiteStore) attachAssignments(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_id, participant_id FROM item_assignments WHERE bill_id = ? ORDER BY item_id, participant_id",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	byItem := make(map[int64][]int64)
	for rows.Next() {
		var itemID, participantID int64
		if err := rows.Scan(&itemID, &participantID); err != nil {
			return fmt.Errorf("failed to scan assignment: %w", err)
		}
		byItem[itemID] = append(byItem[itemID], participantID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate assignments: %w", err)
	}

	for i := range bill.Items {
		bill.Items[i].ParticipantIDs = byItem[bill.Items[i].ID]
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	// Insert participants
	for pos, p := range bill.Participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (bill_id, id, position, name) VALUES (?, ?, ?, ?)",
			bill.ID, p.ID, pos, p.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	// Insert items and their assignments
	for pos, item := range bill.Items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, position, name, cost) VALUES (?, ?, ?, ?, ?)",
			bill.ID, item.ID, pos, item.Name, item.Cost.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, participantID := range item.ParticipantIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id) VALUES (?, ?, ?)",
				bill.ID, item.ID, participantID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *sql.Tx, billID string) error {
	for _, table := range []string{"item_assignments", "items", "participants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE bill_id = ?", billID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	return nil
}

// parseAmount decodes a stored amount. Corrupt or negative values read as zero.
func parseAmount(billID, field, raw string) decimal.Decimal {
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		slog.Warn("Invalid stored amount, using zero", "bill_id", billID, "field", field, "value", raw)
		return decimal.Zero
	}
	return v
}

// parseMode decodes a stored split mode. Unknown values read as proportional.
func parseMode(billID, field, raw string) models.SplitMode {
	mode, err := models.ParseSplitMode(raw)
	if err != nil {
		slog.Warn("Invalid stored split mode, using proportional", "bill_id", billID, "field", field, "value", raw)
		return models.SplitProportional
	}
	return mode
}

// modeString returns the stored form of a split mode; unset modes are stored as proportional.
func modeString(m models.SplitMode) string {
	if m == "" {
		return string(models.SplitProportional)
	}
	return string(m)
}

// generateTitle creates an auto-generated title from participants.
func generateTitle(participants []models.Participant) string {
	var names []string
	for _, p := range participants {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
