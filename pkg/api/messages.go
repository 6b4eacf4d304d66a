// Package api defines the messages of the splitt.v1.BillService Connect
// service and the handler and client constructors for it.
//
// Messages are plain Go structs sent as JSON. Amounts are decimal strings
// ("12.50"); numbers are accepted on input as well.
package api

import (
	"github.com/shopspring/decimal"
)

type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Cost           decimal.Decimal `json:"cost"`
	ParticipantIDs []int64         `json:"participantIds"`
}

// Bill is the stored state of a bill.
type Bill struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Participants  []*Participant  `json:"participants"`
	Items         []*Item         `json:"items"`
	Tax           decimal.Decimal `json:"tax"`
	Tip           decimal.Decimal `json:"tip"`
	TaxMode       string          `json:"taxMode"`
	TipMode       string          `json:"tipMode"`
	HasPassphrase bool            `json:"hasPassphrase"`
	CreatedAt     int64           `json:"createdAt"`
	UpdatedAt     int64           `json:"updatedAt"`
}

type PersonItem struct {
	ItemID int64           `json:"itemId"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// PersonSplit is what one participant owes. Amounts are unrounded.
type PersonSplit struct {
	ParticipantID int64           `json:"participantId"`
	Name          string          `json:"name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Tip           decimal.Decimal `json:"tip"`
	Total         decimal.Decimal `json:"total"`
	Items         []*PersonItem   `json:"items"`
}

type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Tip        decimal.Decimal `json:"tip"`
	Total      decimal.Decimal `json:"total"`
	Assigned   decimal.Decimal `json:"assigned"`
	Unassigned decimal.Decimal `json:"unassigned"`
}

// BillView is a bill together with its current split.
type BillView struct {
	Bill    *Bill          `json:"bill"`
	Splits  []*PersonSplit `json:"splits"` // in participant order
	Summary *Summary       `json:"summary"`
}

// CalculateRequest runs the allocation on an unsaved bill.
type CalculateRequest struct {
	Participants []*Participant  `json:"participants"`
	Items        []*Item         `json:"items"`
	Tax          decimal.Decimal `json:"tax"`
	Tip          decimal.Decimal `json:"tip"`
	TaxMode      string          `json:"taxMode"`
	TipMode      string          `json:"tipMode"`
}

type CalculateResponse struct {
	Splits  []*PersonSplit `json:"splits"`
	Summary *Summary       `json:"summary"`
}

type CreateBillRequest struct {
	Title      string `json:"title"`
	Passphrase string `json:"passphrase,omitempty"`
}

// CreateBillResponse carries the edit token for the new bill.
type CreateBillResponse struct {
	BillView
	Token string `json:"token"`
}

type GetBillRequest struct {
	BillID string `json:"billId"`
}

type GetBillResponse struct {
	BillView
}

type ListBillsRequest struct{}

type BillSummary struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Participants int             `json:"participants"`
	Items        int             `json:"items"`
	Total        decimal.Decimal `json:"total"`
	UpdatedAt    int64           `json:"updatedAt"`
}

type ListBillsResponse struct {
	Bills []*BillSummary `json:"bills"`
}

// MutateRequest applies Ops in order and saves the result. Either every
// operation is applied or none is.
type MutateRequest struct {
	BillID string       `json:"billId"`
	Ops    []*Operation `json:"ops"`
}

type MutateResponse struct {
	BillView
}

// ImportReceiptRequest replaces the bill's items, tax and tip with those read
// from a receipt image. File is base64 in JSON.
type ImportReceiptRequest struct {
	BillID   string `json:"billId"`
	File     []byte `json:"file"`
	MimeType string `json:"mimeType"`
}

type ImportReceiptResponse struct {
	BillView
	Imported int `json:"imported"`
}

type UnlockRequest struct {
	BillID     string `json:"billId"`
	Passphrase string `json:"passphrase"`
}

type UnlockResponse struct {
	Token string `json:"token"`
}

type DeleteBillRequest struct {
	BillID string `json:"billId"`
}

type DeleteBillResponse struct{}
