// Package receipt imports the items, tax and tip of a photographed receipt.
//
// Reading the image is delegated to an external service: either an HTTP
// endpoint that answers with JSON, or a Gemini model asked for JSON. Both
// answers are decoded with the same JSONPath rules. A failed import returns an
// error and produces no bill operation, so the bill is left untouched.
package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitt/internal/bill"
)

var (
	// ErrMalformedReceipt is returned when a receipt or a service answer has the wrong shape.
	ErrMalformedReceipt = errors.New("malformed receipt")
	// ErrUnavailable is returned when the receipt service cannot be reached or fails.
	ErrUnavailable = errors.New("receipt service unavailable")
	// ErrNotConfigured is returned when no receipt provider is configured.
	ErrNotConfigured = errors.New("receipt import is not configured")
)

// Parser turns an uploaded receipt file into a Receipt.
type Parser interface {
	Parse(ctx context.Context, file []byte, mimeType string) (*Receipt, error)
}

// Receipt is the structured content of a receipt.
type Receipt struct {
	Lines []bill.Line
	Tax   decimal.Decimal
	Tip   decimal.Decimal
}

// Validate checks that no amount is negative.
func (r *Receipt) Validate() error {
	for i, line := range r.Lines {
		if line.Price.IsNegative() {
			return fmt.Errorf("%w: line %d (%q) has negative price %s", ErrMalformedReceipt, i+1, line.Name, line.Price)
		}
	}
	if r.Tax.IsNegative() {
		return fmt.Errorf("%w: negative tax %s", ErrMalformedReceipt, r.Tax)
	}
	if r.Tip.IsNegative() {
		return fmt.Errorf("%w: negative tip %s", ErrMalformedReceipt, r.Tip)
	}
	return nil
}

// Op returns the bill operation that replaces the bill's items with this receipt.
func (r *Receipt) Op() bill.ImportReceipt {
	return bill.ImportReceipt{Lines: r.Lines, Tax: r.Tax, Tip: r.Tip}
}

// Paths tells Decode where to find values in a JSON answer.
// Name and Price are evaluated against each element of Items.
type Paths struct {
	Items string
	Name  string
	Price string
	Tax   string
	Tip   string
}

// DefaultPaths matches answers shaped like
// {"items": [{"name": "Pizza", "price": 12.5}], "tax": 1.03, "tip": 2}.
var DefaultPaths = Paths{
	Items: "$.items",
	Name:  "$.name",
	Price: "$.price",
	Tax:   "$.tax",
	Tip:   "$.tip",
}

// withDefaults fills empty paths from DefaultPaths.
func (p Paths) withDefaults() Paths {
	if p.Items == "" {
		p.Items = DefaultPaths.Items
	}
	if p.Name == "" {
		p.Name = DefaultPaths.Name
	}
	if p.Price == "" {
		p.Price = DefaultPaths.Price
	}
	if p.Tax == "" {
		p.Tax = DefaultPaths.Tax
	}
	if p.Tip == "" {
		p.Tip = DefaultPaths.Tip
	}
	return p
}

// Decode extracts a Receipt from a JSON document.
// Items and every item price are required; names, tax and tip default to
// empty and zero. Amounts may be JSON numbers or strings like "$1,234.50".
func Decode(data []byte, paths Paths) (*Receipt, error) {
	paths = paths.withDefaults()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedReceipt, err)
	}

	rawItems, err := jsonpath.Get(paths.Items, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: no items at %s: %v", ErrMalformedReceipt, paths.Items, err)
	}
	list, ok := rawItems.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, expected a list", ErrMalformedReceipt, paths.Items, rawItems)
	}

	r := &Receipt{Lines: make([]bill.Line, 0, len(list)), Tax: decimal.Zero, Tip: decimal.Zero}
	for i, elem := range list {
		rawPrice, err := jsonpath.Get(paths.Price, elem)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d has no price at %s", ErrMalformedReceipt, i+1, paths.Price)
		}
		price, err := toDecimal(rawPrice)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d price: %v", ErrMalformedReceipt, i+1, err)
		}

		var name string
		if rawName, err := jsonpath.Get(paths.Name, elem); err == nil {
			name, _ = rawName.(string)
		}
		r.Lines = append(r.Lines, bill.Line{Name: strings.TrimSpace(name), Price: price})
	}

	if r.Tax, err = optionalAmount(doc, paths.Tax); err != nil {
		return nil, err
	}
	if r.Tip, err = optionalAmount(doc, paths.Tip); err != nil {
		return nil, err
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// optionalAmount reads an amount that may be missing or null.
func optionalAmount(doc any, path string) (decimal.Decimal, error) {
	raw, err := jsonpath.Get(path, doc)
	if err != nil || raw == nil {
		return decimal.Zero, nil
	}
	v, err := toDecimal(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrMalformedReceipt, path, err)
	}
	return v, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(x)
		return decimal.NewFromString(cleaned)
	case nil:
		return decimal.Zero, errors.New("missing amount")
	}
	return decimal.Zero, fmt.Errorf("unexpected amount type %T", v)
}
