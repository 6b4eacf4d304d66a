package render

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dinner() models.Bill {
	return bill.Apply(*models.NewBill("b", "Friday | Dinner"),
		bill.AddParticipant{Name: "Alice"},
		bill.AddParticipant{Name: "Bob"},
		bill.AddItem{Name: "Pizza"},
		bill.SetItemCost{ID: 1, Cost: d("20")},
		bill.ToggleParticipant{ItemID: 1, ParticipantID: 1},
		bill.ToggleParticipant{ItemID: 1, ParticipantID: 2},
		bill.AddItem{Name: "Salad"},
		bill.SetItemCost{ID: 2, Cost: d("10")},
		bill.ToggleParticipant{ItemID: 2, ParticipantID: 1},
		bill.SetTax{Amount: d("3")},
		bill.SetTip{Amount: d("6")},
		bill.SetTipMode{Mode: models.SplitEven},
	)
}

// tables parses markdown and returns the number of tables and their row counts.
func tables(t *testing.T, markdown string) []int {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader([]byte(markdown)))

	var rows []int
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if table, ok := n.(*east.Table); ok && entering {
			count := 0
			for c := table.FirstChild(); c != nil; c = c.NextSibling() {
				if _, ok := c.(*east.TableRow); ok {
					count++
				}
			}
			rows = append(rows, count)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("failed to walk markdown: %v", err)
	}
	return rows
}

func TestReport(t *testing.T) {
	r := NewReport(dinner(), "USD")

	if len(r.People) != 2 {
		t.Fatalf("expected 2 people, got %d", len(r.People))
	}
	alice, bob := r.People[0], r.People[1]
	if alice.Subtotal != "$20.00" || alice.Tax != "$2.00" || alice.Tip != "$3.00" || alice.Total != "$25.00" {
		t.Errorf("Alice = %+v", alice)
	}
	if bob.Total != "$14.00" {
		t.Errorf("Bob total = %s, want $14.00", bob.Total)
	}
	if r.Summary.Total != "$39.00" || r.Summary.Unassigned != "" {
		t.Errorf("summary = %+v", r.Summary)
	}
	if r.Items[0].SharedBy != "Alice, Bob" || r.Items[1].SharedBy != "Alice" {
		t.Errorf("items = %+v", r.Items)
	}
}

func TestReport_Unassigned(t *testing.T) {
	b := bill.Apply(dinner(), bill.AddItem{Name: "Wine"}, bill.SetItemCost{ID: 3, Cost: d("12.5")})
	r := NewReport(b, "USD")

	if r.Summary.Unassigned != "$12.50" {
		t.Errorf("Unassigned = %q, want $12.50", r.Summary.Unassigned)
	}
	if r.Items[2].SharedBy != "_nobody_" {
		t.Errorf("SharedBy = %q, want _nobody_", r.Items[2].SharedBy)
	}
	if !strings.Contains(r.Markdown(), "not assigned to anyone") {
		t.Error("markdown should warn about unassigned items")
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		bill     models.Bill
		wantRows []int
	}{
		{
			name:     "full bill",
			bill:     dinner(),
			wantRows: []int{2, 2, 4},
		},
		{
			name:     "empty bill only has the summary",
			bill:     *models.NewBill("b", ""),
			wantRows: []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables(t, NewReport(tt.bill, "USD").Markdown())
			if len(got) != len(tt.wantRows) {
				t.Fatalf("tables = %v, want %v", got, tt.wantRows)
			}
			for i := range got {
				if got[i] != tt.wantRows[i] {
					t.Errorf("table %d has %d rows, want %d", i, got[i], tt.wantRows[i])
				}
			}
		})
	}
}

func TestMarkdown_EscapesNames(t *testing.T) {
	md := NewReport(dinner(), "USD").Markdown()
	if !strings.Contains(md, `# Friday \| Dinner`) && !strings.Contains(md, "# Friday | Dinner") {
		t.Errorf("unexpected title in:\n%s", md)
	}

	b := bill.Apply(dinner(), bill.RenameParticipant{ID: 1, Name: "A|ice"})
	if rows := tables(t, NewReport(b, "USD").Markdown()); len(rows) != 3 || rows[1] != 2 {
		t.Errorf("pipe in a name broke the tables: %v", rows)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(NewReport(dinner(), "EUR").Markdown(), 100)
	if err != nil {
		t.Fatalf("Terminal() failed: %v", err)
	}
	for _, want := range []string{"Alice", "Bob", "Pizza"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report is missing %q", want)
		}
	}
}
