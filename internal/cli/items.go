package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/amount"
	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/receipt"
)

type addItemCmd struct {
	env  *Env
	cost string
}

func (*addItemCmd) Name() string     { return "add-item" }
func (*addItemCmd) Synopsis() string { return "add an item to the bill" }
func (*addItemCmd) Usage() string {
	return `splitt add-item [-c <cost>] [name]

  Adds an item shared by nobody, named "New Item" unless a name is given. Use
  assign to add people to it.
`
}

func (c *addItemCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cost, "c", "", "cost of the item, e.g. 12.50")
}

func (c *addItemCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := nameArg(f.Args(), defaultItemName)
	return c.env.mutateWith(ctx, func(b models.Bill) ([]bill.Op, error) {
		ops := []bill.Op{bill.AddItem{Name: name}}
		if c.cost != "" {
			// AddItem takes the next id.
			ops = append(ops, bill.SetItemCost{ID: b.IDs.LastItem + 1, Cost: amount.Parse(c.cost)})
		}
		return ops, nil
	})
}

type renameItemCmd struct{ env *Env }

func (*renameItemCmd) Name() string     { return "rename-item" }
func (*renameItemCmd) Synopsis() string { return "rename an item" }
func (*renameItemCmd) Usage() string {
	return `splitt rename-item <id> [name]

  Without a name the item's name is cleared.
`
}
func (*renameItemCmd) SetFlags(*flag.FlagSet) {}

func (c *renameItemCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		c.env.errorf("rename-item needs an id")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	return c.env.mutate(ctx, bill.RenameItem{ID: id, Name: nameArg(f.Args()[1:], "")})
}

type setCostCmd struct{ env *Env }

func (*setCostCmd) Name() string     { return "set-cost" }
func (*setCostCmd) Synopsis() string { return "set the cost of an item" }
func (*setCostCmd) Usage() string {
	return `splitt set-cost <id> <amount>

  Amounts are read leniently: "$1,234.567" is 1234.56, "abc" is 0.
`
}
func (*setCostCmd) SetFlags(*flag.FlagSet) {}

func (c *setCostCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		c.env.errorf("set-cost needs an id and an amount")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	return c.env.mutate(ctx, bill.SetItemCost{ID: id, Cost: amount.Parse(f.Arg(1))})
}

type removeItemCmd struct{ env *Env }

func (*removeItemCmd) Name() string     { return "remove-item" }
func (*removeItemCmd) Synopsis() string { return "remove an item" }
func (*removeItemCmd) Usage() string {
	return `splitt remove-item <id>
`
}
func (*removeItemCmd) SetFlags(*flag.FlagSet) {}

func (c *removeItemCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("remove-item needs exactly one id")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	return c.env.mutate(ctx, bill.RemoveItem{ID: id})
}

type assignCmd struct{ env *Env }

func (*assignCmd) Name() string     { return "assign" }
func (*assignCmd) Synopsis() string { return "toggle a participant on an item" }
func (*assignCmd) Usage() string {
	return `splitt assign <item-id> <person-id>...

  Adds each person to the item, or removes them if they already share it.
`
}
func (*assignCmd) SetFlags(*flag.FlagSet) {}

func (c *assignCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		c.env.errorf("assign needs an item id and at least one person id")
		return subcommands.ExitUsageError
	}
	itemID, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	var ops []bill.Op
	for _, arg := range f.Args()[1:] {
		id, err := parseID(arg)
		if err != nil {
			c.env.errorf("%v", err)
			return subcommands.ExitUsageError
		}
		ops = append(ops, bill.ToggleParticipant{ItemID: itemID, ParticipantID: id})
	}
	return c.env.mutate(ctx, ops...)
}

type importCmd struct{ env *Env }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the items with those of a receipt photo" }
func (*importCmd) Usage() string {
	return `splitt import <file>

  Sends the receipt to the configured receipt service and replaces every item,
  the tax and the tip with what it reads. People are kept; imported items are
  not assigned to anyone. Configure the service in the receipt block of the
  config file, or with RECEIPT_ENDPOINT or GEMINI_API_KEY.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("import needs exactly one file")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		c.env.errorf("reading receipt: %v", err)
		return subcommands.ExitFailure
	}

	var cfg receipt.Config
	if c.env.Config != nil {
		cfg = c.env.Config.ReceiptConfig()
	}
	parser, err := receipt.NewParser(ctx, cfg)
	if errors.Is(err, receipt.ErrNotConfigured) {
		c.env.errorf("%v: see splitt help import", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		c.env.errorf("creating receipt parser: %v", err)
		return subcommands.ExitFailure
	}

	return c.env.importWith(ctx, parser, data)
}

// importWith parses data with parser and replaces the bill's items. The bill is
// not touched when parsing fails.
func (e *Env) importWith(ctx context.Context, parser receipt.Parser, data []byte) subcommands.ExitStatus {
	r, err := parser.Parse(ctx, data, http.DetectContentType(data))
	if err != nil {
		e.errorf("reading receipt: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(e.Err, "Imported %d items\n", len(r.Lines))
	return e.mutate(ctx, r.Op())
}
