package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/amount"
	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/calculator"
	"github.com/mmynk/splitt/internal/storage/file"
)

type showCmd struct {
	env   *Env
	plain bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the bill and how it splits" }
func (*showCmd) Usage() string {
	return `splitt show [-plain]

  Displays the items, what each person owes and the bill totals.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "print raw Markdown")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, b, _, err := c.env.load(ctx)
	if err != nil {
		c.env.errorf("loading bill: %v", err)
		return subcommands.ExitFailure
	}
	return c.env.print(*b, c.plain || c.env.Plain)
}

type listCmd struct{ env *Env }

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the bills in the bill directory" }
func (*listCmd) Usage() string {
	return `splitt list

  Lists every bill, most recently changed first. Select one with -bill.
`
}
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := file.New(c.env.Dir)
	if err != nil {
		c.env.errorf("opening bills: %v", err)
		return subcommands.ExitFailure
	}
	bills, err := store.ListBills(ctx)
	if err != nil {
		c.env.errorf("listing bills: %v", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BILL\tTITLE\tPEOPLE\tTOTAL\tUPDATED")
	for _, b := range bills {
		total := calculator.TotalAfterExtras(b.Items, b.Tax, b.Tip)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			b.ID, b.Title, len(b.Participants),
			amount.Format(total, c.env.currency()),
			time.Unix(b.UpdatedAt, 0).Format(time.DateTime),
		)
	}
	if err := w.Flush(); err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type clearCmd struct{ env *Env }

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every person and item and reset tax and tip" }
func (*clearCmd) Usage() string {
	return `splitt clear
`
}
func (*clearCmd) SetFlags(*flag.FlagSet) {}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.mutate(ctx, bill.ClearAll{})
}
