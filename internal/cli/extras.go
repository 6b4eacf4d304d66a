package cli

import (
	"context"
	"errors"
	"flag"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/amount"
	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/calculator"
	"github.com/mmynk/splitt/internal/models"
)

type taxCmd struct {
	env     *Env
	useRate bool
	percent string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "set the tax of the bill" }
func (*taxCmd) Usage() string {
	return `splitt tax <amount>
splitt tax -default
splitt tax -percent <rate>

  Sets the tax. -default uses the default sales tax rate (8.25%) and -percent
  any other rate, both applied to the current subtotal.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.useRate, "default", false, "use the default tax rate on the subtotal")
	f.StringVar(&c.percent, "percent", "", "tax rate in percent of the subtotal")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	given := 0
	for _, set := range []bool{c.useRate, c.percent != "", f.NArg() > 0} {
		if set {
			given++
		}
	}
	if given != 1 || f.NArg() > 1 {
		c.env.errorf("tax needs exactly one of an amount, -default or -percent")
		return subcommands.ExitUsageError
	}

	return c.env.mutateWith(ctx, func(b models.Bill) ([]bill.Op, error) {
		subtotal := calculator.Subtotal(b.Items)
		switch {
		case c.useRate:
			return []bill.Op{bill.SetTax{Amount: calculator.DefaultTax(subtotal)}}, nil
		case c.percent != "":
			return []bill.Op{bill.SetTax{Amount: calculator.Percentage(subtotal, amount.Parse(c.percent))}}, nil
		default:
			return []bill.Op{bill.SetTax{Amount: amount.Parse(f.Arg(0))}}, nil
		}
	})
}

type tipCmd struct {
	env     *Env
	percent string
}

func (*tipCmd) Name() string     { return "tip" }
func (*tipCmd) Synopsis() string { return "set the tip of the bill" }
func (*tipCmd) Usage() string {
	return `splitt tip <amount>
splitt tip -percent <rate>

  Sets the tip, either as an amount or as a percentage of the current subtotal.
`
}

func (c *tipCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.percent, "percent", "", "tip in percent of the subtotal, e.g. 18")
}

func (c *tipCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.percent != "") == (f.NArg() == 1) || f.NArg() > 1 {
		c.env.errorf("tip needs exactly one of an amount or -percent")
		return subcommands.ExitUsageError
	}

	return c.env.mutateWith(ctx, func(b models.Bill) ([]bill.Op, error) {
		if c.percent != "" {
			subtotal := calculator.Subtotal(b.Items)
			return []bill.Op{bill.SetTip{Amount: calculator.TipFromPercentage(subtotal, amount.Parse(c.percent))}}, nil
		}
		return []bill.Op{bill.SetTip{Amount: amount.Parse(f.Arg(0))}}, nil
	})
}

type modeCmd struct{ env *Env }

func (*modeCmd) Name() string     { return "mode" }
func (*modeCmd) Synopsis() string { return "choose how tax or tip is shared" }
func (*modeCmd) Usage() string {
	return `splitt mode tax|tip proportional|even

  proportional: each person pays in proportion to their subtotal (default).
  even:         every person pays the same share.
`
}
func (*modeCmd) SetFlags(*flag.FlagSet) {}

var errModeTarget = errors.New(`mode applies to "tax" or "tip"`)

func (c *modeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		c.env.errorf("mode needs a target and a mode")
		return subcommands.ExitUsageError
	}
	mode, err := models.ParseSplitMode(f.Arg(1))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}

	switch f.Arg(0) {
	case "tax":
		return c.env.mutate(ctx, bill.SetTaxMode{Mode: mode})
	case "tip":
		return c.env.mutate(ctx, bill.SetTipMode{Mode: mode})
	}
	c.env.errorf("%v", errModeTarget)
	return subcommands.ExitUsageError
}
