// Package cli implements the splitt command line: one subcommand per bill
// operation, working on bills stored as JSON files in a local directory.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/bill"
	"github.com/mmynk/splitt/internal/config"
	"github.com/mmynk/splitt/internal/models"
	"github.com/mmynk/splitt/internal/render"
	"github.com/mmynk/splitt/internal/storage"
	"github.com/mmynk/splitt/internal/storage/file"
)

// Env is shared by every command: where bills live, which bill to work on and
// how to print it.
type Env struct {
	Dir      string // bill directory
	Bill     string // bill id, also the file name
	Currency string // overrides Config.Currency when set
	Plain    bool   // print raw Markdown instead of styled output
	Width    int    // terminal width for styled output
	Config   *config.Config

	Out io.Writer
	Err io.Writer
}

// Register adds every command to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&addPersonCmd{env: env}, "people")
	c.Register(&renamePersonCmd{env: env}, "people")
	c.Register(&removePersonCmd{env: env}, "people")

	c.Register(&addItemCmd{env: env}, "items")
	c.Register(&renameItemCmd{env: env}, "items")
	c.Register(&setCostCmd{env: env}, "items")
	c.Register(&removeItemCmd{env: env}, "items")
	c.Register(&assignCmd{env: env}, "items")
	c.Register(&importCmd{env: env}, "items")

	c.Register(&taxCmd{env: env}, "extras")
	c.Register(&tipCmd{env: env}, "extras")
	c.Register(&modeCmd{env: env}, "extras")

	c.Register(&showCmd{env: env}, "bills")
	c.Register(&listCmd{env: env}, "bills")
	c.Register(&clearCmd{env: env}, "bills")
}

func (e *Env) currency() string {
	if e.Currency != "" {
		return e.Currency
	}
	if e.Config != nil {
		return e.Config.Currency
	}
	return ""
}

func (e *Env) errorf(format string, args ...any) {
	fmt.Fprintf(e.Err, "Error "+format+"\n", args...)
}

// load reads the current bill. A bill that does not exist yet is returned
// empty with exists set to false.
func (e *Env) load(ctx context.Context) (store *file.Store, b *models.Bill, exists bool, err error) {
	store, err = file.New(e.Dir)
	if err != nil {
		return nil, nil, false, err
	}
	b, err = store.GetBill(ctx, e.Bill)
	if errors.Is(err, storage.ErrNotFound) {
		return store, models.NewBill(e.Bill, ""), false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	return store, b, true, nil
}

// mutate loads the bill, applies ops, saves it and prints the new state.
func (e *Env) mutate(ctx context.Context, ops ...bill.Op) subcommands.ExitStatus {
	return e.mutateWith(ctx, func(models.Bill) ([]bill.Op, error) { return ops, nil })
}

// mutateWith is mutate for operations that depend on the current bill.
func (e *Env) mutateWith(ctx context.Context, build func(models.Bill) ([]bill.Op, error)) subcommands.ExitStatus {
	store, current, exists, err := e.load(ctx)
	if err != nil {
		e.errorf("loading bill: %v", err)
		return subcommands.ExitFailure
	}

	ops, err := build(*current)
	if err != nil {
		e.errorf("%v", err)
		return subcommands.ExitFailure
	}

	next := bill.Apply(*current, ops...)
	if exists {
		err = store.UpdateBill(ctx, &next)
	} else {
		err = store.CreateBill(ctx, &next)
	}
	if err != nil {
		e.errorf("saving bill: %v", err)
		return subcommands.ExitFailure
	}

	return e.print(next, e.Plain)
}

// print writes the bill report.
func (e *Env) print(b models.Bill, plain bool) subcommands.ExitStatus {
	md := render.NewReport(b, e.currency()).Markdown()
	if plain {
		fmt.Fprint(e.Out, md)
		return subcommands.ExitSuccess
	}
	out, err := render.Terminal(md, e.Width)
	if err != nil {
		e.errorf("rendering bill: %v", err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(e.Out, out)
	return subcommands.ExitSuccess
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Names used when add-person or add-item is given none.
const (
	defaultPersonName = "New Person"
	defaultItemName   = "New Item"
)

// nameArg joins the remaining arguments, so names need no quoting.
// Without arguments the name is fallback.
func nameArg(f []string, fallback string) string {
	name := strings.TrimSpace(strings.Join(f, " "))
	if name == "" {
		return fallback
	}
	return name
}
