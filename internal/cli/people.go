package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/bill"
)

type addPersonCmd struct{ env *Env }

func (*addPersonCmd) Name() string     { return "add-person" }
func (*addPersonCmd) Synopsis() string { return "add a participant to the bill" }
func (*addPersonCmd) Usage() string {
	return `splitt add-person [name]

  Adds a participant, named "New Person" unless a name is given. Participants
  get the next free id; ids are never reused.
`
}
func (*addPersonCmd) SetFlags(*flag.FlagSet) {}

func (c *addPersonCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.mutate(ctx, bill.AddParticipant{Name: nameArg(f.Args(), defaultPersonName)})
}

type renamePersonCmd struct{ env *Env }

func (*renamePersonCmd) Name() string     { return "rename-person" }
func (*renamePersonCmd) Synopsis() string { return "rename a participant" }
func (*renamePersonCmd) Usage() string {
	return `splitt rename-person <id> [name]

  Without a name the participant's name is cleared.
`
}
func (*renamePersonCmd) SetFlags(*flag.FlagSet) {}

func (c *renamePersonCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		c.env.errorf("rename-person needs an id")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	return c.env.mutate(ctx, bill.RenameParticipant{ID: id, Name: nameArg(f.Args()[1:], "")})
}

type removePersonCmd struct{ env *Env }

func (*removePersonCmd) Name() string     { return "remove-person" }
func (*removePersonCmd) Synopsis() string { return "remove a participant" }
func (*removePersonCmd) Usage() string {
	return `splitt remove-person <id>

  Removes a participant. Their share of the items they were assigned to is no
  longer charged to anyone; reassign those items to split it again.
`
}
func (*removePersonCmd) SetFlags(*flag.FlagSet) {}

func (c *removePersonCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.errorf("remove-person needs exactly one id")
		return subcommands.ExitUsageError
	}
	id, err := parseID(f.Arg(0))
	if err != nil {
		c.env.errorf("%v", err)
		return subcommands.ExitUsageError
	}
	return c.env.mutate(ctx, bill.RemoveParticipant{ID: id})
}
