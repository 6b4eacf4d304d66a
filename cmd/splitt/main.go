package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/google/subcommands"

	"github.com/mmynk/splitt/internal/cli"
	"github.com/mmynk/splitt/internal/config"
	"github.com/mmynk/splitt/pkg/logging"
)

var (
	billDir    = flag.String("dir", ".splitt", "directory holding the bill files")
	billID     = flag.String("bill", "default", "bill to work on")
	currency   = flag.String("currency", "", "display currency (default from config, else USD)")
	configPath = flag.String("config", "splitt.hcl", "path to the config file")
	plain      = flag.Bool("plain", false, "print raw Markdown instead of styled output")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &cli.Env{Dir: *billDir, Bill: *billID, Out: os.Stdout, Err: os.Stderr}
	cli.Register(commander, env)

	// Answers shell completion requests and exits; a no-op otherwise.
	cli.Complete(env, path.Base(os.Args[0]))

	flag.Parse()
	logging.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	env.Dir = *billDir
	env.Bill = *billID
	env.Currency = *currency
	env.Plain = *plain
	env.Config = cfg
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		env.Width = cols
	}

	os.Exit(int(commander.Execute(context.Background())))
}
