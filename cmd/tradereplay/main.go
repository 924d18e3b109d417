package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
)

func newCommander(fs *flag.FlagSet, name string) *subcommands.Commander {
	commander := subcommands.NewCommander(fs, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&replayCmd{}, "replay")
	commander.Register(&runCmd{}, "daemon")
	return commander
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]))
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
