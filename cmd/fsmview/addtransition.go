package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-fsmview/fsm"
)

func addTransition(args []string) error {
	fs := flag.NewFlagSet("addtransition", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview addtransition <from> <event> <to> [options]

Add a transition to the machine. Re-adding a (from, event) pair replaces
its target.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  fsmview addtransition draft submit review
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 3 {
		fs.Usage()
		return fmt.Errorf("from, event, and to required")
	}

	c, err := resolveClient(*baseURL, *configPath)
	if err != nil {
		return err
	}

	t := fsm.Transition{
		FromState: fs.Arg(0),
		Event:     fs.Arg(1),
		ToState:   fs.Arg(2),
	}
	if err := c.AddTransition(context.Background(), t); err != nil {
		return err
	}

	fmt.Printf("✓ Transition added: %s -[%s]-> %s\n", t.FromState, t.Event, t.ToState)
	return nil
}
