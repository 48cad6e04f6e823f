package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-fsmview/fsm"
)

func listEvents(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	from := fs.String("from", "", "Source state (default: machine's current state)")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview events [options]

Show the events available from a state.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Events from the current state
  fsmview events

  # Events from a specific state
  fsmview events --from review
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := resolveClient(*baseURL, *configPath)
	if err != nil {
		return err
	}

	snap, err := c.GetSnapshot(context.Background())
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	source, ok := fsm.ResolveSource(*from, snap.CurrentState)
	if !ok {
		fmt.Println("No source state: the machine has no current state and none was given")
		return nil
	}

	options := fsm.AvailableEvents(source, snap.Transitions)
	if len(options) == 0 {
		fmt.Printf("No events available from state %q\n", source)
		return nil
	}

	fmt.Printf("Events from %q:\n", source)
	for _, opt := range options {
		fmt.Printf("  %-16s -> %s\n", opt.Event, opt.Transition.ToState)
	}
	return nil
}
