package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func trigger(args []string) error {
	fs := flag.NewFlagSet("trigger", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	from := fs.String("from", "", "Source state (default: machine's current state)")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview trigger <event> [options]

Apply an event to the machine.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Apply from the current state
  fsmview trigger submit

  # Apply from an explicit state
  fsmview trigger submit --from draft
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("event required")
	}
	event := fs.Arg(0)

	c, err := resolveClient(*baseURL, *configPath)
	if err != nil {
		return err
	}

	result, err := c.TriggerEvent(context.Background(), event, *from)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s -[%s]-> %s\n", result.FromState, result.Event, result.ToState)
	fmt.Printf("  Current state: %s\n", result.CurrentState)
	return nil
}
