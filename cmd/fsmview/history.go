package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-fsmview/fsm"
)

func showHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	limit := fs.Int("limit", fsm.HistoryDisplayLimit, "Maximum entries to show")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview history [options]

Show recent event history, newest first.

Options:
`)
		fs.PrintDefaults()
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

	entries := fsm.FormatHistory(snap.History, *limit)
	if len(entries) == 0 {
		fmt.Println("No history recorded")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("#%-4d %s -[%s]-> %s  (%s)\n",
			e.Seq, e.FromState, e.Event, e.ToState, e.When)
	}
	return nil
}
