package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-fsmview/visualization"
)

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	output := fs.String("output", "", "Output SVG file (required)")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview render [options]

Fetch the machine snapshot and render it as an SVG diagram.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Render against a local engine
  fsmview render --output machine.svg

  # Render against a remote engine
  fsmview render --base-url http://engine:8000 --output machine.svg
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	c, err := resolveClient(*baseURL, *configPath)
	if err != nil {
		return err
	}

	snap, err := c.GetSnapshot(context.Background())
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	palette := visualization.NewPalette()
	palette.EnsureColors(snap.States)
	layout := visualization.Layout(snap.States, snap.Transitions, snap.CurrentState)

	if err := visualization.SaveSVG(layout, palette, *output); err != nil {
		return fmt.Errorf("write SVG: %w", err)
	}

	fmt.Printf("✓ Diagram saved to %s\n", *output)
	fmt.Printf("  States: %d\n", len(snap.States))
	fmt.Printf("  Transitions: %d\n", len(snap.Transitions))
	if snap.CurrentState != "" {
		fmt.Printf("  Current state: %s\n", snap.CurrentState)
	}

	return nil
}
