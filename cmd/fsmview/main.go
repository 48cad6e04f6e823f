package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if err := render(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "rules":
		if err := listRules(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := listEvents(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "history":
		if err := showHistory(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "trigger":
		if err := trigger(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "addtransition":
		if err := addTransition(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("fsmview version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fsmview - state machine diagram and rule inspection tool

Usage:
  fsmview <command> [options]

Commands:
  serve          Run the rule/FSM engine service
  render         Render the machine snapshot to an SVG diagram
  rules          List rules in display order
  events         Show events available from a state
  history        Show recent event history
  trigger        Apply an event to the machine
  addtransition  Add a transition to the machine
  help           Show this help message
  version        Show version information

Examples:
  # Run the engine locally
  fsmview serve --listen :8000

  # Build the machine and apply an event
  fsmview addtransition draft submit review
  fsmview trigger submit

  # Render the diagram
  fsmview render --output machine.svg

For command-specific help, run:
  fsmview <command> --help`)
}
