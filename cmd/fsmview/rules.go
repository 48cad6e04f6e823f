package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pflow-xyz/go-fsmview/rules"
)

func listRules(args []string) error {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Engine base URL")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview rules [options]

List rules in display order (priority, then id).

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

	listed, err := c.GetRules(context.Background())
	if err != nil {
		return fmt.Errorf("fetch rules: %w", err)
	}
	if len(listed) == 0 {
		fmt.Println("No rules defined")
		return nil
	}

	rules.Sort(listed)
	for _, rule := range listed {
		fmt.Printf("%4d  %-24s %s %s %v  (%s)\n",
			rule.Priority, rule.Name, rule.Field, rule.Operator, rule.Value, rule.ID)
	}
	return nil
}
