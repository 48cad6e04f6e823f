package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/pflow-xyz/go-fsmview/server"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", "", "Listen address (default :8000)")
	journalPath := fs.String("journal", "", "SQLite journal file for applied events")
	configPath := fs.String("config", "", "YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fsmview serve [options]

Run the rule-evaluation and FSM engine service.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # In-memory engine on the default port
  fsmview serve

  # Durable event journal
  fsmview serve --listen :8000 --journal events.db
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	addr := ":8000"
	if cfg.Listen != "" {
		addr = cfg.Listen
	}
	if *listen != "" {
		addr = *listen
	}
	journalFile := cfg.Journal
	if *journalPath != "" {
		journalFile = *journalPath
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	opts := []server.Option{server.WithLogger(log)}

	if journalFile != "" {
		journal, err := server.OpenJournal(journalFile)
		if err != nil {
			return err
		}
		defer journal.Close()
		opts = append(opts, server.WithJournal(journal))
		log.Info("journal open", "path", journalFile)
	}

	srv := server.New(opts...)
	log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
