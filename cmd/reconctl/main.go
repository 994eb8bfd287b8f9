package main

import (
	"fmt"
	"os"
)

var version = "dev"

var commands = map[string]func([]string) error{
	"login":        runLogin,
	"logout":       runLogout,
	"workflows":    runWorkflows,
	"runs":         runRuns,
	"targets":      runTargets,
	"keys":         runKeys,
	"integrations": runIntegrations,
	"health":       runHealth,
	"metrics":      runMetrics,
}

func usage() {
	fmt.Fprintf(os.Stderr, `reconctl - ReconCraft workflow client (version %s)

Usage:
  reconctl <command> [options]

Commands:
  login         Exchange an API key for a bearer token and store it
  logout        Discard the stored bearer token
  workflows     Workflow management (list, get, delete, duplicate, export)
  runs          Run management (list, get, start, watch, logs, send-slack, send-discord)
  targets       Authorized target management (list, add, bulk, delete)
  keys          API key management (create, list, delete)
  integrations  Notification integrations (get, set slack|discord)
  health        Show backend health
  metrics       Show workflow/run metrics

Run 'reconctl <command> -h' for command-specific help.
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		return
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
