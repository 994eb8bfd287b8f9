package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func runIntegrations(args []string) error {
	if len(args) < 1 {
		integrationsUsage()
		return fmt.Errorf("an integrations subcommand is required")
	}

	switch args[0] {
	case "get":
		return integrationsGet(args[1:])
	case "set":
		return integrationsSet(args[1:])
	default:
		integrationsUsage()
		return fmt.Errorf("unknown integrations subcommand %q", args[0])
	}
}

func integrationsUsage() {
	fmt.Fprint(os.Stderr, `Usage: reconctl integrations <subcommand> [options]

Subcommands:
  get <slack|discord>                            Show an integration
  set <slack|discord> --webhook URL [--disable]  Configure an integration
`)
}

func integrationsGet(args []string) error {
	fs := flag.NewFlagSet("integrations get", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("an integration name is required (slack or discord)")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	integ, err := c.GetIntegration(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(integ)
}

func integrationsSet(args []string) error {
	fs := flag.NewFlagSet("integrations set", flag.ExitOnError)
	webhook := fs.String("webhook", "", "Webhook URL (required)")
	disable := fs.Bool("disable", false, "Configure the integration as disabled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("an integration name is required (slack or discord)")
	}
	if *webhook == "" {
		fs.Usage()
		return fmt.Errorf("--webhook is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	integ, err := c.ConfigureIntegration(ctx, fs.Arg(0), *webhook, !*disable)
	if err != nil {
		return err
	}
	state := "disabled"
	if integ.Enabled {
		state = "enabled"
	}
	fmt.Printf("%s integration %s\n", integ.Type, state)
	return nil
}
