package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func runKeys(args []string) error {
	if len(args) < 1 {
		keysUsage()
		return fmt.Errorf("a keys subcommand is required")
	}

	switch args[0] {
	case "create":
		return keysCreate(args[1:])
	case "list":
		return keysList(args[1:])
	case "delete":
		return keysDelete(args[1:])
	default:
		keysUsage()
		return fmt.Errorf("unknown keys subcommand %q", args[0])
	}
}

func keysUsage() {
	fmt.Fprint(os.Stderr, `Usage: reconctl keys <subcommand> [options]

Subcommands:
  create <name> [--expires-days N]   Mint a new API key
  list                               List API keys (prefixes only)
  delete <id>                        Revoke an API key
`)
}

func keysCreate(args []string) error {
	fs := flag.NewFlagSet("keys create", flag.ExitOnError)
	expires := fs.Int("expires-days", 0, "Key lifetime in days (0 = no expiry)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a key name is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key, err := c.CreateAPIKey(ctx, fs.Arg(0), *expires)
	if err != nil {
		return err
	}
	// The full key is only ever shown here.
	fmt.Printf("created key %s (%s)\n", key.Name, key.ID)
	fmt.Printf("key material (store it now, it will not be shown again): %s\n", key.Key)
	return nil
}

func keysList(args []string) error {
	fs := flag.NewFlagSet("keys list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	keys, err := c.ListAPIKeys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		expiry := "never"
		if k.ExpiresAt != nil {
			expiry = k.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Printf("%-36s  %-20s  %-12s  expires %s\n", k.ID, k.Name, k.KeyPrefix, expiry)
	}
	return nil
}

func keysDelete(args []string) error {
	fs := flag.NewFlagSet("keys delete", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a key id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.DeleteAPIKey(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("revoked key %s\n", fs.Arg(0))
	return nil
}
