package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
)

func runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	keyFlag := fs.String("api-key", "", "API key to exchange (defaults to RECONCRAFT_API_KEY)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: reconctl login [--api-key KEY]\n\nExchange an API key for a bearer token and store it in the system keyring.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	apiKey := *keyFlag
	if apiKey == "" {
		apiKey = os.Getenv("RECONCRAFT_API_KEY")
	}
	if apiKey == "" {
		fs.Usage()
		return fmt.Errorf("an API key is required (flag or RECONCRAFT_API_KEY)")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := c.Login(ctx, apiKey)
	if err != nil {
		return err
	}

	if resp.ExpiresAt.IsZero() {
		fmt.Println("logged in")
	} else {
		fmt.Printf("logged in, token valid until %s\n", resp.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func runLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: reconctl logout\n\nDiscard the stored bearer token.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	if err := c.Logout(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}
