package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func runTargets(args []string) error {
	if len(args) < 1 {
		targetsUsage()
		return fmt.Errorf("a targets subcommand is required")
	}

	switch args[0] {
	case "list":
		return targetsList(args[1:])
	case "add":
		return targetsAdd(args[1:])
	case "bulk":
		return targetsBulk(args[1:])
	case "delete":
		return targetsDelete(args[1:])
	default:
		targetsUsage()
		return fmt.Errorf("unknown targets subcommand %q", args[0])
	}
}

func targetsUsage() {
	fmt.Fprint(os.Stderr, `Usage: reconctl targets <subcommand> [options]

Subcommands:
  list                           List authorized targets
  add <value> [--tags t1,t2]     Add one target (IP, CIDR, or hostname)
  bulk [--file PATH] [--tags t1,t2]
                                 Import targets, one per line (stdin by default)
  delete <id>                    Remove a target
`)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func targetsList(args []string) error {
	fs := flag.NewFlagSet("targets list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	targets, err := c.ListTargets(ctx)
	if err != nil {
		return err
	}
	for _, t := range targets {
		tags := ""
		if len(t.Tags) > 0 {
			tags = "  [" + strings.Join(t.Tags, ", ") + "]"
		}
		fmt.Printf("%-36s  %s%s\n", t.ID, t.Value, tags)
	}
	return nil
}

func targetsAdd(args []string) error {
	fs := flag.NewFlagSet("targets add", flag.ExitOnError)
	tagsFlag := fs.String("tags", "", "Comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a target value is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t, err := c.CreateTarget(ctx, fs.Arg(0), splitTags(*tagsFlag))
	if err != nil {
		return err
	}
	fmt.Printf("added target %s (%s)\n", t.Value, t.ID)
	return nil
}

func targetsBulk(args []string) error {
	fs := flag.NewFlagSet("targets bulk", flag.ExitOnError)
	file := fs.String("file", "", "Read targets from this file instead of stdin")
	tagsFlag := fs.String("tags", "", "Comma-separated tags applied to every target")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open targets file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var values []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read targets: %w", err)
	}
	if len(values) == 0 {
		return fmt.Errorf("no targets to import")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	targets, err := c.BulkImportTargets(ctx, values, splitTags(*tagsFlag))
	if err != nil {
		return err
	}
	fmt.Printf("imported %d targets\n", len(targets))
	return nil
}

func targetsDelete(args []string) error {
	fs := flag.NewFlagSet("targets delete", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a target id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.DeleteTarget(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("deleted target %s\n", fs.Arg(0))
	return nil
}
