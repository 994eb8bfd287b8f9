package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shipsec/reconcraft/catalog"
	"github.com/shipsec/reconcraft/graph"
	"github.com/shipsec/reconcraft/session"
)

func runWorkflows(args []string) error {
	if len(args) < 1 {
		workflowsUsage()
		return fmt.Errorf("a workflows subcommand is required")
	}

	switch args[0] {
	case "list":
		return workflowsList(args[1:])
	case "get":
		return workflowsGet(args[1:])
	case "create":
		return workflowsCreate(args[1:])
	case "delete":
		return workflowsDelete(args[1:])
	case "duplicate":
		return workflowsDuplicate(args[1:])
	case "export":
		return workflowsExport(args[1:])
	default:
		workflowsUsage()
		return fmt.Errorf("unknown workflows subcommand %q", args[0])
	}
}

func workflowsUsage() {
	fmt.Fprint(os.Stderr, `Usage: reconctl workflows <subcommand> [options]

Subcommands:
  list                 List all workflows
  get <id>             Show one workflow
  create <name>        Create a workflow seeded with a start node
  delete <id>          Delete a workflow
  duplicate <id>       Duplicate a workflow
  export [--format]    Export all workflows as json or yaml
`)
}

func workflowsList(args []string) error {
	fs := flag.NewFlagSet("workflows list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workflows, err := c.ListWorkflows(ctx)
	if err != nil {
		return err
	}
	for _, w := range workflows {
		authorized := " "
		if w.AuthorizedTargets {
			authorized = "*"
		}
		fmt.Printf("%s %-36s  %-30s  %d nodes, %d edges\n", authorized, w.ID, w.Name, len(w.Nodes), len(w.Edges))
	}
	return nil
}

func workflowsGet(args []string) error {
	fs := flag.NewFlagSet("workflows get", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a workflow id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w, err := c.GetWorkflow(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(w)
}

func workflowsCreate(args []string) error {
	fs := flag.NewFlagSet("workflows create", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a workflow name is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess := session.New(c, fs.Arg(0), nil)
	if _, err := sess.DropNode(catalog.KindStart, graph.Position{X: 100, Y: 100}); err != nil {
		return err
	}
	w, err := sess.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("created workflow %s (%s)\n", w.Name, w.ID)
	return nil
}

func workflowsDelete(args []string) error {
	fs := flag.NewFlagSet("workflows delete", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a workflow id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.DeleteWorkflow(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("deleted workflow %s\n", fs.Arg(0))
	return nil
}

func workflowsDuplicate(args []string) error {
	fs := flag.NewFlagSet("workflows duplicate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a workflow id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w, err := c.DuplicateWorkflow(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("duplicated as %s (%s)\n", w.ID, w.Name)
	return nil
}

func workflowsExport(args []string) error {
	fs := flag.NewFlagSet("workflows export", flag.ExitOnError)
	format := fs.String("format", "json", "Output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workflows, err := c.ListWorkflows(ctx)
	if err != nil {
		return err
	}

	switch *format {
	case "json":
		return printJSON(workflows)
	case "yaml":
		data, err := yaml.Marshal(workflows)
		if err != nil {
			return fmt.Errorf("encode workflows: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", *format)
	}
}
