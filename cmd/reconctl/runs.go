package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shipsec/reconcraft/appconfig"
	"github.com/shipsec/reconcraft/client"
	"github.com/shipsec/reconcraft/console"
	"github.com/shipsec/reconcraft/reconcile"
	"github.com/shipsec/reconcraft/session"
)

// consoleOptions maps the configured theme onto the console's style set.
func consoleOptions(cfg appconfig.Config) console.Options {
	return console.Options{Light: cfg.Theme == appconfig.ThemeLight}
}

func runRuns(args []string) error {
	if len(args) < 1 {
		runsUsage()
		return fmt.Errorf("a runs subcommand is required")
	}

	switch args[0] {
	case "list":
		return runsList(args[1:])
	case "get":
		return runsGet(args[1:])
	case "start":
		return runsStart(args[1:])
	case "watch":
		return runsWatch(args[1:])
	case "logs":
		return runsLogs(args[1:])
	case "send-slack":
		return runsSend(args[1:], "slack")
	case "send-discord":
		return runsSend(args[1:], "discord")
	default:
		runsUsage()
		return fmt.Errorf("unknown runs subcommand %q", args[0])
	}
}

func runsUsage() {
	fmt.Fprint(os.Stderr, `Usage: reconctl runs <subcommand> [options]

Subcommands:
  list [--workflow ID] [--status S] [--limit N] [--offset N]
                       List runs
  get <run-id> [--jq EXPR]
                       Show one run, optionally filtered with a jq expression
  start --workflow ID [--targets t1,t2] [--mode live|demo] [--watch]
                       Trigger a run
  watch <run-id>       Poll a run until it finishes, streaming progress
  logs <run-id> [--offset N] [--limit N]
                       Fetch a page of the run's log stream
  send-slack <run-id>  Post the run's results to the Slack integration
  send-discord <run-id>
                       Post the run's results to the Discord integration
`)
}

func runsList(args []string) error {
	fs := flag.NewFlagSet("runs list", flag.ExitOnError)
	workflowID := fs.String("workflow", "", "Filter by workflow id")
	status := fs.String("status", "", "Filter by status (queued|running|succeeded|failed)")
	limit := fs.Int("limit", 0, "Maximum number of runs")
	offset := fs.Int("offset", 0, "Pagination offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runs, err := c.ListRuns(ctx, client.RunQuery{
		WorkflowID: *workflowID,
		Status:     client.RunStatus(*status),
		Limit:      *limit,
		Offset:     *offset,
	})
	if err != nil {
		return err
	}
	for _, r := range runs {
		findings := ""
		if r.Summary != nil {
			findings = fmt.Sprintf("  %d findings", r.Summary.FindingsCount)
		}
		fmt.Printf("%-36s  %-10s  %-30s  %s%s\n",
			r.ID, r.Status, r.WorkflowName, r.StartedAt.Format(time.RFC3339), findings)
	}
	return nil
}

func runsGet(args []string) error {
	fs := flag.NewFlagSet("runs get", flag.ExitOnError)
	jqExpr := fs.String("jq", "", "jq expression applied to the run document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a run id is required")
	}

	c, cfg, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	run, err := c.GetRun(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if *jqExpr != "" {
		results, err := console.FilterJSON(run, *jqExpr)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := printJSON(r); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Print(console.Render(run, consoleOptions(cfg)))
	return nil
}

func runsStart(args []string) error {
	fs := flag.NewFlagSet("runs start", flag.ExitOnError)
	workflowID := fs.String("workflow", "", "Workflow id to run (required)")
	targetsFlag := fs.String("targets", "", "Comma-separated scan targets")
	mode := fs.String("mode", "demo", "Run mode: live or demo")
	watch := fs.Bool("watch", false, "Watch the run after starting it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *workflowID == "" {
		fs.Usage()
		return fmt.Errorf("--workflow is required")
	}

	runMode := client.RunMode(*mode)
	if runMode != client.RunModeLive && runMode != client.RunModeDemo {
		return fmt.Errorf("unknown run mode %q (want live or demo)", *mode)
	}

	var targets []string
	for _, t := range strings.Split(*targetsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}

	c, cfg, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The authorization gate lives in the session so it is enforced before
	// any request reaches the backend.
	sess, err := session.Open(ctx, c, *workflowID, nil)
	if err != nil {
		return err
	}
	runID, err := sess.Trigger(ctx, targets, runMode)
	if err != nil {
		return err
	}
	fmt.Printf("run %s started\n", runID)

	if *watch {
		return watchRun(c, cfg, runID)
	}
	return nil
}

func runsWatch(args []string) error {
	fs := flag.NewFlagSet("runs watch", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a run id is required")
	}

	c, cfg, err := newClient()
	if err != nil {
		return err
	}
	return watchRun(c, cfg, fs.Arg(0))
}

// watchRun polls the run until terminal, printing new flattened log lines
// as they arrive and the full console view at the end. Config file edits
// made during the watch (e.g. switching the theme) are picked up live.
func watchRun(c *client.Client, cfg appconfig.Config, runID string) error {
	var mu sync.Mutex
	opts := consoleOptions(cfg)

	printed := 0
	var last reconcile.State
	rec := reconcile.New(c, terminalNotifier{},
		reconcile.WithInterval(cfg.PollInterval),
		reconcile.WithOnUpdate(func(s reconcile.State) {
			mu.Lock()
			for _, line := range s.Logs[printed:] {
				fmt.Println(line)
			}
			printed = len(s.Logs)
			last = s
			mu.Unlock()
		}),
	)

	if path, err := configPath(); err == nil {
		w := appconfig.NewWatcher(path, func(next appconfig.Config) {
			mu.Lock()
			opts = consoleOptions(next)
			mu.Unlock()
		})
		// A watcher failure only costs live reload; the watch itself
		// proceeds with the startup config.
		if err := w.Start(); err == nil {
			defer w.Stop()
		}
	}

	rec.Watch(context.Background(), runID)
	rec.Wait()

	mu.Lock()
	finalOpts, finalState := opts, last
	mu.Unlock()
	if finalState.Run != nil {
		fmt.Println()
		fmt.Print(console.Render(finalState.Run, finalOpts))
	}
	return nil
}

// terminalNotifier is the CLI's run-completion notifier.
type terminalNotifier struct{}

func (terminalNotifier) RunSucceeded(runID string) {
	fmt.Printf("\nrun %s completed successfully\n", runID)
}

func (terminalNotifier) RunFailed(runID string) {
	fmt.Printf("\nrun %s failed\n", runID)
}

func runsLogs(args []string) error {
	fs := flag.NewFlagSet("runs logs", flag.ExitOnError)
	offset := fs.Int("offset", 0, "Log line offset")
	limit := fs.Int("limit", 100, "Maximum lines to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a run id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, err := c.GetRunLogs(ctx, fs.Arg(0), *offset, *limit)
	if err != nil {
		return err
	}
	for _, line := range page.Logs {
		fmt.Println(line)
	}
	if page.HasMore {
		fmt.Fprintf(os.Stderr, "... more lines available (next offset %d)\n", *offset+len(page.Logs))
	}
	return nil
}

func runsSend(args []string, channel string) error {
	fs := flag.NewFlagSet("runs send-"+channel, flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("a run id is required")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	runID := fs.Arg(0)
	if channel == "slack" {
		err = c.SendRunToSlack(ctx, runID)
	} else {
		err = c.SendRunToDiscord(ctx, runID)
	}
	if err != nil {
		return err
	}
	fmt.Printf("run %s sent to %s\n", runID, channel)
	return nil
}
