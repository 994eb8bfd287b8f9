package main

import (
	"context"
	"flag"
	"fmt"
	"time"
)

func runHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h, err := c.GetHealth(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("status:   %s\ndatabase: %s\nredis:    %s\nchecked:  %s\n",
		h.Status, h.Database, h.Redis, h.Timestamp.Format(time.RFC3339))
	return nil
}

func runMetrics(args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := c.GetMetrics(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("workflows:          %d\n", m.TotalWorkflows)
	fmt.Printf("runs:               %d (queued %d, running %d, succeeded %d, failed %d)\n",
		m.TotalRuns, m.RunsByStatus.Queued, m.RunsByStatus.Running, m.RunsByStatus.Succeeded, m.RunsByStatus.Failed)
	fmt.Printf("success rate:       %.1f%%\n", m.SuccessRate*100)
	fmt.Printf("active api keys:    %d\n", m.ActiveAPIKeys)
	fmt.Printf("authorized targets: %d\n", m.AuthorizedTargetsCount)
	return nil
}
